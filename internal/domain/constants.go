package domain

// Provider kinds for managed links
const (
	KindGitHub  = "github"
	KindYouTube = "youtube"
	KindSlides  = "slides"
)

// ProviderKinds lists every supported provider kind. Order is stable and
// used when constructing workers and lock IDs.
var ProviderKinds = []string{KindGitHub, KindYouTube, KindSlides}

// ValidKind reports whether kind names a supported provider.
func ValidKind(kind string) bool {
	for _, k := range ProviderKinds {
		if k == kind {
			return true
		}
	}
	return false
}

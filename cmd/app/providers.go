package main

import (
	"github.com/storyweave/linksync/internal/provider"
)

// registerProviders wires the concrete provider clients into the registry.
// The clients live in separate modules so their SDK dependencies stay out
// of this one; each deployment adds a build-tagged file to this package
// (providers_github.go behind //go:build github, and so on) whose init or
// registration hook calls registry.Register with that provider's Fetcher
// and TokenRefresher. A kind left unregistered gets no sync worker, which
// is how staging runs with a subset of providers.
func registerProviders(registry *provider.Registry) {
	_ = registry // populated by build-tagged registration files
}

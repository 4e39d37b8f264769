// Package stories declares the downstream collaborator that turns
// unconsumed imports into draft stories. The sync engine only triggers it;
// rendering and translation live elsewhere.
package stories

import "context"

// Processor converts unconsumed imports into draft stories.
type Processor interface {
	ProcessStories(ctx context.Context) error
}

// NopProcessor is the default when story processing is not wired in. Keeping
// the dependency non-nil spares the worker ad hoc nil checks.
type NopProcessor struct{}

// ProcessStories does nothing
func (NopProcessor) ProcessStories(context.Context) error { return nil }

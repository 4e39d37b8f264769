package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgLinkNotFound  = "managed link not found"
	ErrMsgStateNotFound = "runtime state not found"
	ErrMsgAuthFailed    = "provider authentication failed"
	ErrMsgInvalidKind   = "invalid provider kind"
	ErrMsgInvalidInput  = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrLinkNotFound = errors.New(ErrMsgLinkNotFound)

	// ErrStateNotFound signals a runtime-state key that was never written.
	// Schedule readers treat it as "due now", not as a failure.
	ErrStateNotFound = errors.New(ErrMsgStateNotFound)

	// ErrAuthFailed marks a fetch rejected by the provider for credential
	// reasons; the reconciler refreshes tokens once and retries on it.
	ErrAuthFailed = errors.New(ErrMsgAuthFailed)

	ErrInvalidKind  = errors.New(ErrMsgInvalidKind)
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

package rag

import "errors"

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrUnprocessableDocument = errors.New("unprocessable document")
	ErrTransientBackend      = errors.New("transient backend failure")
	ErrRateLimited           = errors.New("rate limited")
	ErrGenerationFailed      = errors.New("generation failed")
)

// IsRetryable reports whether an external call failing with err may be attempted again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientBackend) || errors.Is(err, ErrRateLimited)
}

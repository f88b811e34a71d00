package providers

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every provider client.
var (
	// ErrNotSupported marks an operation a provider deterministically
	// cannot perform. Never retried.
	ErrNotSupported = errors.New("operation not supported by provider")

	// ErrNotFound marks an entity lookup that exhausted all fallback
	// strategies.
	ErrNotFound = errors.New("entity not found")
)

// ProviderError wraps an upstream failure with enough context to drive the
// retry policy: transport errors, 5xx and 429 are retryable, other 4xx are
// not.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s failed with status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a provider failure worth retrying.
// NotSupported and NotFound are never retryable.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNotSupported) || errors.Is(err, ErrNotFound) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

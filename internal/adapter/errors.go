package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks transient transport failures: connection errors,
	// timeouts, and 5xx/429 responses. Retryable.
	ErrNetwork = errors.New("network error")

	// ErrRejected marks non-transient remote refusals (4xx). Retrying
	// the same request will not help.
	ErrRejected = errors.New("request rejected")

	// ErrNotFound is the remote's 404. It wraps ErrRejected so generic
	// rejection handling still matches.
	ErrNotFound = fmt.Errorf("record not found: %w", ErrRejected)
)

// IsNetwork reports whether err belongs to the retryable transport class.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

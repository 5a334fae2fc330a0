package jwks

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey is returned when the requested key id is not part of the
	// key set, after whatever refresh the unknown key policy allowed.
	ErrUnknownKey = errors.New("unknown signing key")

	// ErrFetchFailed is returned when the key set could not be fetched from
	// the identity provider.
	ErrFetchFailed = errors.New("key set fetch failed")
)

// fetchError wraps a fetch failure with ErrFetchFailed. The underlying error
// stays reachable through errors.Unwrap for logging.
type fetchError struct {
	details error
}

// Is allows the error to support equality to ErrFetchFailed.
func (e *fetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

func (e *fetchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFetchFailed, e.details)
}

func (e *fetchError) Unwrap() error {
	return e.details
}

func unknownKeyError(keyID string) error {
	return fmt.Errorf("%w: %q", ErrUnknownKey, keyID)
}

package validator

import (
	"errors"
)

// Reasons a token is rejected. They are the only validation detail callers
// may show to clients; anything more specific is kept in Error.Details for
// logging.
var (
	// ErrInvalidToken covers every client-caused failure: malformed tokens,
	// unknown signing keys, bad signatures and expired or not yet valid
	// tokens. Error.Code names the check that failed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrKeyServiceUnavailable is returned when the signing keys could not
	// be fetched from the identity provider.
	ErrKeyServiceUnavailable = errors.New("key service unavailable")

	// ErrUnsupportedKeyAlgorithm is returned when the identity provider
	// published the token's key with an algorithm other than RS256.
	ErrUnsupportedKeyAlgorithm = errors.New("unsupported key algorithm")

	// ErrInvalidKeyMaterial is returned when the published key cannot be
	// turned into an RSA public key.
	ErrInvalidKeyMaterial = errors.New("invalid key material")
)

// Kind tells who is at fault for a failed validation.
type Kind int

const (
	// KindUnauthorized is a client-caused failure. It must never be retried.
	KindUnauthorized Kind = iota + 1

	// KindInternal is a failure of the service or one of its dependencies.
	KindInternal
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Machine-readable codes attached to validation errors, for logs and
// metrics.
const (
	CodeTokenMalformed     = "token_malformed"
	CodeKeyNotFound        = "jwks_key_not_found"
	CodeKeyFetchFailed     = "jwks_fetch_failed"
	CodeInvalidAlgorithm   = "invalid_algorithm"
	CodeInvalidKeyMaterial = "invalid_key_material"
	CodeInvalidSignature   = "invalid_signature"
	CodeTokenExpired       = "token_expired"
	CodeTokenNotYetValid   = "token_not_yet_valid"
	CodeInvalidClaims      = "invalid_claims"
	CodeUnauthorizedParty  = "unauthorized_party"
)

// Error is returned by ValidateToken for every failure.
//
// errors.Is matches it against its reason (ErrInvalidToken,
// ErrKeyServiceUnavailable, ErrUnsupportedKeyAlgorithm or
// ErrInvalidKeyMaterial) and, through Details, against the underlying cause.
type Error struct {
	// Kind classifies the failure as client-caused or internal.
	Kind Kind

	// Code is a machine-readable error code (e.g. "token_expired").
	Code string

	// Details contains the underlying error. Never show it to clients.
	Details error

	reason error
}

func newError(kind Kind, reason error, code string, details error) *Error {
	return &Error{Kind: kind, Code: code, Details: details, reason: reason}
}

func unauthorized(code string, details error) *Error {
	return newError(KindUnauthorized, ErrInvalidToken, code, details)
}

func internal(reason error, code string, details error) *Error {
	return newError(KindInternal, reason, code, details)
}

// Reason returns the client-safe reason, such as "invalid token".
func (e *Error) Reason() string {
	return e.reason.Error()
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != nil {
		return e.reason.Error() + ": " + e.Details.Error()
	}
	return e.reason.Error()
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with its reason.
func (e *Error) Is(target error) bool {
	return target == e.reason
}

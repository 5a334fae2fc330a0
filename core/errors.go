package core

import (
	"errors"

	"github.com/keystone-auth/go-jwt-authorizer/validator"
)

// Sentinel errors for authorization outcomes.
var (
	// ErrUnauthorized matches every client-caused failure.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal matches every failure of the service or its dependencies.
	ErrInternal = errors.New("internal failure")

	// ErrNoCredential is returned when the request carries no token.
	ErrNoCredential = errors.New(ReasonNoCredential)

	// ErrClaimsNotFound is returned when claims cannot be retrieved from context.
	ErrClaimsNotFound = errors.New("claims not found in context")
)

// Client-safe reasons.
const (
	ReasonNoCredential = "no credential found"
	ReasonInvalidToken = "invalid token"
)

// CodeTokenMissing is the Outcome code for requests without a token. Every
// other code comes from the validator (see validator.Code*).
const CodeTokenMissing = "token_missing"

// Where the token was read from.
const (
	SourceHeader = "header"
	SourceCookie = "cookie"
)

// Status is the result class of an authorization.
type Status int

const (
	// Authorized means the token was valid.
	Authorized Status = iota + 1

	// Unauthorized means the request must be rejected as unauthenticated.
	Unauthorized

	// InternalFailure means the token could not be checked.
	InternalFailure
)

// String implements fmt.Stringer. The values are used as metric labels.
func (s Status) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	case InternalFailure:
		return "internal_failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of Authorize.
type Outcome struct {
	Status Status

	// Claims is set when Status is Authorized.
	Claims *validator.SessionClaims

	// Reason is safe to show to clients, e.g. "invalid token" or
	// "key service unavailable".
	Reason string

	// Code is a machine-readable code for logs and metrics, e.g.
	// "token_expired".
	Code string

	// Source is where the token was read from, SourceHeader or SourceCookie.
	Source string

	// Err is the underlying error. Never show it to clients.
	Err error
}

// Error returns nil for an authorized outcome and an *AuthError otherwise.
func (o Outcome) Error() error {
	if o.Status == Authorized {
		return nil
	}
	return &AuthError{Status: o.Status, Reason: o.Reason, Code: o.Code, Err: o.Err}
}

// AuthError is the error form of a failed Outcome.
//
// errors.Is matches it against ErrUnauthorized or ErrInternal depending on
// its Status, and against the underlying error.
type AuthError struct {
	Status Status
	Reason string
	Code   string
	Err    error
}

// Error returns the client-safe reason only.
func (e *AuthError) Error() string {
	return e.Reason
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is allows the error to be compared with ErrUnauthorized and ErrInternal.
func (e *AuthError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == Unauthorized
	case ErrInternal:
		return e.Status == InternalFailure
	}
	return false
}

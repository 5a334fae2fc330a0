package core

import (
	"errors"
	"fmt"
)

// Option is a function that configures the Authorizer.
// Options return errors to enable validation during construction.
type Option func(*Authorizer) error

// New creates a new Authorizer with the provided options.
//
// The Authorizer must be configured with a TokenValidator using
// WithValidator. Session cookie validation is off by default and is fixed
// for the lifetime of the Authorizer.
//
// Example:
//
//	authorizer, err := core.New(
//	    core.WithValidator(v),
//	    core.WithSessionCookie(true),
//	    core.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Authorizer, error) {
	a := &Authorizer{
		cookieName: DefaultCookieName,
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if a.validator == nil {
		return nil, errors.New("validator is required but not set (use WithValidator option)")
	}

	return a, nil
}

// WithValidator sets the token validator. This is a required option.
func WithValidator(validator TokenValidator) Option {
	return func(a *Authorizer) error {
		if validator == nil {
			return errors.New("validator cannot be nil")
		}
		a.validator = validator
		return nil
	}
}

// WithSessionCookie enables reading the session cookie when the request has
// no Authorization header.
func WithSessionCookie(enabled bool) Option {
	return func(a *Authorizer) error {
		a.sessionCookie = enabled
		return nil
	}
}

// WithCookieName overrides the session cookie name. Defaults to
// DefaultCookieName.
func WithCookieName(name string) Option {
	return func(a *Authorizer) error {
		if name == "" {
			return errors.New("cookie name cannot be empty")
		}
		a.cookieName = name
		return nil
	}
}

// WithLogger sets an optional logger for the Authorizer.
//
// Rejected tokens are logged at warn level and internal failures at error
// level. Tokens themselves are never logged.
func WithLogger(logger Logger) Option {
	return func(a *Authorizer) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

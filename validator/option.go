package validator

import (
	"errors"
	"time"
)

// Option is how options for the Validator are set up.
// Options return errors to enable validation during construction.
type Option func(*Validator) error

// WithKeyGetter sets where signing keys are looked up by key id.
// This is a required option; normally a *jwks.CachingProvider.
func WithKeyGetter(keyGetter KeyGetter) Option {
	return func(v *Validator) error {
		if keyGetter == nil {
			return errors.New("key getter cannot be nil")
		}
		v.keyGetter = keyGetter
		return nil
	}
}

// WithAllowedClockSkew sets the tolerance applied to the exp, nbf and iat
// checks. Defaults to 0.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}

// WithClock sets the time source for the exp, nbf and iat checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		v.clock = now
		return nil
	}
}

// WithAuthorizedParties restricts the origins a token may have been issued
// for. Tokens carrying an azp claim that is not in parties are rejected;
// tokens without one are accepted.
func WithAuthorizedParties(parties ...string) Option {
	return func(v *Validator) error {
		if len(parties) == 0 {
			return errors.New("authorized parties cannot be empty")
		}
		for _, p := range parties {
			if p == "" {
				return errors.New("authorized party cannot be empty")
			}
		}
		v.authorizedParties = append([]string(nil), parties...)
		return nil
	}
}

package grpc

import (
	"errors"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

// Option configures the interceptor.
type Option func(*JWTInterceptor) error

// Logger defines an optional logging interface compatible with log/slog.
type Logger = core.Logger

// coreBuilder collects the options used to build a core.Authorizer when the
// interceptor is configured with WithValidator.
type coreBuilder struct {
	validator     core.TokenValidator
	sessionCookie bool
	cookieName    string
	logger        Logger
}

func (b *coreBuilder) build() (*core.Authorizer, error) {
	if b.validator == nil {
		return nil, errors.New("validator is required")
	}

	opts := []core.Option{
		core.WithValidator(b.validator),
		core.WithSessionCookie(b.sessionCookie),
	}
	if b.cookieName != "" {
		opts = append(opts, core.WithCookieName(b.cookieName))
	}
	if b.logger != nil {
		opts = append(opts, core.WithLogger(b.logger))
	}

	return core.New(opts...)
}

func (i *JWTInterceptor) builder() *coreBuilder {
	if i.coreBuilder == nil {
		i.coreBuilder = &coreBuilder{}
	}
	return i.coreBuilder
}

// WithAuthorizer sets a preconfigured authorizer. Options that configure the
// built-in authorizer (WithValidator, WithSessionCookie, WithCookieName) are
// ignored when it is set.
func WithAuthorizer(a Authorizer) Option {
	return func(i *JWTInterceptor) error {
		if a == nil {
			return errors.New("authorizer cannot be nil")
		}
		i.authorizer = a
		return nil
	}
}

// WithValidator builds the authorizer around v.
//
// Example:
//
//	interceptor, _ := grpc.New(
//	    grpc.WithValidator(v),
//	    grpc.WithSessionCookie(true),
//	)
func WithValidator(v core.TokenValidator) Option {
	return func(i *JWTInterceptor) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		i.builder().validator = v
		return nil
	}
}

// WithSessionCookie enables reading the session cookie from the "cookie"
// metadata entry when no authorization entry is present.
//
// Default: false
func WithSessionCookie(enabled bool) Option {
	return func(i *JWTInterceptor) error {
		i.builder().sessionCookie = enabled
		return nil
	}
}

// WithCookieName sets the session cookie name.
//
// Default: core.DefaultCookieName
func WithCookieName(name string) Option {
	return func(i *JWTInterceptor) error {
		if name == "" {
			return errors.New("cookie name cannot be empty")
		}
		i.builder().cookieName = name
		return nil
	}
}

// WithLogger sets an optional logger, used by the interceptor and by the
// authorizer built with WithValidator.
func WithLogger(logger Logger) Option {
	return func(i *JWTInterceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.builder().logger = logger
		i.logger = logger
		return nil
	}
}

// WithErrorHandler sets a custom error handler function.
// Default is DefaultErrorHandler which maps outcomes to gRPC status codes.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *JWTInterceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods excludes specific gRPC methods from authorization.
// Methods should be provided in the format: "/package.Service/Method"
// Example: "/grpc.health.v1.Health/Check"
func WithExcludedMethods(methods ...string) Option {
	return func(i *JWTInterceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

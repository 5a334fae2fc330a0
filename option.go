package jwtauthorizer

import (
	"net/http"
)

// Option configures the Middleware.
// Returns error for validation failures.
type Option func(*Middleware) error

// WithAuthorizer sets the authorizer (REQUIRED).
//
// Example:
//
//	authorizer, err := core.New(core.WithValidator(v))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := jwtauthorizer.New(
//	    jwtauthorizer.WithAuthorizer(authorizer),
//	)
func WithAuthorizer(a Authorizer) Option {
	return func(m *Middleware) error {
		if a == nil {
			return ErrAuthorizerNil
		}
		m.authorizer = a
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests are authorized.
//
// Default: true (OPTIONS requests are authorized)
func WithValidateOnOptions(value bool) Option {
	return func(m *Middleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called for requests that are not
// authorized. See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithExclusionURLs configures URLs that skip authorization.
// URLs can be full URLs or just paths.
func WithExclusionURLs(exclusions []string) Option {
	return func(m *Middleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionURLsEmpty
		}
		excluded := make(map[string]struct{}, len(exclusions))
		for _, exclusion := range exclusions {
			excluded[exclusion] = struct{}{}
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			if _, ok := excluded[r.URL.Path]; ok {
				return true
			}
			_, ok := excluded[r.URL.String()]
			return ok
		}
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
//
// The logger interface is compatible with log/slog.Logger; see NewZapLogger,
// NewZerologLogger and NewLogrusLogger for other libraries.
//
// Example:
//
//	middleware, err := jwtauthorizer.New(
//	    jwtauthorizer.WithAuthorizer(authorizer),
//	    jwtauthorizer.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(m *Middleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics sets where request counts and latencies are recorded.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		m.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer used to open a span around every authorization.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(m *Middleware) error {
		if tracer == nil {
			return ErrTracerNil
		}
		m.tracer = tracer
		return nil
	}
}

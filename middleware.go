package jwtauthorizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/keystone-auth/go-jwt-authorizer/core"
	"github.com/keystone-auth/go-jwt-authorizer/validator"
)

// Authorizer authorizes a request. *core.Authorizer implements it.
type Authorizer interface {
	Authorize(ctx context.Context, r core.Request) core.Outcome
}

// Middleware authorizes net/http requests and stores the session claims of
// authorized requests in their context.
type Middleware struct {
	authorizer          Authorizer
	errorHandler        ErrorHandler
	validateOnOptions   bool
	exclusionURLHandler ExclusionURLHandler
	logger              Logger
	metrics             Metrics
	tracer              Tracer
}

// ExclusionURLHandler reports whether r should skip authorization.
type ExclusionURLHandler func(r *http.Request) bool

// New constructs a new Middleware with the supplied options.
//
// Example:
//
//	authorizer, err := core.New(core.WithValidator(v), core.WithSessionCookie(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := jwtauthorizer.New(
//	    jwtauthorizer.WithAuthorizer(authorizer),
//	    jwtauthorizer.WithExclusionURLs([]string{"/healthz"}),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*Middleware, error) {
	m := &Middleware{
		validateOnOptions: true,
		errorHandler:      DefaultErrorHandler,
		metrics:           &NoopMetrics{},
		tracer:            &NoopTracer{},
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if m.authorizer == nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", ErrAuthorizerNil)
	}

	return m, nil
}

// GetClaims retrieves the session claims stored by the middleware.
//
// Example:
//
//	claims, err := jwtauthorizer.GetClaims(r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get claims", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(claims.Subject)
func GetClaims(ctx context.Context) (*validator.SessionClaims, error) {
	return core.GetClaims(ctx)
}

// MustGetClaims retrieves the session claims or panics.
// Use only behind the middleware, on routes that are not excluded.
func MustGetClaims(ctx context.Context) *validator.SessionClaims {
	claims, err := core.GetClaims(ctx)
	if err != nil {
		panic(err)
	}
	return claims
}

// HasClaims checks if claims exist in the context.
func HasClaims(ctx context.Context) bool {
	return core.HasClaims(ctx)
}

// Handler wraps next. Authorized requests reach next with their claims in
// the request context; every other request is answered by the error
// handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping authorization for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		if !m.validateOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debug("skipping authorization for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		outcome := m.authorize(r)
		if outcome.Status != core.Authorized {
			if m.logger != nil {
				m.logger.Debug("request not authorized",
					"method", r.Method,
					"path", r.URL.Path,
					"outcome", outcome.Status.String(),
					"code", outcome.Code)
			}
			m.errorHandler(w, r, outcome.Error())
			return
		}

		next.ServeHTTP(w, r.Clone(core.SetClaims(r.Context(), outcome.Claims)))
	})
}

func (m *Middleware) authorize(r *http.Request) core.Outcome {
	ctx, span := m.tracer.StartSpan(r.Context(), SpanAuthorize)
	defer span.Finish()

	start := time.Now()
	outcome := m.authorizer.Authorize(ctx, HTTPRequest(r))
	duration := time.Since(start)

	tags := map[string]string{"outcome": outcome.Status.String()}
	m.metrics.IncCounter(MetricRequestsTotal, tags)
	m.metrics.ObserveHistogram(MetricDurationSeconds, duration.Seconds(), tags)

	span.SetTag("outcome", outcome.Status.String())
	if outcome.Code != "" {
		span.SetTag("code", outcome.Code)
	}
	if outcome.Source != "" {
		span.SetTag("source", outcome.Source)
	}
	if outcome.Status == core.InternalFailure {
		span.SetError(outcome.Err)
	}

	return outcome
}

// Sentinel errors for configuration validation.
var (
	ErrAuthorizerNil      = errors.New("authorizer cannot be nil (use WithAuthorizer)")
	ErrErrorHandlerNil    = errors.New("errorHandler cannot be nil")
	ErrExclusionURLsEmpty = errors.New("exclusion URLs list cannot be empty")
	ErrLoggerNil          = errors.New("logger cannot be nil")
	ErrMetricsNil         = errors.New("metrics cannot be nil")
	ErrTracerNil          = errors.New("tracer cannot be nil")
)

package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/keystone-auth/go-jwt-authorizer/validator"
)

const (
	// AuthorizationHeader is the header the bearer token is read from.
	AuthorizationHeader = "Authorization"

	// DefaultCookieName is the session cookie read when cookie validation is
	// enabled.
	DefaultCookieName = "__session"

	bearerPrefix = "Bearer "
)

// Request is the view the Authorizer has of an inbound request. Adapters
// implement it for each transport; it must never expose the transport's own
// request type.
type Request interface {
	// Header returns the value of the named header and whether it was sent.
	Header(name string) (string, bool)

	// Cookie returns the value of the named cookie and whether it was sent.
	Cookie(name string) (string, bool)
}

// TokenValidator validates a raw session token. *validator.Validator
// implements it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*validator.SessionClaims, error)
}

// Logger defines an optional logging interface for the Authorizer.
// *slog.Logger satisfies it, as do the adapters in the root package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Authorizer extracts the session token from a request and validates it.
// It is safe for concurrent use.
type Authorizer struct {
	validator     TokenValidator
	sessionCookie bool
	cookieName    string
	logger        Logger
}

// Authorize authorizes r.
//
// The token is read from the Authorization header, with an optional
// "Bearer " prefix. When the header is absent and session cookie validation
// is enabled, the session cookie is used instead. Cookies are never read
// when it is disabled.
func (a *Authorizer) Authorize(ctx context.Context, r Request) Outcome {
	token, source := a.extractToken(r)
	if token == "" {
		if a.logger != nil {
			a.logger.Debug("no credential found", "session_cookie", a.sessionCookie)
		}
		return Outcome{
			Status: Unauthorized,
			Reason: ReasonNoCredential,
			Code:   CodeTokenMissing,
			Err:    ErrNoCredential,
		}
	}

	start := time.Now()
	claims, err := a.validator.ValidateToken(ctx, token)
	duration := time.Since(start)

	if err != nil {
		outcome := classify(err)
		outcome.Source = source
		a.logFailure(outcome, duration)
		return outcome
	}

	if a.logger != nil {
		a.logger.Debug("token validated successfully",
			"source", source, "subject", claims.Subject, "duration", duration)
	}

	return Outcome{Status: Authorized, Claims: claims, Source: source}
}

func (a *Authorizer) extractToken(r Request) (string, string) {
	if header, ok := r.Header(AuthorizationHeader); ok {
		if token := stripBearer(header); token != "" {
			return token, SourceHeader
		}
	}

	if !a.sessionCookie {
		return "", ""
	}

	if cookie, ok := r.Cookie(a.cookieName); ok && cookie != "" {
		return cookie, SourceCookie
	}

	return "", ""
}

// stripBearer removes a leading "Bearer " from the header value. The scheme
// is matched case-insensitively and a value without it is returned as is.
func stripBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return header
}

func classify(err error) Outcome {
	var validationErr *validator.Error
	if errors.As(err, &validationErr) {
		status := Unauthorized
		if validationErr.Kind == validator.KindInternal {
			status = InternalFailure
		}
		return Outcome{
			Status: status,
			Reason: validationErr.Reason(),
			Code:   validationErr.Code,
			Err:    err,
		}
	}

	// Validators other than *validator.Validator don't classify their
	// errors; treat them as rejected tokens.
	return Outcome{
		Status: Unauthorized,
		Reason: ReasonInvalidToken,
		Code:   validator.CodeInvalidSignature,
		Err:    err,
	}
}

func (a *Authorizer) logFailure(outcome Outcome, duration time.Duration) {
	if a.logger == nil {
		return
	}

	args := []any{"source", outcome.Source, "code", outcome.Code, "error", outcome.Err, "duration", duration}
	if outcome.Status == InternalFailure {
		a.logger.Error("token validation failed", args...)
		return
	}
	a.logger.Warn("token rejected", args...)
}

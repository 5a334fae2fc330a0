package jwtecho

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	jwtauthorizer "github.com/keystone-auth/go-jwt-authorizer"
	"github.com/keystone-auth/go-jwt-authorizer/core"
	"github.com/keystone-auth/go-jwt-authorizer/validator"
)

// DefaultClaimsKey is the echo context key the session claims are stored
// under.
const DefaultClaimsKey = "claims"

type config struct {
	errorHandler func(echo.Context, error) error
	contextKey   string
	skipper      middleware.Skipper
}

// New creates an echo middleware that authorizes requests with authorizer.
// Authorized requests continue with their claims stored in the echo context
// and in the request context.
//
// New panics if authorizer is nil.
func New(authorizer jwtauthorizer.Authorizer, opts ...Option) echo.MiddlewareFunc {
	if authorizer == nil {
		panic(jwtauthorizer.ErrAuthorizerNil)
	}

	cfg := &config{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
		skipper:      middleware.DefaultSkipper,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.skipper(c) {
				return next(c)
			}

			r := c.Request()
			outcome := authorizer.Authorize(r.Context(), Request(c))
			if outcome.Status != core.Authorized {
				return cfg.errorHandler(c, outcome.Error())
			}

			c.Set(cfg.contextKey, outcome.Claims)
			c.SetRequest(r.WithContext(core.SetClaims(r.Context(), outcome.Claims)))
			return next(c)
		}
	}
}

func defaultErrorHandler(c echo.Context, err error) error {
	jwtauthorizer.DefaultErrorHandler(c.Response(), c.Request(), err)
	return nil
}

// Request adapts an echo context to core.Request.
func Request(c echo.Context) core.Request {
	return jwtauthorizer.HTTPRequest(c.Request())
}

// GetClaims extracts the session claims from the echo context.
func GetClaims(c echo.Context, contextKey string) (*validator.SessionClaims, bool) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}
	claims, ok := c.Get(contextKey).(*validator.SessionClaims)
	return claims, ok && claims != nil
}

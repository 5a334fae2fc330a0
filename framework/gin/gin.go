package jwtgin

import (
	"errors"

	"github.com/gin-gonic/gin"

	jwtauthorizer "github.com/keystone-auth/go-jwt-authorizer"
	"github.com/keystone-auth/go-jwt-authorizer/core"
	"github.com/keystone-auth/go-jwt-authorizer/validator"
)

// DefaultClaimsKey is the gin context key the session claims are stored under.
const DefaultClaimsKey = "claims"

var (
	ErrMissingClaims = errors.New("no session claims found in context")
	ErrInvalidClaims = errors.New("invalid session claims type")
)

type config struct {
	errorHandler  func(*gin.Context, error)
	contextKey    string
	excludedPaths map[string]struct{}
}

// New creates a gin middleware that authorizes requests with authorizer.
// Authorized requests continue with their claims stored in the gin context
// and in the request context; every other request is aborted.
//
// New panics if authorizer is nil.
func New(authorizer jwtauthorizer.Authorizer, opts ...Option) gin.HandlerFunc {
	if authorizer == nil {
		panic(jwtauthorizer.ErrAuthorizerNil)
	}

	cfg := &config{
		errorHandler: defaultErrorHandler,
		contextKey:   DefaultClaimsKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		if _, ok := cfg.excludedPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		outcome := authorizer.Authorize(c.Request.Context(), Request(c))
		if outcome.Status != core.Authorized {
			cfg.errorHandler(c, outcome.Error())
			c.Abort()
			return
		}

		c.Set(cfg.contextKey, outcome.Claims)
		c.Request = c.Request.WithContext(core.SetClaims(c.Request.Context(), outcome.Claims))
		c.Next()
	}
}

func defaultErrorHandler(c *gin.Context, err error) {
	jwtauthorizer.DefaultErrorHandler(c.Writer, c.Request, err)
}

// Request adapts a gin context to core.Request.
func Request(c *gin.Context) core.Request {
	return jwtauthorizer.HTTPRequest(c.Request)
}

// GetClaims returns the session claims stored by the middleware under
// contextKey, or DefaultClaimsKey when contextKey is empty.
func GetClaims(c *gin.Context, contextKey string) (*validator.SessionClaims, error) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}
	claims, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingClaims
	}

	sessionClaims, ok := claims.(*validator.SessionClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return sessionClaims, nil
}

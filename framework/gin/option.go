package jwtgin

import (
	"github.com/gin-gonic/gin"
)

// Option defines a functional option for configuring the middleware
type Option func(*config)

// WithErrorHandler sets a custom error handler for the middleware. The
// request is aborted after it returns.
func WithErrorHandler(handler func(*gin.Context, error)) Option {
	return func(c *config) {
		c.errorHandler = handler
	}
}

// WithContextKey sets the gin context key the claims are stored under.
func WithContextKey(key string) Option {
	return func(c *config) {
		c.contextKey = key
	}
}

// WithExcludedPaths lets requests to the given paths through without
// authorization.
func WithExcludedPaths(paths ...string) Option {
	return func(c *config) {
		if c.excludedPaths == nil {
			c.excludedPaths = make(map[string]struct{}, len(paths))
		}
		for _, path := range paths {
			c.excludedPaths[path] = struct{}{}
		}
	}
}

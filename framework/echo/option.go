package jwtecho

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Option is a function that configures the middleware
type Option func(*config)

// WithErrorHandler sets a custom error handler. Its return value is
// returned from the middleware, so echo.NewHTTPError works as well as
// writing the response directly.
func WithErrorHandler(handler func(echo.Context, error) error) Option {
	return func(c *config) {
		c.errorHandler = handler
	}
}

// WithContextKey sets a custom context key to store claims
func WithContextKey(key string) Option {
	return func(c *config) {
		c.contextKey = key
	}
}

// WithSkipper sets a function that lets requests through without
// authorization.
func WithSkipper(skipper middleware.Skipper) Option {
	return func(c *config) {
		c.skipper = skipper
	}
}

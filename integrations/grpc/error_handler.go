package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

// ErrorHandler converts the error of a failed outcome to the error returned
// to the client.
type ErrorHandler func(error) error

// DefaultErrorHandler maps rejected credentials to codes.Unauthenticated and
// identity provider failures to codes.Internal. The status message is the
// client-safe reason.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	var authErr *core.AuthError
	reason := core.ReasonInvalidToken
	if errors.As(err, &authErr) && authErr.Reason != "" {
		reason = authErr.Reason
	}

	switch {
	case errors.Is(err, core.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, reason)
	case errors.Is(err, core.ErrInternal):
		return status.Error(codes.Internal, reason)
	default:
		return status.Error(codes.Internal, "something went wrong while checking the token")
	}
}

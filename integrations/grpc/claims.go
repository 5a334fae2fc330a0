package grpc

import (
	"context"

	"github.com/keystone-auth/go-jwt-authorizer/core"
	"github.com/keystone-auth/go-jwt-authorizer/validator"
)

// GetClaims retrieves the session claims stored by the interceptor.
//
// Example:
//
//	claims, err := jwtgrpc.GetClaims(ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Internal, "failed to get claims")
//	}
//	fmt.Println(claims.Subject)
func GetClaims(ctx context.Context) (*validator.SessionClaims, error) {
	return core.GetClaims(ctx)
}

// MustGetClaims retrieves the session claims or panics.
// Use only in handlers of methods that are not excluded.
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

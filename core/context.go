package core

import (
	"context"

	"github.com/keystone-auth/go-jwt-authorizer/validator"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	claimsKey contextKey = iota
)

// GetClaims retrieves the validated claims stored by an adapter.
//
// Example usage:
//
//	claims, err := core.GetClaims(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(claims.Subject)
func GetClaims(ctx context.Context) (*validator.SessionClaims, error) {
	claims, ok := ctx.Value(claimsKey).(*validator.SessionClaims)
	if !ok || claims == nil {
		return nil, ErrClaimsNotFound
	}
	return claims, nil
}

// SetClaims stores claims in the context.
// This is a helper function for adapters to set claims after validation.
func SetClaims(ctx context.Context, claims *validator.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// HasClaims checks if claims exist in the context without retrieving them.
func HasClaims(ctx context.Context) bool {
	claims, ok := ctx.Value(claimsKey).(*validator.SessionClaims)
	return ok && claims != nil
}

package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

// Authorizer authorizes a request. *core.Authorizer implements it.
type Authorizer interface {
	Authorize(ctx context.Context, r core.Request) core.Outcome
}

// JWTInterceptor authorizes gRPC calls with the session token carried in
// the call metadata.
type JWTInterceptor struct {
	authorizer      Authorizer
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	logger          Logger

	// Accumulates core options when no Authorizer is supplied.
	coreBuilder *coreBuilder
}

// New creates a new gRPC interceptor with the provided options.
// Either WithAuthorizer or WithValidator is required.
func New(opts ...Option) (*JWTInterceptor, error) {
	interceptor := &JWTInterceptor{
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	if interceptor.authorizer == nil && interceptor.coreBuilder != nil {
		a, err := interceptor.coreBuilder.build()
		if err != nil {
			return nil, err
		}
		interceptor.authorizer = a
	}

	if interceptor.authorizer == nil {
		return nil, errors.New("authorizer is required, use WithAuthorizer or WithValidator option")
	}

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// authorizes every call and makes the session claims available in the
// handler's context.
func (i *JWTInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping authorization for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		authorizedCtx, err := i.authorize(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(authorizedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// authorizes every stream and makes the session claims available in the
// stream's context.
func (i *JWTInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping authorization for excluded method",
					"method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		authorizedCtx, err := i.authorize(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{
			ServerStream: ss,
			ctx:          authorizedCtx,
		})
	}
}

func (i *JWTInterceptor) authorize(ctx context.Context, method string) (context.Context, error) {
	outcome := i.authorizer.Authorize(ctx, MetadataRequest(ctx))
	if outcome.Status != core.Authorized {
		if i.logger != nil {
			i.logger.Debug("call not authorized",
				"method", method,
				"outcome", outcome.Status.String(),
				"code", outcome.Code)
		}
		return ctx, i.errorHandler(outcome.Error())
	}

	return core.SetClaims(ctx, outcome.Claims), nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the context carrying the session claims.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

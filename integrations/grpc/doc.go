// Package grpc provides gRPC server interceptors that authorize calls with
// session tokens.
//
// The token is read from the "authorization" metadata entry ("Bearer
// <token>"). When the session cookie is enabled and no authorization entry
// is present, it is read from the "cookie" entry instead, which is what
// grpc-gateway and grpc-web proxies forward from browsers.
//
// # Basic Usage
//
//	v, err := validator.New(validator.WithKeyGetter(provider))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	interceptor, err := jwtgrpc.New(
//	    jwtgrpc.WithValidator(v),
//	    jwtgrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// A core.Authorizer shared with the HTTP middleware can be passed with
// WithAuthorizer instead of WithValidator.
//
// # Errors
//
// DefaultErrorHandler returns codes.Unauthenticated for calls without a
// credential or with a rejected token, and codes.Internal when the identity
// provider's keys could not be used. The status message never contains more
// than the client-safe reason.
//
// # Claims Retrieval
//
//	func (s *server) GetUser(ctx context.Context, req *pb.GetUserRequest) (*pb.User, error) {
//	    claims, err := jwtgrpc.GetClaims(ctx)
//	    if err != nil {
//	        return nil, status.Error(codes.Internal, "failed to get claims")
//	    }
//	    return &pb.User{ID: claims.Subject}, nil
//	}
package grpc

package grpc

import (
	"context"
	"net/http"

	"google.golang.org/grpc/metadata"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

// MetadataRequest adapts the incoming metadata of ctx to core.Request.
//
// gRPC lowercases incoming metadata keys, so header names are matched
// case-insensitively. Cookies are read from "cookie" entries.
func MetadataRequest(ctx context.Context) core.Request {
	md, _ := metadata.FromIncomingContext(ctx)
	return metadataRequest{md: md}
}

type metadataRequest struct {
	md metadata.MD
}

func (m metadataRequest) Header(name string) (string, bool) {
	values := m.md.Get(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (m metadataRequest) Cookie(name string) (string, bool) {
	for _, line := range m.md.Get("cookie") {
		cookies, err := http.ParseCookie(line)
		if err != nil {
			continue
		}
		for _, cookie := range cookies {
			if cookie.Name == name {
				return cookie.Value, true
			}
		}
	}
	return "", false
}

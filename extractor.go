package jwtauthorizer

import (
	"net/http"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

// HTTPRequest adapts r to core.Request.
func HTTPRequest(r *http.Request) core.Request {
	return httpRequest{r: r}
}

type httpRequest struct {
	r *http.Request
}

// Header returns the first value of the named header. A header sent with an
// empty value is reported as present.
func (h httpRequest) Header(name string) (string, bool) {
	values := h.r.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (h httpRequest) Cookie(name string) (string, bool) {
	cookie, err := h.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

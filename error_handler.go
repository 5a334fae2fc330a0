package jwtauthorizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

// ErrorHandler is called when a request is not authorized. err is the
// *core.AuthError of the failed outcome; it can be checked against
// core.ErrUnauthorized and core.ErrInternal.
//
// If you implement your own ErrorHandler you MUST write a response: the
// middleware does not call the next handler after it.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON body written by DefaultErrorHandler.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// DefaultErrorHandler writes RFC 6750 style responses:
//
//   - no credential: 401 with a bare "Bearer" challenge
//   - invalid token: 401 with error="invalid_token"
//   - internal failure: 500 with error="server_error"
//
// Only the client-safe reason is included in the response.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	reason := core.ReasonInvalidToken
	var authErr *core.AuthError
	if errors.As(err, &authErr) && authErr.Reason != "" {
		reason = authErr.Reason
	}

	switch {
	case errors.Is(err, core.ErrNoCredential):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeErrorResponse(w, http.StatusUnauthorized, ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: reason,
		})
	case errors.Is(err, core.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error="invalid_token", error_description=%q`, reason))
		writeErrorResponse(w, http.StatusUnauthorized, ErrorResponse{
			Error:            "invalid_token",
			ErrorDescription: reason,
		})
	case errors.Is(err, core.ErrInternal):
		writeErrorResponse(w, http.StatusInternalServerError, ErrorResponse{
			Error:            "server_error",
			ErrorDescription: reason,
		})
	default:
		writeErrorResponse(w, http.StatusInternalServerError, ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "something went wrong while checking the token",
		})
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

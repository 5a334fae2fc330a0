package jwtauthorizer

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keystone-auth/go-jwt-authorizer/core"
)

func TestDefaultErrorHandler(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		wantStatus    int
		wantChallenge string
		wantBody      string
	}{
		{
			name: "no credential",
			err: core.Outcome{
				Status: core.Unauthorized,
				Reason: core.ReasonNoCredential,
				Code:   core.CodeTokenMissing,
				Err:    core.ErrNoCredential,
			}.Error(),
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: "Bearer",
			wantBody:      `{"error":"unauthorized","error_description":"no credential found"}`,
		},
		{
			name: "invalid token",
			err: core.Outcome{
				Status: core.Unauthorized,
				Reason: core.ReasonInvalidToken,
				Code:   "token_expired",
				Err:    errors.New("token is expired"),
			}.Error(),
			wantStatus:    http.StatusUnauthorized,
			wantChallenge: `Bearer error="invalid_token", error_description="invalid token"`,
			wantBody:      `{"error":"invalid_token","error_description":"invalid token"}`,
		},
		{
			name: "internal failure",
			err: core.Outcome{
				Status: core.InternalFailure,
				Reason: "key service unavailable",
				Code:   "jwks_fetch_failed",
				Err:    errors.New("dial tcp: connection refused"),
			}.Error(),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"server_error","error_description":"key service unavailable"}`,
		},
		{
			name:       "foreign error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"server_error","error_description":"something went wrong while checking the token"}`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			DefaultErrorHandler(recorder, httptest.NewRequest(http.MethodGet, "/", nil), testCase.err)

			assert.Equal(t, testCase.wantStatus, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			assert.Equal(t, testCase.wantChallenge, recorder.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, testCase.wantBody, recorder.Body.String())
			assert.NotContains(t, recorder.Body.String(), "refused")
		})
	}
}

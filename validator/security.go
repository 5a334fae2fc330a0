package validator

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTokenFormat is returned when a token is not a JWS in compact
	// serialization (header.payload.signature).
	ErrTokenFormat = errors.New("token is not a compact JWS")

	// ErrMissingKeyID is returned when the token header names no signing key.
	ErrMissingKeyID = errors.New("token header has no key id")
)

// maxTokenSize rejects tokens that are suspiciously large before any
// decoding happens. Session tokens are typically well below 4KB.
const maxTokenSize = 1024 * 1024

// splitToken performs pre-validation on the token string and returns its
// header and payload segments. Counting the separators first bounds the work
// done on hostile inputs with huge numbers of dots.
func splitToken(tokenString string) (header, payload string, err error) {
	if tokenString == "" {
		return "", "", fmt.Errorf("%w: token is empty", ErrTokenFormat)
	}
	if len(tokenString) > maxTokenSize {
		return "", "", fmt.Errorf("%w: token exceeds maximum size (1MB)", ErrTokenFormat)
	}
	if dots := strings.Count(tokenString, "."); dots != 2 {
		return "", "", fmt.Errorf("%w: expected 3 parts, got %d", ErrTokenFormat, dots+1)
	}

	parts := strings.SplitN(tokenString, ".", 3)
	return parts[0], parts[1], nil
}

type tokenHeader struct {
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg"`
}

// decodeHeader decodes the header segment without verifying anything.
func decodeHeader(segment string) (tokenHeader, error) {
	headerJSON, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return tokenHeader{}, fmt.Errorf("failed to decode token header: %w", err)
	}

	var header tokenHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return tokenHeader{}, fmt.Errorf("failed to unmarshal token header: %w", err)
	}

	if header.KeyID == "" {
		return tokenHeader{}, ErrMissingKeyID
	}

	return header, nil
}

// decodePayload decodes the payload segment into claims. It must only be
// called once the signature has been verified.
func decodePayload(segment string) (*SessionClaims, error) {
	payloadJSON, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token payload: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token claims: %w", err)
	}

	return &claims, nil
}

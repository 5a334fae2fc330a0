package validator

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/keystone-auth/go-jwt-authorizer/jwks"
)

// RS256 is the only signature algorithm session tokens are accepted with.
const RS256 = "RS256"

// minRSAKeyBits is the smallest modulus crypto/rsa verifies with.
const minRSAKeyBits = 1024

// KeyGetter looks up a signing key by key id. *jwks.CachingProvider
// implements it.
type KeyGetter interface {
	GetKey(ctx context.Context, keyID string) (jwks.SigningKey, error)
}

// Validator validates RS256 session tokens against the identity provider's
// published signing keys.
type Validator struct {
	keyGetter         KeyGetter        // Required.
	allowedClockSkew  time.Duration    // Optional.
	clock             func() time.Time // Optional.
	authorizedParties []string         // Optional.
}

// New creates a new Validator with the provided options.
//
// Required options:
//   - WithKeyGetter: where signing keys are looked up
//
// Optional options:
//   - WithAllowedClockSkew: tolerance for time-based claims
//   - WithClock: time source for time-based claims
//   - WithAuthorizedParties: allow-list for the azp claim
//
// Example:
//
//	v, err := validator.New(
//	    validator.WithKeyGetter(cachingProvider),
//	    validator.WithAllowedClockSkew(30*time.Second),
//	)
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		clock: time.Now,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if v.keyGetter == nil {
		return nil, errors.New("key getter is required (use WithKeyGetter)")
	}

	return v, nil
}

// ValidateToken verifies tokenString and returns its claims.
//
// Every failure is an *Error. Client-caused failures (malformed tokens,
// unknown signing keys, bad signatures, expired or not yet valid tokens)
// all share the reason ErrInvalidToken. Failures of the identity provider
// are reported as KindInternal with ErrKeyServiceUnavailable,
// ErrUnsupportedKeyAlgorithm or ErrInvalidKeyMaterial.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*SessionClaims, error) {
	headerSegment, payloadSegment, err := splitToken(tokenString)
	if err != nil {
		return nil, unauthorized(CodeTokenMalformed, err)
	}

	header, err := decodeHeader(headerSegment)
	if err != nil {
		return nil, unauthorized(CodeTokenMalformed, err)
	}

	signingKey, err := v.keyGetter.GetKey(ctx, header.KeyID)
	if err != nil {
		if errors.Is(err, jwks.ErrUnknownKey) {
			return nil, unauthorized(CodeKeyNotFound, err)
		}
		return nil, internal(ErrKeyServiceUnavailable, CodeKeyFetchFailed, err)
	}

	if signingKey.Algorithm != RS256 {
		return nil, internal(
			ErrUnsupportedKeyAlgorithm,
			CodeInvalidAlgorithm,
			fmt.Errorf("key %q uses algorithm %q", signingKey.KeyID, signingKey.Algorithm),
		)
	}

	verificationKey, err := verificationKey(signingKey)
	if err != nil {
		return nil, internal(ErrInvalidKeyMaterial, CodeInvalidKeyMaterial, err)
	}

	if _, err := jwt.ParseString(
		tokenString,
		jwt.WithKey(jwa.RS256(), verificationKey),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(v.clock)),
		jwt.WithAcceptableSkew(v.allowedClockSkew),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
	); err != nil {
		return nil, unauthorized(verificationCode(err), err)
	}

	claims, err := decodePayload(payloadSegment)
	if err != nil {
		return nil, unauthorized(CodeInvalidClaims, err)
	}

	if err := v.checkAuthorizedParty(claims); err != nil {
		return nil, unauthorized(CodeUnauthorizedParty, err)
	}

	return claims, nil
}

func (v *Validator) checkAuthorizedParty(claims *SessionClaims) error {
	if len(v.authorizedParties) == 0 || claims.AuthorizedParty == nil {
		return nil
	}
	if !slices.Contains(v.authorizedParties, *claims.AuthorizedParty) {
		return fmt.Errorf("authorized party %q is not allowed", *claims.AuthorizedParty)
	}
	return nil
}

// verificationKey builds an RSA public key from the published modulus and
// exponent. The key id is carried over because jwx requires it to match the
// token header.
func verificationKey(signingKey jwks.SigningKey) (jwk.Key, error) {
	raw, err := json.Marshal(map[string]string{
		"kty": "RSA",
		"kid": signingKey.KeyID,
		"alg": RS256,
		"n":   signingKey.Modulus,
		"e":   signingKey.Exponent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode key %q: %w", signingKey.KeyID, err)
	}

	key, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key %q: %w", signingKey.KeyID, err)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("key %q is invalid: %w", signingKey.KeyID, err)
	}

	var pub rsa.PublicKey
	if err := jwk.Export(key, &pub); err != nil {
		return nil, fmt.Errorf("failed to export key %q: %w", signingKey.KeyID, err)
	}
	if pub.N.BitLen() < minRSAKeyBits || pub.E < 3 {
		return nil, fmt.Errorf("key %q is too weak: %d bit modulus, exponent %d", signingKey.KeyID, pub.N.BitLen(), pub.E)
	}

	return key, nil
}

func verificationCode(err error) string {
	switch {
	case errors.Is(err, jwt.TokenExpiredError()):
		return CodeTokenExpired
	case errors.Is(err, jwt.TokenNotYetValidError()), errors.Is(err, jwt.InvalidIssuedAtError()):
		return CodeTokenNotYetValid
	case errors.Is(err, jwt.MissingRequiredClaimError()):
		return CodeInvalidClaims
	default:
		return CodeInvalidSignature
	}
}

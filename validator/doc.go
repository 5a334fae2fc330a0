/*
Package validator verifies RS256 session tokens using the lestrrat-go/jwx v3
library and maps their claims into SessionClaims.

Signing keys are looked up by the token's key id through a KeyGetter,
normally a *jwks.CachingProvider. Only RS256 is accepted. A key published
under any other algorithm is treated as a misconfiguration of the identity
provider, not as a bad token.

# Basic Usage

	issuerURL, _ := url.Parse("https://auth.example.com/")

	provider, err := jwks.NewCachingProvider(
	    jwks.WithIssuerURL(issuerURL),
	    jwks.WithUnknownKeyPolicy(jwks.RatelimitedRefresh(5*time.Minute)),
	)
	if err != nil {
	    log.Fatal(err)
	}

	v, err := validator.New(
	    validator.WithKeyGetter(provider),
	    validator.WithAllowedClockSkew(30*time.Second),
	)
	if err != nil {
	    log.Fatal(err)
	}

	claims, err := v.ValidateToken(ctx, tokenString)

# Errors

Every failure is a *Error. Use its Kind to decide the response:

	var verr *validator.Error
	if errors.As(err, &verr) {
	    switch verr.Kind {
	    case validator.KindUnauthorized:
	        // 401, reason is always "invalid token"
	    case validator.KindInternal:
	        // 500, e.g. "key service unavailable"
	    }
	}

Error.Code names the failed check (token_expired, invalid_signature, ...)
for logs and metrics.

# Claims

The registered claims sub, iss, iat, nbf and exp are required. azp, sid, act
and the org_* claims have dedicated fields; every other claim is kept in
SessionClaims.Other and can be decoded with SessionClaims.Claim:

	var plan string
	if err := claims.Claim("plan", &plan); err != nil {
	    // validator.ErrClaimNotFound or a decode error
	}
*/
package validator

/*
Package core provides the framework-agnostic Authorizer that turns an inbound
request into an authorization Outcome.

The Authorizer only sees requests through the Request interface, which
exposes a header and a cookie by name. Transport adapters (net/http in the
root package, gin, echo and gRPC) implement it and map the Outcome to their
own responses:

	┌──────────────────────────────────────────┐
	│  Transport Adapters (HTTP, Gin, Echo,    │
	│  gRPC): implement core.Request           │
	└────────────────────┬─────────────────────┘
	                     │
	                     ▼
	┌──────────────────────────────────────────┐
	│  Authorizer (this package)               │
	│  header / session cookie extraction,     │
	│  outcome classification                  │
	└────────────────────┬─────────────────────┘
	                     │
	                     ▼
	┌──────────────────────────────────────────┐
	│  validator.Validator → jwks.CachingProvider │
	└──────────────────────────────────────────┘

# Basic Usage

	authorizer, err := core.New(
	    core.WithValidator(v),
	    core.WithSessionCookie(true),
	)
	if err != nil {
	    log.Fatal(err)
	}

	outcome := authorizer.Authorize(ctx, req)
	switch outcome.Status {
	case core.Authorized:
	    ctx = core.SetClaims(ctx, outcome.Claims)
	case core.Unauthorized:
	    // 401 with outcome.Reason
	case core.InternalFailure:
	    // 500 with outcome.Reason
	}

# Outcomes

Unauthorized covers every client-caused failure: a missing credential
("no credential found") and every rejected token ("invalid token").
InternalFailure covers failures of the identity provider: the key set could
not be fetched, or it published a key that is not a usable RS256 key.
Outcome.Error converts a failed outcome into an *AuthError that matches
ErrUnauthorized or ErrInternal with errors.Is.
*/
package core

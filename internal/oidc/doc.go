/*
Package oidc provides OIDC (OpenID Connect) discovery functionality.

It fetches the .well-known/openid-configuration document of an issuer and
returns the endpoints the key-set provider needs, most importantly jwks_uri.

# Usage

	issuerURL, _ := url.Parse("https://auth.example.com/")
	client := &http.Client{Timeout: 10 * time.Second}

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, client, *issuerURL)
	if err != nil {
	    // network failure, non-200 status, invalid JSON,
	    // missing jwks_uri or issuer mismatch
	}

	jwksURI := endpoints.JWKSURI

# Specification

OpenID Connect Discovery 1.0
https://openid.net/specs/openid-connect-discovery-1_0.html
*/
package oidc

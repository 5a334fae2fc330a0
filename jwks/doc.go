/*
Package jwks fetches and caches the signing keys an identity provider
publishes as a JSON Web Key Set.

# Providers

Provider fetches the key set over HTTP, either from a configured endpoint or
from the jwks_uri advertised by the issuer's .well-known/openid-configuration
document. It performs one request per Fetch and never caches or retries.

StaticProvider serves a fixed key set, which is handy in tests and in
deployments that pin their keys.

Both implement Fetcher, as does redisstore.Store, which shares fetched key
sets between instances through Redis.

# Caching

CachingProvider keeps the most recent key set in memory as an immutable
KeySetSnapshot and answers GetKey lookups from it:

	provider, err := jwks.NewCachingProvider(
	    jwks.WithIssuerURL(issuerURL),
	    jwks.WithExpireAfter(time.Hour),
	    jwks.WithUnknownKeyPolicy(jwks.RatelimitedRefresh(5*time.Minute)),
	)
	if err != nil {
	    log.Fatal(err)
	}

	key, err := provider.GetKey(ctx, "ins_2abc")

The snapshot is fetched on first use and again whenever it is older than the
expire-after duration. When a fresh snapshot does not contain the requested
key id, the unknown key policy decides whether to fetch again:

  - RefreshNever: never; rotated keys are picked up on expiry
  - RefreshAlways: once per lookup
  - RatelimitedRefresh(d): only if the held snapshot is at least d old

A single GetKey call fetches at most once. Failed fetches return an error
matching ErrFetchFailed and leave the published snapshot untouched; missing
keys return an error matching ErrUnknownKey.
*/
package jwks

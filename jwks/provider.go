package jwks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/keystone-auth/go-jwt-authorizer/internal/oidc"
)

// Provider fetches the key set from the identity provider over HTTP.
//
// Every call to Fetch performs exactly one request for the key set (plus a
// discovery request the first time, when only an issuer URL is configured).
// Provider does not cache key sets or retry; wrap it in a CachingProvider.
type Provider struct {
	IssuerURL     *url.URL // Required unless CustomJWKSURI is set.
	CustomJWKSURI *url.URL // Optional.
	Client        *http.Client

	secretKey string
	clock     func() time.Time

	// discovered key-set URI, memoised after the first successful discovery
	jwksURIMu sync.Mutex
	jwksURI   string
}

// NewProvider builds and returns a new *Provider.
//
// One of these options is required:
//   - WithIssuerURL: OIDC issuer URL for key-set discovery
//   - WithCustomJWKSURI: key-set endpoint (skips discovery)
//
// Optional options:
//   - WithCustomClient: Custom HTTP client
//   - WithSecretKey: Bearer secret sent with key-set requests
//   - WithProviderClock: clock used to stamp snapshots
//
// Example:
//
//	provider, err := jwks.NewProvider(
//	    jwks.WithIssuerURL(issuerURL),
//	    jwks.WithCustomClient(myHTTPClient),
//	)
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		Client: &http.Client{Timeout: 30 * time.Second},
		clock:  time.Now,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if p.IssuerURL == nil && p.CustomJWKSURI == nil {
		return nil, fmt.Errorf("issuer URL or custom JWKS URI is required (use WithIssuerURL or WithCustomJWKSURI)")
	}

	return p, nil
}

// Fetch retrieves the current key set and returns it as a new snapshot
// stamped with the fetch time.
func (p *Provider) Fetch(ctx context.Context) (*KeySetSnapshot, error) {
	jwksURI, err := p.getJWKSURI(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.secretKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS request returned status %d, expected 200", resp.StatusCode)
	}

	return ParseKeySet(resp.Body, p.clock())
}

// getJWKSURI returns the key-set URI, discovering it if necessary. A failed
// discovery is not memoised so the next fetch tries again.
func (p *Provider) getJWKSURI(ctx context.Context) (string, error) {
	if p.CustomJWKSURI != nil {
		return p.CustomJWKSURI.String(), nil
	}

	p.jwksURIMu.Lock()
	defer p.jwksURIMu.Unlock()

	if p.jwksURI != "" {
		return p.jwksURI, nil
	}

	wkEndpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, p.Client, *p.IssuerURL)
	if err != nil {
		return "", fmt.Errorf("failed to discover JWKS URI: %w", err)
	}

	jwksURI, err := url.Parse(wkEndpoints.JWKSURI)
	if err != nil {
		return "", fmt.Errorf("could not parse JWKS URI from well known endpoints: %w", err)
	}

	p.jwksURI = jwksURI.String()
	return p.jwksURI, nil
}

// StaticProvider serves a fixed key set. Each Fetch returns a new snapshot
// stamped with the current time, which makes it behave like an identity
// provider that never rotates its keys.
type StaticProvider struct {
	keys  []SigningKey
	clock func() time.Time
}

// NewStaticProvider returns a StaticProvider serving keys.
func NewStaticProvider(keys ...SigningKey) *StaticProvider {
	return &StaticProvider{
		keys:  append([]SigningKey(nil), keys...),
		clock: time.Now,
	}
}

// Fetch implements Fetcher.
func (s *StaticProvider) Fetch(_ context.Context) (*KeySetSnapshot, error) {
	return NewKeySetSnapshot(s.keys, s.clock()), nil
}

package jwks

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ============================================================================
// Provider Options
// ============================================================================

// ProviderOption is how options for the Provider are set up.
type ProviderOption func(*Provider) error

// WithIssuerURL sets the OIDC issuer URL for key-set discovery.
//
// The issuer URL is used to discover the key-set endpoint via the
// .well-known/openid-configuration document.
func WithIssuerURL(issuerURL *url.URL) ProviderOption {
	return func(p *Provider) error {
		if issuerURL == nil {
			return fmt.Errorf("issuer URL cannot be nil")
		}
		p.IssuerURL = issuerURL
		return nil
	}
}

// WithCustomJWKSURI sets the key-set endpoint directly, skipping discovery.
func WithCustomJWKSURI(jwksURI *url.URL) ProviderOption {
	return func(p *Provider) error {
		if jwksURI == nil {
			return fmt.Errorf("custom JWKS URI cannot be nil")
		}
		p.CustomJWKSURI = jwksURI
		return nil
	}
}

// WithCustomClient sets a custom HTTP client for the Provider.
// If not specified, a default client with 30s timeout is used.
func WithCustomClient(c *http.Client) ProviderOption {
	return func(p *Provider) error {
		if c == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		p.Client = c
		return nil
	}
}

// WithSecretKey authenticates key-set requests with
// "Authorization: Bearer <secretKey>", as required by identity provider
// backend APIs that serve the key set to server-side consumers.
func WithSecretKey(secretKey string) ProviderOption {
	return func(p *Provider) error {
		if secretKey == "" {
			return fmt.Errorf("secret key cannot be empty")
		}
		p.secretKey = secretKey
		return nil
	}
}

// WithProviderClock sets the clock used to stamp fetched snapshots.
func WithProviderClock(now func() time.Time) ProviderOption {
	return func(p *Provider) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		p.clock = now
		return nil
	}
}

// ============================================================================
// CachingProvider Options
// ============================================================================

// CachingProviderOption is how options for the CachingProvider are set up.
type CachingProviderOption func(*cachingProviderConfig) error

type cachingProviderConfig struct {
	fetcher     Fetcher
	expireAfter time.Duration
	policy      RefreshPolicy
	clock       func() time.Time
	logger      Logger
	metrics     Metrics
	tracer      trace.Tracer
}

// WithFetcher sets where the CachingProvider gets its key sets from. It cannot
// be combined with ProviderOptions, which build an HTTP Provider instead.
func WithFetcher(f Fetcher) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if f == nil {
			return fmt.Errorf("fetcher cannot be nil")
		}
		c.fetcher = f
		return nil
	}
}

// WithExpireAfter sets how long a fetched snapshot stays fresh.
// If not specified, defaults to 1 hour.
func WithExpireAfter(d time.Duration) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if d <= 0 {
			return fmt.Errorf("expire after must be positive (use WithNoExpiry to never expire)")
		}
		c.expireAfter = d
		return nil
	}
}

// WithNoExpiry makes fetched snapshots stay fresh forever. New keys are then
// only picked up through the unknown key policy.
func WithNoExpiry() CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		c.expireAfter = 0
		return nil
	}
}

// WithUnknownKeyPolicy sets what happens when a fresh snapshot does not
// contain the requested key id.
// If not specified, defaults to RatelimitedRefresh(5 * time.Minute).
func WithUnknownKeyPolicy(p RefreshPolicy) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if err := p.validate(); err != nil {
			return err
		}
		c.policy = p
		return nil
	}
}

// WithClock sets the time source used for expiry and rate limiting.
func WithClock(now func() time.Time) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.clock = now
		return nil
	}
}

// WithLogger sets an optional logger for cache refreshes.
func WithLogger(logger Logger) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics sets an optional metrics sink for cache refreshes.
func WithMetrics(m Metrics) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if m == nil {
			return fmt.Errorf("metrics cannot be nil")
		}
		c.metrics = m
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer used for key-set fetches.
// If not specified, the globally registered tracer provider is used.
func WithTracer(t trace.Tracer) CachingProviderOption {
	return func(c *cachingProviderConfig) error {
		if t == nil {
			return fmt.Errorf("tracer cannot be nil")
		}
		c.tracer = t
		return nil
	}
}

package jwks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	defaultExpireAfter = time.Hour
	defaultMinAge      = 5 * time.Minute

	tracerName = "github.com/keystone-auth/go-jwt-authorizer/jwks"

	metricFetchTotal = "jwks_fetch_total"
	metricKeys       = "jwks_keys"
)

// Reasons a key set is fetched, reported in logs, metrics and spans.
const (
	ReasonInitial    = "initial"
	ReasonExpired    = "expired"
	ReasonUnknownKey = "unknown_key"
	ReasonManual     = "manual"
)

// Logger defines an optional logging interface, matching core.Logger and
// log/slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics is the subset of the middleware metrics interface used by the
// CachingProvider.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	SetGauge(name string, value float64, tags map[string]string)
}

// CachingProvider resolves key ids to signing keys from an in-memory snapshot
// of the identity provider's key set.
//
// The snapshot is refreshed synchronously when it has never been fetched or
// has expired. A key id missing from a fresh snapshot may trigger one more
// fetch depending on the configured RefreshPolicy. A failed fetch never
// replaces the published snapshot.
//
// CachingProvider is safe for concurrent use. Concurrent refreshes are
// coalesced into a single upstream fetch.
type CachingProvider struct {
	fetcher     Fetcher
	expireAfter time.Duration // 0 means never
	policy      RefreshPolicy
	clock       func() time.Time
	logger      Logger
	metrics     Metrics
	tracer      trace.Tracer

	snapshot atomic.Pointer[KeySetSnapshot]
	group    singleflight.Group
}

// NewCachingProvider builds and returns a new CachingProvider.
//
// Accepts both ProviderOption and CachingProviderOption types, so the HTTP
// Provider options (WithIssuerURL, WithCustomJWKSURI, WithCustomClient,
// WithSecretKey) can be passed directly. Alternatively WithFetcher supplies
// any Fetcher, such as a StaticProvider or a redisstore.Store.
//
// Optional options:
//   - WithExpireAfter: snapshot lifetime (default: 1 hour)
//   - WithNoExpiry: snapshots never expire
//   - WithUnknownKeyPolicy: refresh policy for unknown key ids
//     (default: RatelimitedRefresh(5 * time.Minute))
//   - WithClock, WithLogger, WithMetrics, WithTracer
//
// Example:
//
//	provider, err := jwks.NewCachingProvider(
//	    jwks.WithIssuerURL(issuerURL),
//	    jwks.WithUnknownKeyPolicy(jwks.RefreshNever()),
//	)
func NewCachingProvider(opts ...any) (*CachingProvider, error) {
	config := &cachingProviderConfig{
		expireAfter: defaultExpireAfter,
		policy:      RatelimitedRefresh(defaultMinAge),
		clock:       time.Now,
	}

	var providerOpts []ProviderOption
	for _, opt := range opts {
		switch v := opt.(type) {
		case CachingProviderOption:
			if err := v(config); err != nil {
				return nil, fmt.Errorf("invalid option: %w", err)
			}
		case ProviderOption:
			providerOpts = append(providerOpts, v)
		default:
			return nil, fmt.Errorf("invalid option type: %T (must be ProviderOption or CachingProviderOption)", opt)
		}
	}

	switch {
	case config.fetcher != nil && len(providerOpts) > 0:
		return nil, fmt.Errorf("WithFetcher cannot be combined with provider options")
	case config.fetcher == nil && len(providerOpts) == 0:
		return nil, fmt.Errorf("a key-set source is required (use WithIssuerURL, WithCustomJWKSURI or WithFetcher)")
	case config.fetcher == nil:
		// Snapshots are stamped with the same clock that ages them.
		providerOpts = append([]ProviderOption{WithProviderClock(config.clock)}, providerOpts...)
		p, err := NewProvider(providerOpts...)
		if err != nil {
			return nil, err
		}
		config.fetcher = p
	}

	if config.tracer == nil {
		config.tracer = otel.Tracer(tracerName)
	}

	return &CachingProvider{
		fetcher:     config.fetcher,
		expireAfter: config.expireAfter,
		policy:      config.policy,
		clock:       config.clock,
		logger:      config.logger,
		metrics:     config.metrics,
		tracer:      config.tracer,
	}, nil
}

// GetKey returns the signing key with the given key id.
//
// It returns an error matching ErrFetchFailed when a required fetch failed and
// one matching ErrUnknownKey when the key id is not in the key set after
// whatever refresh the policy allowed. At most one fetch is triggered per
// call for a missing key id.
func (c *CachingProvider) GetKey(ctx context.Context, keyID string) (SigningKey, error) {
	snap := c.snapshot.Load()
	refreshedThisCall := false

	if reason, stale := c.staleness(snap); stale {
		fresh, err := c.refresh(ctx, reason)
		if err != nil {
			return SigningKey{}, err
		}
		snap = fresh
		refreshedThisCall = true
	}

	if key, ok := snap.Key(keyID); ok {
		return key, nil
	}

	if refreshedThisCall {
		return SigningKey{}, unknownKeyError(keyID)
	}

	if !c.policy.allowsRefresh(snap.Age(c.clock())) {
		c.debug("signing key not found, refresh not allowed by policy",
			"kid", keyID, "policy", c.policy.String())
		return SigningKey{}, unknownKeyError(keyID)
	}

	fresh, err := c.refresh(ctx, ReasonUnknownKey)
	if err != nil {
		return SigningKey{}, err
	}

	if key, ok := fresh.Key(keyID); ok {
		return key, nil
	}
	return SigningKey{}, unknownKeyError(keyID)
}

// Snapshot returns the currently published snapshot, or nil when no key set
// has been fetched yet.
func (c *CachingProvider) Snapshot() *KeySetSnapshot {
	return c.snapshot.Load()
}

// Refresh fetches and publishes a new key set regardless of the current
// snapshot's age. Useful to warm the cache at startup.
func (c *CachingProvider) Refresh(ctx context.Context) error {
	_, err := c.refresh(ctx, ReasonManual)
	return err
}

// staleness reports whether snap must be replaced before it can be used and
// why.
func (c *CachingProvider) staleness(snap *KeySetSnapshot) (string, bool) {
	if snap == nil || snap.FetchedAt().IsZero() {
		return ReasonInitial, true
	}
	if c.expireAfter > 0 && snap.Age(c.clock()) >= c.expireAfter {
		return ReasonExpired, true
	}
	return "", false
}

// refresh fetches a new key set and publishes it. Callers arriving while a
// fetch is in flight share its result. The fetch is detached from the
// caller's cancellation so that one abandoned request cannot fail the
// others waiting on the same fetch.
func (c *CachingProvider) refresh(ctx context.Context, reason string) (*KeySetSnapshot, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), reason)
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeySetSnapshot), nil
}

func (c *CachingProvider) fetch(ctx context.Context, reason string) (*KeySetSnapshot, error) {
	ctx, span := c.tracer.Start(ctx, "jwks.fetch",
		trace.WithAttributes(attribute.String("reason", reason)))
	defer span.End()

	started := c.clock()
	snap, err := c.fetcher.Fetch(ctx)
	if err == nil && snap == nil {
		err = fmt.Errorf("fetcher returned no key set")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.count(reason, "error")
		c.warn("failed to fetch key set", "reason", reason, "error", err)
		return nil, &fetchError{details: err}
	}

	c.snapshot.Store(snap)

	span.SetAttributes(attribute.Int("keys", snap.Len()))
	c.count(reason, "success")
	if c.metrics != nil {
		c.metrics.SetGauge(metricKeys, float64(snap.Len()), map[string]string{})
	}
	c.debug("key set refreshed",
		"reason", reason,
		"keys", snap.Len(),
		"duration", c.clock().Sub(started))

	return snap, nil
}

func (c *CachingProvider) count(reason, result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.IncCounter(metricFetchTotal, map[string]string{"reason": reason, "result": result})
}

func (c *CachingProvider) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *CachingProvider) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

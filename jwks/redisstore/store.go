// Package redisstore shares fetched key sets between instances through Redis.
//
// A Store sits between a jwks.CachingProvider and the identity provider:
//
//	provider, _ := jwks.NewProvider(jwks.WithIssuerURL(issuerURL))
//	store, _ := redisstore.New(redisClient, provider)
//	cache, _ := jwks.NewCachingProvider(jwks.WithFetcher(store))
//
// Every instance of a fleet then reads the key set from Redis, and only the
// first one to find it missing fetches it upstream. The in-memory cache and
// its unknown key policy work unchanged on top of the store, but they can
// only observe keys as new as the shared copy, so keep the TTL at or below the
// rate-limit window.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keystone-auth/go-jwt-authorizer/jwks"
)

const (
	// DefaultKey is the Redis key the key set is stored under.
	DefaultKey = "jwks:keyset"
	// DefaultTTL matches the default rate-limit window of the key cache.
	DefaultTTL = 5 * time.Minute
)

// storedKeySet is the JSON document kept in Redis.
type storedKeySet struct {
	FetchedAt time.Time         `json:"fetched_at"`
	Keys      []jwks.SigningKey `json:"keys"`
}

// Store implements jwks.Fetcher on top of Redis and an upstream fetcher.
type Store struct {
	client   redis.UniversalClient
	upstream jwks.Fetcher
	key      string
	ttl      time.Duration
	logger   jwks.Logger
}

// Option is how options for the Store are set up.
type Option func(*Store) error

// WithKey sets the Redis key. Use distinct keys for distinct identity
// providers sharing a Redis database.
func WithKey(key string) Option {
	return func(s *Store) error {
		if key == "" {
			return fmt.Errorf("redis key cannot be empty")
		}
		s.key = key
		return nil
	}
}

// WithTTL sets how long a stored key set is served before it is fetched
// upstream again.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) error {
		if ttl <= 0 {
			return fmt.Errorf("TTL must be positive")
		}
		s.ttl = ttl
		return nil
	}
}

// WithLogger sets an optional logger for Redis failures, which are never
// returned to the caller.
func WithLogger(logger jwks.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// New returns a Store reading through client to upstream.
func New(client redis.UniversalClient, upstream jwks.Fetcher, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if upstream == nil {
		return nil, fmt.Errorf("upstream fetcher is required")
	}

	s := &Store{
		client:   client,
		upstream: upstream,
		key:      DefaultKey,
		ttl:      DefaultTTL,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return s, nil
}

// Fetch returns the shared key set when Redis holds a valid one, otherwise
// it fetches upstream and stores the result. Redis being unavailable degrades
// to fetching upstream on every call; only upstream failures are returned.
func (s *Store) Fetch(ctx context.Context) (*jwks.KeySetSnapshot, error) {
	if snap, ok := s.load(ctx); ok {
		return snap, nil
	}

	snap, err := s.upstream.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.save(ctx, snap)
	return snap, nil
}

func (s *Store) load(ctx context.Context) (*jwks.KeySetSnapshot, bool) {
	cached, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.warn("failed to read key set from redis", "key", s.key, "error", err)
		}
		return nil, false
	}

	var stored storedKeySet
	if err := json.Unmarshal(cached, &stored); err != nil {
		s.warn("failed to parse key set from redis", "key", s.key, "error", err)
		return nil, false
	}
	if stored.FetchedAt.IsZero() {
		s.warn("key set from redis has no fetch time", "key", s.key)
		return nil, false
	}

	return jwks.NewKeySetSnapshot(stored.Keys, stored.FetchedAt), true
}

func (s *Store) save(ctx context.Context, snap *jwks.KeySetSnapshot) {
	data, err := json.Marshal(storedKeySet{FetchedAt: snap.FetchedAt(), Keys: snap.Keys()})
	if err != nil {
		s.warn("failed to marshal key set for redis", "error", err)
		return
	}

	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		s.warn("failed to write key set to redis", "key", s.key, "error", err)
	}
}

func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystone-auth/go-jwt-authorizer/jwks"
)

type stubUpstream struct {
	mu        sync.Mutex
	calls     int
	keys      []jwks.SigningKey
	fetchedAt time.Time
	err       error
}

func (u *stubUpstream) Fetch(context.Context) (*jwks.KeySetSnapshot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls++
	if u.err != nil {
		return nil, u.err
	}
	return jwks.NewKeySetSnapshot(u.keys, u.fetchedAt), nil
}

type warnLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *warnLogger) Debug(string, ...any) {}
func (l *warnLogger) Info(string, ...any)  {}
func (l *warnLogger) Error(string, ...any) {}
func (l *warnLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func setup(t *testing.T, opts ...Option) (*Store, *stubUpstream, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	upstream := &stubUpstream{
		keys: []jwks.SigningKey{
			{KeyID: "ins_1", Algorithm: "RS256", Use: "sig", KeyType: "RSA", Modulus: "modulus", Exponent: "AQAB"},
		},
		fetchedAt: time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
	}

	store, err := New(client, upstream, opts...)
	require.NoError(t, err)

	return store, upstream, mr
}

func Test_Store(t *testing.T) {
	t.Run("it fetches upstream on a miss and shares the result", func(t *testing.T) {
		store, upstream, mr := setup(t)

		snap, err := store.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"ins_1"}, snap.KeyIDs())
		assert.Equal(t, 1, upstream.calls)

		require.True(t, mr.Exists(DefaultKey))
		assert.Equal(t, DefaultTTL, mr.TTL(DefaultKey))

		raw, err := mr.Get(DefaultKey)
		require.NoError(t, err)
		var stored storedKeySet
		require.NoError(t, json.Unmarshal([]byte(raw), &stored))
		assert.True(t, upstream.fetchedAt.Equal(stored.FetchedAt))
		assert.Equal(t, upstream.keys, stored.Keys)
	})

	t.Run("it serves the stored key set with its original fetch time", func(t *testing.T) {
		store, upstream, _ := setup(t)

		_, err := store.Fetch(context.Background())
		require.NoError(t, err)

		upstream.keys = nil
		snap, err := store.Fetch(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, upstream.calls)
		assert.Equal(t, []string{"ins_1"}, snap.KeyIDs())
		assert.True(t, upstream.fetchedAt.Equal(snap.FetchedAt()))
	})

	t.Run("it fetches upstream again once the TTL has passed", func(t *testing.T) {
		store, upstream, mr := setup(t, WithTTL(time.Minute))

		_, err := store.Fetch(context.Background())
		require.NoError(t, err)

		mr.FastForward(time.Minute)

		_, err = store.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, upstream.calls)
	})

	t.Run("it uses the configured key", func(t *testing.T) {
		store, _, mr := setup(t, WithKey("jwks:tenant-a"))

		_, err := store.Fetch(context.Background())
		require.NoError(t, err)

		assert.True(t, mr.Exists("jwks:tenant-a"))
		assert.False(t, mr.Exists(DefaultKey))
	})

	t.Run("it ignores a corrupt stored value", func(t *testing.T) {
		logger := &warnLogger{}
		store, upstream, mr := setup(t, WithLogger(logger))
		require.NoError(t, mr.Set(DefaultKey, "{not json"))

		snap, err := store.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, upstream.calls)
		assert.Equal(t, 1, snap.Len())
		assert.Contains(t, logger.messages, "failed to parse key set from redis")

		raw, err := mr.Get(DefaultKey)
		require.NoError(t, err)
		assert.True(t, json.Valid([]byte(raw)), "the corrupt value is overwritten")
	})

	t.Run("it ignores a stored value without a fetch time", func(t *testing.T) {
		store, upstream, mr := setup(t)
		require.NoError(t, mr.Set(DefaultKey, `{"keys":[]}`))

		_, err := store.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, upstream.calls)
	})

	t.Run("it falls back to upstream when redis is failing", func(t *testing.T) {
		logger := &warnLogger{}
		store, upstream, mr := setup(t, WithLogger(logger))
		mr.SetError("READONLY You can't write against a read only replica.")

		snap, err := store.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, snap.Len())
		assert.Equal(t, 1, upstream.calls)
		assert.Contains(t, logger.messages, "failed to read key set from redis")
		assert.Contains(t, logger.messages, "failed to write key set to redis")
	})

	t.Run("it returns upstream errors and stores nothing", func(t *testing.T) {
		store, upstream, mr := setup(t)
		upstream.err = errors.New("upstream down")

		_, err := store.Fetch(context.Background())
		require.Error(t, err)
		assert.EqualError(t, err, "upstream down")
		assert.False(t, mr.Exists(DefaultKey))
	})
}

func Test_StoreBehindCachingProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer clientA.Close()
	defer clientB.Close()

	now := time.Now()
	upstream := &stubUpstream{
		keys:      []jwks.SigningKey{{KeyID: "shared", Algorithm: "RS256", KeyType: "RSA", Modulus: "n", Exponent: "AQAB"}},
		fetchedAt: now,
	}

	newInstance := func(client redis.UniversalClient) *jwks.CachingProvider {
		store, err := New(client, upstream)
		require.NoError(t, err)
		cache, err := jwks.NewCachingProvider(jwks.WithFetcher(store))
		require.NoError(t, err)
		return cache
	}

	instanceA := newInstance(clientA)
	instanceB := newInstance(clientB)

	keyA, err := instanceA.GetKey(context.Background(), "shared")
	require.NoError(t, err)
	keyB, err := instanceB.GetKey(context.Background(), "shared")
	require.NoError(t, err)

	assert.Equal(t, keyA, keyB)
	assert.Equal(t, 1, upstream.calls, "the second instance is served from redis")
}

func Test_New(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	upstream := &stubUpstream{}

	testCases := []struct {
		name     string
		client   redis.UniversalClient
		upstream jwks.Fetcher
		opts     []Option
		wantErr  string
	}{
		{name: "it requires a client", upstream: upstream, wantErr: "redis client is required"},
		{name: "it requires an upstream", client: client, wantErr: "upstream fetcher is required"},
		{name: "it rejects an empty key", client: client, upstream: upstream, opts: []Option{WithKey("")}, wantErr: "redis key cannot be empty"},
		{name: "it rejects a non-positive TTL", client: client, upstream: upstream, opts: []Option{WithTTL(0)}, wantErr: "TTL must be positive"},
		{name: "it rejects a nil logger", client: client, upstream: upstream, opts: []Option{WithLogger(nil)}, wantErr: "logger cannot be nil"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store, err := New(testCase.client, testCase.upstream, testCase.opts...)
			require.Error(t, err)
			assert.Nil(t, store)
			assert.Contains(t, err.Error(), testCase.wantErr)
		})
	}
}

package jwks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// maxKeySetBodySize limits how much of a key-set document is read.
// 1MB is generous for a JWKS (typically <10KB).
const maxKeySetBodySize = 1 << 20

// SigningKey is a single public signing key as published by the identity
// provider's key-set endpoint.
type SigningKey struct {
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg"`
	Use       string `json:"use,omitempty"`
	KeyType   string `json:"kty"`
	Modulus   string `json:"n"`
	Exponent  string `json:"e"`
}

// KeySetSnapshot is an immutable point-in-time copy of a key set.
//
// A snapshot is never modified after it has been created. A refresh produces
// an entirely new snapshot which replaces the previous one, so readers holding
// a reference always see a self-consistent key id to key mapping.
type KeySetSnapshot struct {
	keys      map[string]SigningKey
	fetchedAt time.Time
}

// NewKeySetSnapshot builds a snapshot from keys. Key ids are assumed to be
// unique; if they are not, the last key with a given id wins.
func NewKeySetSnapshot(keys []SigningKey, fetchedAt time.Time) *KeySetSnapshot {
	m := make(map[string]SigningKey, len(keys))
	for _, k := range keys {
		m[k.KeyID] = k
	}
	return &KeySetSnapshot{keys: m, fetchedAt: fetchedAt}
}

// Key returns the key with the given id.
func (s *KeySetSnapshot) Key(keyID string) (SigningKey, bool) {
	if s == nil {
		return SigningKey{}, false
	}
	k, ok := s.keys[keyID]
	return k, ok
}

// Len returns the number of keys in the snapshot.
func (s *KeySetSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// KeyIDs returns the sorted key ids held by the snapshot.
func (s *KeySetSnapshot) KeyIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Keys returns a copy of the keys held by the snapshot, ordered by key id.
func (s *KeySetSnapshot) Keys() []SigningKey {
	ids := s.KeyIDs()
	keys := make([]SigningKey, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.keys[id])
	}
	return keys
}

// FetchedAt returns when the snapshot was fetched. The zero time means the
// snapshot has never been populated.
func (s *KeySetSnapshot) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}

// Age returns how old the snapshot is relative to now.
func (s *KeySetSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt())
}

// Fetcher retrieves the current key set from the identity provider.
//
// Implementations must return a new snapshot on every successful call and
// must not retry on failure.
type Fetcher interface {
	Fetch(ctx context.Context) (*KeySetSnapshot, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (*KeySetSnapshot, error)

// Fetch calls f(ctx).
func (f FetcherFunc) Fetch(ctx context.Context) (*KeySetSnapshot, error) {
	return f(ctx)
}

type keySetDocument struct {
	Keys []SigningKey `json:"keys"`
}

// ParseKeySet parses a JWKS document ({"keys":[...]}) into a snapshot.
// Entries without a key id are skipped since no token can reference them.
func ParseKeySet(r io.Reader, fetchedAt time.Time) (*KeySetSnapshot, error) {
	var doc keySetDocument
	if err := json.NewDecoder(io.LimitReader(r, maxKeySetBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make([]SigningKey, 0, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.KeyID == "" {
			continue
		}
		keys = append(keys, k)
	}

	return NewKeySetSnapshot(keys, fetchedAt), nil
}

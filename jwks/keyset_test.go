package jwks

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_KeySetSnapshot(t *testing.T) {
	fetchedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("it indexes keys by key id", func(t *testing.T) {
		snap := NewKeySetSnapshot([]SigningKey{testSigningKey("b"), testSigningKey("a")}, fetchedAt)

		assert.Equal(t, 2, snap.Len())
		assert.Equal(t, []string{"a", "b"}, snap.KeyIDs())
		assert.Equal(t, fetchedAt, snap.FetchedAt())
		assert.Equal(t, 90*time.Second, snap.Age(fetchedAt.Add(90*time.Second)))

		key, ok := snap.Key("a")
		require.True(t, ok)
		assert.Equal(t, testSigningKey("a"), key)

		_, ok = snap.Key("c")
		assert.False(t, ok)
	})

	t.Run("the last key wins when key ids repeat", func(t *testing.T) {
		first := testSigningKey("dup")
		second := testSigningKey("dup")
		second.Modulus = "second"

		snap := NewKeySetSnapshot([]SigningKey{first, second}, fetchedAt)

		key, ok := snap.Key("dup")
		require.True(t, ok)
		assert.Equal(t, "second", key.Modulus)
		assert.Equal(t, 1, snap.Len())
	})

	t.Run("it is not affected by later changes to the input slice", func(t *testing.T) {
		keys := []SigningKey{testSigningKey("a")}
		snap := NewKeySetSnapshot(keys, fetchedAt)

		keys[0].Modulus = "changed"

		key, _ := snap.Key("a")
		assert.Equal(t, "n-a", key.Modulus)
	})

	t.Run("a nil snapshot behaves as an empty, never fetched one", func(t *testing.T) {
		var snap *KeySetSnapshot

		_, ok := snap.Key("a")
		assert.False(t, ok)
		assert.Zero(t, snap.Len())
		assert.Empty(t, snap.KeyIDs())
		assert.Empty(t, snap.Keys())
		assert.True(t, snap.FetchedAt().IsZero())
	})
}

func Test_ParseKeySet(t *testing.T) {
	fetchedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("it decodes every key field", func(t *testing.T) {
		body := `{"keys":[
			{"kid":"ins_1","alg":"RS256","use":"sig","kty":"RSA","n":"modulus","e":"AQAB","x5t":"ignored"},
			{"kid":"ins_2","alg":"RS256","kty":"RSA","n":"modulus2","e":"AQAB"}
		]}`

		snap, err := ParseKeySet(strings.NewReader(body), fetchedAt)
		require.NoError(t, err)

		want := []SigningKey{
			{KeyID: "ins_1", Algorithm: "RS256", Use: "sig", KeyType: "RSA", Modulus: "modulus", Exponent: "AQAB"},
			{KeyID: "ins_2", Algorithm: "RS256", KeyType: "RSA", Modulus: "modulus2", Exponent: "AQAB"},
		}
		if diff := cmp.Diff(want, snap.Keys()); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, fetchedAt, snap.FetchedAt())
	})

	t.Run("a document without keys is an empty key set", func(t *testing.T) {
		snap, err := ParseKeySet(strings.NewReader(`{}`), fetchedAt)
		require.NoError(t, err)
		assert.Zero(t, snap.Len())
	})

	t.Run("it rejects invalid JSON", func(t *testing.T) {
		_, err := ParseKeySet(strings.NewReader(`not json`), fetchedAt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse JWKS")
	})

	t.Run("it stops reading at the size limit", func(t *testing.T) {
		body := `{"keys":[{"kid":"` + strings.Repeat("a", maxKeySetBodySize) + `"}]}`
		_, err := ParseKeySet(strings.NewReader(body), fetchedAt)
		require.Error(t, err)
	})
}

func Test_RefreshPolicy(t *testing.T) {
	assert.Equal(t, "never", RefreshNever().String())
	assert.Equal(t, "always", RefreshAlways().String())
	assert.Equal(t, "ratelimited(5m0s)", RatelimitedRefresh(5*time.Minute).String())
	assert.Equal(t, "invalid", RefreshPolicy{}.String())

	assert.False(t, RefreshNever().allowsRefresh(time.Hour))
	assert.True(t, RefreshAlways().allowsRefresh(0))
	assert.False(t, RatelimitedRefresh(time.Minute).allowsRefresh(59*time.Second))
	assert.True(t, RatelimitedRefresh(time.Minute).allowsRefresh(time.Minute))
}

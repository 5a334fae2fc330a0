package validator

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSessionClaims_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name          string
		payload       string
		expected      SessionClaims
		expectedError string
	}{
		{
			name:    "it maps the registered claims",
			payload: `{"sub":"user_1","iss":"https://clerk.example.com","iat":1700000000,"nbf":1700000000,"exp":1700003600}`,
			expected: SessionClaims{
				Subject:   "user_1",
				Issuer:    "https://clerk.example.com",
				IssuedAt:  1700000000,
				NotBefore: 1700000000,
				ExpiresAt: 1700003600,
			},
		},
		{
			name: "it maps session and actor claims",
			payload: `{"sub":"user_1","iss":"i","iat":1,"nbf":1,"exp":2,"azp":"https://app.example.com","sid":"sess_1",
				"act":{"iss":"https://dashboard.example.com","sid":"sess_admin","sub":"user_admin"}}`,
			expected: SessionClaims{
				Subject:         "user_1",
				Issuer:          "i",
				IssuedAt:        1,
				NotBefore:       1,
				ExpiresAt:       2,
				AuthorizedParty: strPtr("https://app.example.com"),
				SessionID:       strPtr("sess_1"),
				Actor: &Actor{
					Issuer:    "https://dashboard.example.com",
					SessionID: strPtr("sess_admin"),
					Subject:   "user_admin",
				},
			},
		},
		{
			name: "it maps the active organization and dedupes permissions",
			payload: `{"sub":"user_1","iss":"i","iat":1,"nbf":1,"exp":2,"org_id":"org_1","org_slug":"acme","org_role":"admin",
				"org_permissions":["org:read","org:write","org:read"]}`,
			expected: SessionClaims{
				Subject:   "user_1",
				Issuer:    "i",
				IssuedAt:  1,
				NotBefore: 1,
				ExpiresAt: 2,
				Organization: &ActiveOrganization{
					ID:          "org_1",
					Slug:        "acme",
					Role:        "admin",
					Permissions: []string{"org:read", "org:write"},
				},
			},
		},
		{
			name:    "it keeps org claims without org_id as additional claims",
			payload: `{"sub":"user_1","iss":"i","iat":1,"nbf":1,"exp":2,"org_role":"admin"}`,
			expected: SessionClaims{
				Subject:   "user_1",
				Issuer:    "i",
				IssuedAt:  1,
				NotBefore: 1,
				ExpiresAt: 2,
				Other:     map[string]json.RawMessage{"org_role": json.RawMessage(`"admin"`)},
			},
		},
		{
			name:    "it keeps unknown claims verbatim",
			payload: `{"sub":"user_1","iss":"i","iat":1,"nbf":1,"exp":2,"plan":"pro","meta":{"seats":[1,2]}}`,
			expected: SessionClaims{
				Subject:   "user_1",
				Issuer:    "i",
				IssuedAt:  1,
				NotBefore: 1,
				ExpiresAt: 2,
				Other: map[string]json.RawMessage{
					"plan": json.RawMessage(`"pro"`),
					"meta": json.RawMessage(`{"seats":[1,2]}`),
				},
			},
		},
		{
			name:    "it truncates fractional timestamps",
			payload: `{"sub":"user_1","iss":"i","iat":1.9,"nbf":1.5,"exp":2.999}`,
			expected: SessionClaims{
				Subject:   "user_1",
				Issuer:    "i",
				IssuedAt:  1,
				NotBefore: 1,
				ExpiresAt: 2,
			},
		},
		{
			name:          "it requires sub",
			payload:       `{"iss":"i","iat":1,"nbf":1,"exp":2}`,
			expectedError: `missing required claim "sub"`,
		},
		{
			name:          "it requires nbf",
			payload:       `{"sub":"user_1","iss":"i","iat":1,"exp":2}`,
			expectedError: `missing required claim "nbf"`,
		},
		{
			name:          "it rejects non-numeric timestamps",
			payload:       `{"sub":"user_1","iss":"i","iat":"yesterday","nbf":1,"exp":2}`,
			expectedError: "invalid number literal",
		},
		{
			name:          "it rejects a non-object payload",
			payload:       `["sub"]`,
			expectedError: "cannot unmarshal array",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var claims SessionClaims
			err := json.Unmarshal([]byte(testCase.payload), &claims)

			if testCase.expectedError != "" {
				assert.ErrorContains(t, err, testCase.expectedError)
				return
			}

			require.NoError(t, err)
			if diff := cmp.Diff(testCase.expected, claims); diff != "" {
				t.Errorf("claims mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSessionClaims_MarshalJSON(t *testing.T) {
	t.Run("it flattens the claims back into a payload", func(t *testing.T) {
		claims := SessionClaims{
			Subject:         "user_1",
			Issuer:          "i",
			IssuedAt:        1,
			NotBefore:       1,
			ExpiresAt:       2,
			AuthorizedParty: strPtr("https://app.example.com"),
			Organization:    &ActiveOrganization{ID: "org_1", Slug: "acme", Role: "member"},
			Other:           map[string]json.RawMessage{"plan": json.RawMessage(`"pro"`)},
		}

		payload, err := json.Marshal(claims)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"sub":"user_1","iss":"i","iat":1,"nbf":1,"exp":2,
			"azp":"https://app.example.com",
			"org_id":"org_1","org_slug":"acme","org_role":"member","org_permissions":[],
			"plan":"pro"
		}`, string(payload))
	})

	t.Run("it survives a decode and encode", func(t *testing.T) {
		payload := `{"sub":"user_1","iss":"i","iat":1,"nbf":1,"exp":2,"sid":"sess_1",
			"act":{"iss":"a","sub":"user_admin"},"org_id":"org_1","org_slug":"acme","org_role":"admin",
			"org_permissions":["org:read"],"plan":"pro"}`

		var claims SessionClaims
		require.NoError(t, json.Unmarshal([]byte(payload), &claims))

		encoded, err := json.Marshal(&claims)
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(encoded))
	})
}

func TestSessionClaims_Claim(t *testing.T) {
	claims := SessionClaims{
		Other: map[string]json.RawMessage{"seats": json.RawMessage(`5`)},
	}

	t.Run("it decodes an additional claim", func(t *testing.T) {
		var seats int
		require.NoError(t, claims.Claim("seats", &seats))
		assert.Equal(t, 5, seats)
	})

	t.Run("it reports a missing claim", func(t *testing.T) {
		var plan string
		err := claims.Claim("plan", &plan)
		assert.ErrorIs(t, err, ErrClaimNotFound)
	})

	t.Run("it reports a claim of the wrong type", func(t *testing.T) {
		var plan string
		err := claims.Claim("seats", &plan)
		assert.ErrorContains(t, err, `could not decode claim "seats"`)
	})
}

func TestActiveOrganization(t *testing.T) {
	org := &ActiveOrganization{Role: "admin", Permissions: []string{"org:read"}}

	assert.True(t, org.HasRole("admin"))
	assert.False(t, org.HasRole("member"))
	assert.True(t, org.HasPermission("org:read"))
	assert.False(t, org.HasPermission("org:write"))

	var none *ActiveOrganization
	assert.False(t, none.HasRole("admin"))
	assert.False(t, none.HasPermission("org:read"))
}

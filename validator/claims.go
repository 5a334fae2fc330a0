package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrClaimNotFound is returned by SessionClaims.Claim for claims the token
// does not carry.
var ErrClaimNotFound = errors.New("claim not found")

// Registered and session claim names with a dedicated field.
const (
	claimSubject         = "sub"
	claimIssuer          = "iss"
	claimIssuedAt        = "iat"
	claimNotBefore       = "nbf"
	claimExpiresAt       = "exp"
	claimAuthorizedParty = "azp"
	claimSessionID       = "sid"
	claimActor           = "act"
	claimOrgID           = "org_id"
	claimOrgSlug         = "org_slug"
	claimOrgRole         = "org_role"
	claimOrgPermissions  = "org_permissions"
)

var fixedClaims = []string{
	claimSubject, claimIssuer, claimIssuedAt, claimNotBefore, claimExpiresAt,
	claimAuthorizedParty, claimSessionID, claimActor,
}

var orgClaims = []string{claimOrgID, claimOrgSlug, claimOrgRole, claimOrgPermissions}

// SessionClaims are the claims of a validated session token. A new value is
// created for every validated token.
//
// Timestamps are Unix seconds. Top-level claims without a dedicated field
// are kept verbatim in Other, including nested objects.
type SessionClaims struct {
	Subject   string
	Issuer    string
	IssuedAt  int64
	NotBefore int64
	ExpiresAt int64

	// AuthorizedParty is the origin the token was issued for (azp).
	AuthorizedParty *string

	// SessionID identifies the session the token belongs to (sid).
	SessionID *string

	// Actor is set when the session is an impersonation session (act).
	Actor *Actor

	// Organization is the session's active organization. It is set when the
	// token carries an org_id claim.
	Organization *ActiveOrganization

	// Other holds every other top-level claim.
	Other map[string]json.RawMessage
}

// Actor identifies who is impersonating the subject.
type Actor struct {
	Issuer    string  `json:"iss"`
	SessionID *string `json:"sid,omitempty"`
	Subject   string  `json:"sub"`
}

// ActiveOrganization is the organization a session is currently acting in.
// On the wire its fields are flattened into org_* claims.
type ActiveOrganization struct {
	ID          string
	Slug        string
	Role        string
	Permissions []string
}

// HasPermission reports whether the organization membership grants
// permission.
func (o *ActiveOrganization) HasPermission(permission string) bool {
	if o == nil {
		return false
	}
	return slices.Contains(o.Permissions, permission)
}

// HasRole reports whether the organization membership has role.
func (o *ActiveOrganization) HasRole(role string) bool {
	return o != nil && o.Role == role
}

// Claim decodes the additional claim name into dst.
func (c *SessionClaims) Claim(name string, dst any) error {
	raw, ok := c.Other[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrClaimNotFound, name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("could not decode claim %q: %w", name, err)
	}
	return nil
}

type sessionClaimsJSON struct {
	Subject         *string      `json:"sub"`
	Issuer          *string      `json:"iss"`
	IssuedAt        *json.Number `json:"iat"`
	NotBefore       *json.Number `json:"nbf"`
	ExpiresAt       *json.Number `json:"exp"`
	AuthorizedParty *string      `json:"azp"`
	SessionID       *string      `json:"sid"`
	Actor           *Actor       `json:"act"`
	OrgID           *string      `json:"org_id"`
	OrgSlug         string       `json:"org_slug"`
	OrgRole         string       `json:"org_role"`
	OrgPermissions  []string     `json:"org_permissions"`
}

// UnmarshalJSON decodes a token payload. The registered claims sub, iss,
// iat, nbf and exp are required.
func (c *SessionClaims) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	var wire sessionClaimsJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	required := []struct {
		name    string
		present bool
	}{
		{claimSubject, wire.Subject != nil},
		{claimIssuer, wire.Issuer != nil},
		{claimIssuedAt, wire.IssuedAt != nil},
		{claimNotBefore, wire.NotBefore != nil},
		{claimExpiresAt, wire.ExpiresAt != nil},
	}
	for _, claim := range required {
		if !claim.present {
			return fmt.Errorf("missing required claim %q", claim.name)
		}
	}

	claims := SessionClaims{
		Subject:         *wire.Subject,
		Issuer:          *wire.Issuer,
		AuthorizedParty: wire.AuthorizedParty,
		SessionID:       wire.SessionID,
		Actor:           wire.Actor,
	}

	var err error
	if claims.IssuedAt, err = numericDate(claimIssuedAt, *wire.IssuedAt); err != nil {
		return err
	}
	if claims.NotBefore, err = numericDate(claimNotBefore, *wire.NotBefore); err != nil {
		return err
	}
	if claims.ExpiresAt, err = numericDate(claimExpiresAt, *wire.ExpiresAt); err != nil {
		return err
	}

	for _, name := range fixedClaims {
		delete(all, name)
	}

	if wire.OrgID != nil {
		claims.Organization = &ActiveOrganization{
			ID:          *wire.OrgID,
			Slug:        wire.OrgSlug,
			Role:        wire.OrgRole,
			Permissions: dedupe(wire.OrgPermissions),
		}
		for _, name := range orgClaims {
			delete(all, name)
		}
	}

	if len(all) > 0 {
		claims.Other = all
	}

	*c = claims
	return nil
}

// MarshalJSON encodes the claims back into the token payload shape.
func (c SessionClaims) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Other)+12)
	for name, raw := range c.Other {
		out[name] = raw
	}

	out[claimSubject] = c.Subject
	out[claimIssuer] = c.Issuer
	out[claimIssuedAt] = c.IssuedAt
	out[claimNotBefore] = c.NotBefore
	out[claimExpiresAt] = c.ExpiresAt

	if c.AuthorizedParty != nil {
		out[claimAuthorizedParty] = *c.AuthorizedParty
	}
	if c.SessionID != nil {
		out[claimSessionID] = *c.SessionID
	}
	if c.Actor != nil {
		out[claimActor] = c.Actor
	}
	if c.Organization != nil {
		out[claimOrgID] = c.Organization.ID
		out[claimOrgSlug] = c.Organization.Slug
		out[claimOrgRole] = c.Organization.Role
		permissions := c.Organization.Permissions
		if permissions == nil {
			permissions = []string{}
		}
		out[claimOrgPermissions] = permissions
	}

	return json.Marshal(out)
}

// numericDate converts a JSON NumericDate to Unix seconds. Fractional
// seconds are truncated.
func numericDate(name string, n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("claim %q is not a valid numeric date", name)
	}
	return int64(f), nil
}

func dedupe(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

package jwks

import (
	"fmt"
	"time"
)

type refreshMode int

const (
	refreshNever refreshMode = iota + 1
	refreshAlways
	refreshRatelimited
)

// RefreshPolicy decides whether a lookup for a key id that is missing from a
// fresh snapshot may trigger a new fetch.
//
// Use RefreshNever, RefreshAlways or RatelimitedRefresh to build one. The zero
// value is not a valid policy.
type RefreshPolicy struct {
	mode   refreshMode
	minAge time.Duration
}

// RefreshNever never refetches on an unknown key id. New keys are only picked
// up when the snapshot expires.
func RefreshNever() RefreshPolicy {
	return RefreshPolicy{mode: refreshNever}
}

// RefreshAlways refetches once for every lookup of an unknown key id.
func RefreshAlways() RefreshPolicy {
	return RefreshPolicy{mode: refreshAlways}
}

// RatelimitedRefresh refetches on an unknown key id only when the held
// snapshot is at least minAge old. This bounds how many upstream fetches a
// caller can force by presenting tokens with fabricated key ids.
func RatelimitedRefresh(minAge time.Duration) RefreshPolicy {
	return RefreshPolicy{mode: refreshRatelimited, minAge: minAge}
}

// String implements fmt.Stringer.
func (p RefreshPolicy) String() string {
	switch p.mode {
	case refreshNever:
		return "never"
	case refreshAlways:
		return "always"
	case refreshRatelimited:
		return fmt.Sprintf("ratelimited(%s)", p.minAge)
	default:
		return "invalid"
	}
}

func (p RefreshPolicy) validate() error {
	switch p.mode {
	case refreshNever, refreshAlways:
		return nil
	case refreshRatelimited:
		if p.minAge < 0 {
			return fmt.Errorf("ratelimited refresh minimum age cannot be negative")
		}
		return nil
	default:
		return fmt.Errorf("unknown key policy is not set (use RefreshNever, RefreshAlways or RatelimitedRefresh)")
	}
}

// allowsRefresh reports whether a snapshot of the given age may be replaced
// because of an unknown key id.
func (p RefreshPolicy) allowsRefresh(snapshotAge time.Duration) bool {
	switch p.mode {
	case refreshAlways:
		return true
	case refreshRatelimited:
		return snapshotAge >= p.minAge
	default:
		return false
	}
}

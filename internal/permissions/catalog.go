// Package permissions holds the closed catalog of capability keys that team
// roles can be granted, and the names reserved for the protected owner role.
package permissions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aliuyar1234/finhub/internal/apperrors"
)

// Key is a capability a role can grant.
type Key string

const (
	ManageExpenses    Key = "MANAGE_EXPENSES"
	ManageBudget      Key = "MANAGE_BUDGET"
	ManageInvestments Key = "MANAGE_INVESTMENTS"
	// ManageTeam covers invites, memberships and role management.
	ManageTeam Key = "MANAGE_TEAM"
)

var catalog = []Key{ManageExpenses, ManageBudget, ManageInvestments, ManageTeam}

// ErrUnknownPermission is returned when a key is not part of the catalog.
var ErrUnknownPermission = apperrors.Classify(apperrors.ErrValidation, "unknown permission key")

// Catalog returns every known key in a stable order.
func Catalog() []Key {
	out := make([]Key, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether key belongs to the catalog.
func Valid(key Key) bool {
	for _, k := range catalog {
		if k == key {
			return true
		}
	}
	return false
}

// Set is an unordered collection of keys.
type Set map[Key]struct{}

// NewSet builds a set from keys, collapsing duplicates.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// All returns a set holding the whole catalog.
func All() Set {
	return NewSet(catalog...)
}

// ParseSet validates raw keys against the catalog. Unknown keys are an error.
func ParseSet(raw []string) (Set, error) {
	s := make(Set, len(raw))
	for _, r := range raw {
		key := Key(strings.TrimSpace(r))
		if !Valid(key) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, r)
		}
		s[key] = struct{}{}
	}
	return s, nil
}

// Has reports whether key is in the set.
func (s Set) Has(key Key) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the keys sorted alphabetically.
func (s Set) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the sorted keys as plain strings, the form they are stored in.
func (s Set) Strings() []string {
	keys := s.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of keys.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of keys, rejecting keys outside the catalog.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSet(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

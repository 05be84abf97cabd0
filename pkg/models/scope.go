package models

import (
	"fmt"
	"sort"
)

// Scope identifies which slice of provider data a sync call touches.
type Scope string

const (
	ScopeDetails      Scope = "details"
	ScopeBalances     Scope = "balances"
	ScopeTransactions Scope = "transactions"
)

// AllScopes lists every valid scope, in priority order (highest first).
var AllScopes = []Scope{ScopeTransactions, ScopeBalances, ScopeDetails}

// ParseScope validates a user-supplied scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeDetails, ScopeBalances, ScopeTransactions:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown scope: %q", s)
}

// Priority orders scopes by how valuable their data is. Transactions are
// the most requested by users, so when only one call is affordable it
// should be spent there.
func (s Scope) Priority() int {
	switch s {
	case ScopeTransactions:
		return 3
	case ScopeBalances:
		return 2
	case ScopeDetails:
		return 1
	}
	return 0
}

func (s Scope) String() string {
	return string(s)
}

// SortByPriority returns a copy of scopes ordered highest priority first.
func SortByPriority(scopes []Scope) []Scope {
	sorted := make([]Scope, len(scopes))
	copy(sorted, scopes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return sorted
}

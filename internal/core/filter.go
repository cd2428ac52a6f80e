package core

import "sort"

// TypeAll selects both income and expense transactions in a filter.
const TypeAll TransactionType = "all"

// Filter selects a subset of transactions by type and/or date range.
// Zero values mean "no constraint"; date bounds are inclusive and
// compared lexicographically, valid because dates are zero-padded
// YYYY-MM-DD strings.
type Filter struct {
	Type     TransactionType `json:"type"`
	DateFrom string          `json:"dateFrom,omitempty"`
	DateTo   string          `json:"dateTo,omitempty"`
}

// Matches reports whether tx satisfies every constraint of f.
func Matches(tx Transaction, f Filter) bool {
	if f.Type != "" && f.Type != TypeAll && f.Type != tx.Type {
		return false
	}
	if f.DateFrom != "" && tx.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && tx.Date > f.DateTo {
		return false
	}
	return true
}

// Apply filters txs by f and returns the matches sorted descending by
// date, newest first, with insertion time breaking ties. An inverted
// date range yields an empty result, never an error.
func Apply(txs []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if Matches(tx, f) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Package collection filters and orders an owner's items for display.
// Everything here is a pure function of its inputs.
package collection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
)

// SortMode selects the display order.
type SortMode string

const (
	SortManual     SortMode = "manual"
	SortExpiryAsc  SortMode = "expiry_asc"
	SortExpiryDesc SortMode = "expiry_desc"
)

// ParseSortMode maps a query value to a mode. Empty means manual.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.TrimSpace(s)); m {
	case "":
		return SortManual, nil
	case SortManual, SortExpiryAsc, SortExpiryDesc:
		return m, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Filter holds optional predicates. Unset fields match everything; set fields are ANDed.
type Filter struct {
	// Name matches as a case-insensitive substring.
	Name      string
	Category  string
	Unit      string
	WarnLevel domain.WarnLevel
	// ExpiryFrom and ExpiryTo are both inclusive.
	ExpiryFrom  *domain.Date
	ExpiryTo    *domain.Date
	QuantityMin *int
	QuantityMax *int
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return f.Name == "" && f.Category == "" && f.Unit == "" && f.WarnLevel == "" &&
		f.ExpiryFrom == nil && f.ExpiryTo == nil && f.QuantityMin == nil && f.QuantityMax == nil
}

// Query combines a filter and a sort mode.
type Query struct {
	Filter Filter
	Sort   SortMode
}

// Entry is an item with its derived warn level. WarnLevel is empty when the
// expiry date is unknown.
type Entry struct {
	domain.Item
	WarnLevel domain.WarnLevel `json:"warn_level,omitempty"`
}

// Annotate classifies every item. Input order is preserved.
func Annotate(items []domain.Item, today domain.Date, th domain.Thresholds) []Entry {
	out := make([]Entry, len(items))
	for i, it := range items {
		level, _ := it.Classify(today, th)
		out[i] = Entry{Item: it, WarnLevel: level}
	}
	return out
}

// Apply annotates, filters and sorts. The input slice is not modified.
func Apply(items []domain.Item, q Query, today domain.Date, th domain.Thresholds) []Entry {
	entries := Annotate(items, today, th)

	kept := entries[:0]
	for _, e := range entries {
		if q.Filter.Match(e) {
			kept = append(kept, e)
		}
	}

	Sort(kept, q.Sort)
	return kept
}

// Match reports whether the entry satisfies every set predicate.
func (f Filter) Match(e Entry) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(strings.TrimSpace(f.Name))) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Unit != "" && e.Unit != f.Unit {
		return false
	}
	if f.WarnLevel != "" && e.WarnLevel != f.WarnLevel {
		return false
	}
	if f.ExpiryFrom != nil || f.ExpiryTo != nil {
		if e.ExpiryDate == nil {
			return false
		}
		ord := e.ExpiryDate.Ordinal()
		if f.ExpiryFrom != nil && ord < f.ExpiryFrom.Ordinal() {
			return false
		}
		// inclusive: anything before the start of the following day
		if f.ExpiryTo != nil && ord >= f.ExpiryTo.AddDays(1).Ordinal() {
			return false
		}
	}
	if f.QuantityMin != nil && e.Quantity < *f.QuantityMin {
		return false
	}
	if f.QuantityMax != nil && e.Quantity > *f.QuantityMax {
		return false
	}
	return true
}

// Sort orders entries in place. Manual keeps the current order. Entries with
// an unknown expiry go last in both expiry modes. The sort is stable.
func Sort(entries []Entry, mode SortMode) {
	switch mode {
	case SortExpiryAsc:
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if (a.ExpiryDate == nil) != (b.ExpiryDate == nil) {
				return b.ExpiryDate == nil
			}
			if a.ExpiryDate == nil {
				return false
			}
			if ra, rb := a.WarnLevel.Rank(), b.WarnLevel.Rank(); ra != rb {
				return ra < rb
			}
			return a.ExpiryDate.Before(*b.ExpiryDate)
		})
	case SortExpiryDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if (a.ExpiryDate == nil) != (b.ExpiryDate == nil) {
				return b.ExpiryDate == nil
			}
			if a.ExpiryDate == nil {
				return false
			}
			return a.ExpiryDate.After(*b.ExpiryDate)
		})
	}
}

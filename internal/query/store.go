// Package query holds the in-memory link store and the engine that turns
// it plus the current search/filter/sort criteria into a displayable
// grouped view. Everything here is pure computation: no I/O, no side
// effects, deterministic for a given input.
package query

import (
	"sort"
	"strings"

	"LinkBoard-Backend/internal/domain"
)

// Store maps a calendar date (YYYY-MM-DD of the link's creation time) to
// the links created that day. Every link lives in exactly one bucket,
// derived solely from its own timestamp.
type Store map[string][]domain.Link

// BuildStore buckets a flat link list by creation date. Bucket membership
// does not depend on input order, and rebuilding from the flattened store
// reproduces the same buckets.
func BuildStore(links []domain.Link) Store {
	store := make(Store, len(links))
	for _, link := range links {
		key := link.DateKey()
		store[key] = append(store[key], link)
	}
	return store
}

// Dates returns the store's bucket keys, most recent first. This is the
// display iteration order regardless of the active sort mode.
func (s Store) Dates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// Flatten returns all links as a single sequence: buckets in date-desc
// order, each bucket's stored order preserved. This order is the stable
// baseline the engine's sorts tie-break against.
func (s Store) Flatten() []domain.Link {
	flat := make([]domain.Link, 0, s.Len())
	for _, date := range s.Dates() {
		flat = append(flat, s[date]...)
	}
	return flat
}

// Len counts the links across all buckets.
func (s Store) Len() int {
	n := 0
	for _, bucket := range s {
		n += len(bucket)
	}
	return n
}

// Categories returns the distinct effective categories across the whole
// store, sorted case-folded ascending. The filter UI is built from the
// unfiltered store so options never disappear while one is selected.
func (s Store) Categories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, bucket := range s {
		for i := range bucket {
			category := bucket[i].EffectiveCategory()
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			categories = append(categories, category)
		}
	}

	sort.Slice(categories, func(i, j int) bool {
		a, b := strings.ToLower(categories[i]), strings.ToLower(categories[j])
		if a == b {
			return categories[i] < categories[j]
		}
		return a < b
	})
	return categories
}

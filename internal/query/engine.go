package query

import (
	"sort"
	"strings"

	"LinkBoard-Backend/internal/domain"
)

// PrivacyFilter selects links by visibility.
type PrivacyFilter string

const (
	PrivacyAll       PrivacyFilter = "all"
	PrivacyPublic    PrivacyFilter = "public"
	PrivacyPrivate   PrivacyFilter = "private"
	PrivacyFavorites PrivacyFilter = "favorites"
)

// SortMode orders the filtered sequence before regrouping.
type SortMode string

const (
	SortDateDesc     SortMode = "date-desc"
	SortDateAsc      SortMode = "date-asc"
	SortAlphabetical SortMode = "alphabetical"
	SortAccessDesc   SortMode = "access-desc"
	SortCategory     SortMode = "category"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Criteria is the current search/filter/sort selection. It is pure view
// state scoped to a UI session, never persisted.
type Criteria struct {
	Search   string
	Privacy  PrivacyFilter
	Category string
	Sort     SortMode
}

// View is the computed display model: buckets of filtered, ordered links
// keyed by date, with the bucket keys in most-recent-first order.
type View struct {
	Dates  []string
	Groups Store
	Total  int
}

// ComputeView filters, sorts and regroups the store per the criteria.
// It is idempotent and safe to re-run on every criteria or store change.
func ComputeView(store Store, criteria Criteria) View {
	flat := store.Flatten()

	search := strings.ToLower(strings.TrimSpace(criteria.Search))
	filtered := flat[:0:0]
	for _, link := range flat {
		if matches(&link, criteria, search) {
			filtered = append(filtered, link)
		}
	}

	sortLinks(filtered, criteria.Sort)

	groups := make(Store)
	for _, link := range filtered {
		key := link.DateKey()
		groups[key] = append(groups[key], link)
	}

	return View{
		Dates:  groups.Dates(),
		Groups: groups,
		Total:  len(filtered),
	}
}

// matches applies the filters in sequence, short-circuiting on the first
// failure.
func matches(link *domain.Link, criteria Criteria, search string) bool {
	switch criteria.Privacy {
	case PrivacyPublic:
		if link.IsPrivate {
			return false
		}
	case PrivacyPrivate:
		if !link.IsPrivate {
			return false
		}
	case PrivacyFavorites:
		if !link.IsFavorite {
			return false
		}
	}

	if criteria.Category != "" && criteria.Category != CategoryAll {
		if link.EffectiveCategory() != criteria.Category {
			return false
		}
	}

	if search != "" {
		if !strings.Contains(strings.ToLower(link.URL), search) &&
			!strings.Contains(strings.ToLower(deref(link.Description)), search) &&
			!strings.Contains(strings.ToLower(deref(link.Tags)), search) {
			return false
		}
	}

	return true
}

// sortLinks orders links per the sort mode. All sorts are stable: ties
// keep the flattened-input order.
func sortLinks(links []domain.Link, mode SortMode) {
	switch mode {
	case SortDateAsc:
		sort.SliceStable(links, func(i, j int) bool {
			return links[i].CreatedAt.Before(links[j].CreatedAt)
		})
	case SortAlphabetical:
		sort.SliceStable(links, func(i, j int) bool {
			return alphaKey(&links[i]) < alphaKey(&links[j])
		})
	case SortAccessDesc:
		sort.SliceStable(links, func(i, j int) bool {
			return links[i].AccessCount > links[j].AccessCount
		})
	case SortCategory:
		sort.SliceStable(links, func(i, j int) bool {
			return strings.ToLower(links[i].EffectiveCategory()) < strings.ToLower(links[j].EffectiveCategory())
		})
	default: // SortDateDesc
		sort.SliceStable(links, func(i, j int) bool {
			return links[i].CreatedAt.After(links[j].CreatedAt)
		})
	}
}

// alphaKey is the case-folded alphabetical sort key: the description when
// present, the URL otherwise.
func alphaKey(link *domain.Link) string {
	if link.Description != nil && *link.Description != "" {
		return strings.ToLower(*link.Description)
	}
	return strings.ToLower(link.URL)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

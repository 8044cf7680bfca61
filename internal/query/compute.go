package query

import (
	"sort"
	"strings"

	"github.com/cimillas/event-catalog/internal/domain"
)

// View is one computed page of the catalog.
type View struct {
	Items      []domain.Event
	TotalCount int
	PageCount  int
}

// ComputeView filters, sorts and pages the catalog. It is a pure function:
// the input slice is never mutated and identical inputs yield identical
// output, including ordering (ties keep catalog order).
func ComputeView(events []domain.Event, p Params) View {
	filtered := make([]domain.Event, 0, len(events))
	q := strings.ToLower(strings.TrimSpace(p.Query))
	for _, ev := range events {
		if q != "" {
			haystack := strings.ToLower(ev.Title + " " + strings.Join(ev.Artists, " ") + " " + ev.City)
			if !strings.Contains(haystack, q) {
				continue
			}
		}
		if p.Category != "" && ev.Category != p.Category {
			continue
		}
		if p.City != "" && ev.City != p.City {
			continue
		}
		filtered = append(filtered, ev)
	}

	sort.SliceStable(filtered, less(p.Sort, filtered))

	total := len(filtered)
	pageCount := (total + PerPage - 1) / PerPage

	start := (p.Page - 1) * PerPage
	if start < 0 {
		start = 0
	}
	end := start + PerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return View{
		Items:      filtered[start:end],
		TotalCount: total,
		PageCount:  pageCount,
	}
}

func less(key SortKey, events []domain.Event) func(i, j int) bool {
	switch key {
	case SortDateDesc:
		return func(i, j int) bool { return events[j].StartsAt.Before(events[i].StartsAt) }
	case SortPriceAsc:
		return func(i, j int) bool { return events[i].Price < events[j].Price }
	case SortPriceDesc:
		return func(i, j int) bool { return events[j].Price < events[i].Price }
	case SortPopularity:
		return func(i, j int) bool { return events[j].Popularity < events[i].Popularity }
	default:
		return func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) }
	}
}

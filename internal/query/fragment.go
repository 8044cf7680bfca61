package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Navigation fragment grammar:
//
//	#/catalog?query=...&cat=...&city=...&sort=...&page=...&view=...
//	#/event/<id>
//
// Parameters equal to their default are omitted on encode and absent
// parameters decode to their default, so Decode(Encode(p)) == p.

const (
	catalogPrefix = "/catalog"
	eventPrefix   = "/event/"
)

type RouteKind int

const (
	RouteCatalog RouteKind = iota
	RouteEvent
)

// Route is a decoded navigation fragment: either a catalog view with its
// parameters or a single event detail.
type Route struct {
	Kind    RouteKind
	Params  Params
	EventID string
}

// DecodeValues maps a parsed query string onto Params. Absent or invalid
// values fall back to their defaults; invalid pages fall back to page 1.
func DecodeValues(v url.Values) Params {
	p := DefaultParams()
	p.Query = v.Get("query")
	p.Category = v.Get("cat")
	p.City = v.Get("city")
	if s := SortKey(v.Get("sort")); s.Valid() {
		p.Sort = s
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if m := ViewMode(v.Get("view")); m.Valid() {
		p.View = m
	}
	return p
}

// EncodeParams renders the catalog fragment for p, omitting defaults.
func EncodeParams(p Params) string {
	v := url.Values{}
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.Category != "" {
		v.Set("cat", p.Category)
	}
	if p.City != "" {
		v.Set("city", p.City)
	}
	if p.Sort.Valid() && p.Sort != SortDateAsc {
		v.Set("sort", string(p.Sort))
	}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.View.Valid() && p.View != ViewGrid {
		v.Set("view", string(p.View))
	}
	if len(v) == 0 {
		return "#" + catalogPrefix
	}
	return "#" + catalogPrefix + "?" + v.Encode()
}

// EventFragment renders the detail fragment for an event id.
func EventFragment(id string) string {
	return "#" + eventPrefix + url.PathEscape(id)
}

// ParseFragment decodes a navigation fragment into a route. Anything
// unrecognized decodes as the default catalog view.
func ParseFragment(fragment string) Route {
	fragment = strings.TrimPrefix(fragment, "#")

	if raw := strings.TrimPrefix(fragment, eventPrefix); raw != "" && raw != fragment {
		id, err := url.PathUnescape(raw)
		if err != nil {
			id = raw
		}
		return Route{Kind: RouteEvent, EventID: id}
	}

	if strings.HasPrefix(fragment, catalogPrefix) {
		rest := strings.TrimPrefix(fragment, catalogPrefix)
		rest = strings.TrimPrefix(rest, "?")
		v, err := url.ParseQuery(rest)
		if err != nil {
			v = url.Values{}
		}
		return Route{Kind: RouteCatalog, Params: DecodeValues(v)}
	}

	return Route{Kind: RouteCatalog, Params: DefaultParams()}
}

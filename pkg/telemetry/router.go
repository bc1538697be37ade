package telemetry

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/summary"
)

// Kind tags a Route.
type Kind int

const (
	RouteDrop Kind = iota
	RouteSummary
	RouteWidgetValue
	RouteWidgetStatus
	RouteWidgetStatusText
	RouteEntry
)

func (k Kind) String() string {
	switch k {
	case RouteDrop:
		return "drop"
	case RouteSummary:
		return "summary"
	case RouteWidgetValue:
		return "widget-value"
	case RouteWidgetStatus:
		return "widget-status"
	case RouteWidgetStatusText:
		return "widget-status-text"
	case RouteEntry:
		return "entry"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Telemetry key suffixes that address widget attributes.
const (
	SuffixValue      = ".telem.value"
	SuffixStatus     = ".telem.status"
	SuffixStatusText = ".telem.statusStr"
)

// Route is a resolved telemetry key. Only the fields relevant to Kind are
// set: Field for RouteSummary, KeyBase for widget routes. EntryKey is set
// whenever the key is a registered settings entry, including summary keys.
type Route struct {
	Kind     Kind
	Field    summary.Field
	KeyBase  string
	EntryKey string
}

// rule is one step of the resolution order. match returns the route and
// whether the rule applies.
type rule func(r *Router, key string) (Route, bool)

// rules is the priority order; the first matching rule wins.
var rules = []rule{
	matchSummary,
	matchSuffix(SuffixValue, RouteWidgetValue),
	matchSuffix(SuffixStatus, RouteWidgetStatus),
	matchSuffix(SuffixStatusText, RouteWidgetStatusText),
	matchEntry,
}

// Router resolves keys against the summary keys and the set of registered
// entries. It holds no mutable state.
type Router struct {
	summary map[string]summary.Field
	isEntry func(key string) bool
}

// NewRouter creates a router. isEntry reports whether a key is a registered
// settings entry; nil means no entries.
func NewRouter(keys catalog.SummaryKeys, isEntry func(key string) bool) *Router {
	if isEntry == nil {
		isEntry = func(string) bool { return false }
	}
	r := &Router{
		summary: make(map[string]summary.Field, 4),
		isEntry: isEntry,
	}
	for key, f := range map[string]summary.Field{
		keys.Mode:       summary.FieldMode,
		keys.Countdown:  summary.FieldCountdown,
		keys.PlainType:  summary.FieldPlainType,
		keys.SwingState: summary.FieldSwingState,
	} {
		if key != "" {
			r.summary[key] = f
		}
	}
	return r
}

// Resolve parses key into a route.
func (r *Router) Resolve(key string) Route {
	for _, match := range rules {
		if route, ok := match(r, key); ok {
			return route
		}
	}
	return Route{Kind: RouteDrop}
}

func matchSummary(r *Router, key string) (Route, bool) {
	f, ok := r.summary[key]
	if !ok {
		return Route{}, false
	}
	route := Route{Kind: RouteSummary, Field: f}
	if r.isEntry(key) {
		route.EntryKey = key
	}
	return route, true
}

func matchSuffix(suffix string, kind Kind) rule {
	return func(_ *Router, key string) (Route, bool) {
		base, ok := strings.CutSuffix(key, suffix)
		if !ok || base == "" {
			return Route{}, false
		}
		return Route{Kind: kind, KeyBase: base}, true
	}
}

func matchEntry(r *Router, key string) (Route, bool) {
	if !r.isEntry(key) {
		return Route{}, false
	}
	return Route{Kind: RouteEntry, EntryKey: key}, true
}

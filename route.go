package relay

import (
	"fmt"
	"sort"
)

// RouteConfig describes a route before registration. Middleware and
// Conditions hold references: string names resolved through the Router's
// Resolver, or values already implementing Handler/Condition. A non-nil
// Dispatcher makes the route terminal — the match walk stops at the first
// terminal route that matches.
//
// The config is cloned at registration, so mutating it afterwards never
// affects the stored route.
type RouteConfig struct {
	Criteria   string
	Middleware []any
	Dispatcher any
	Conditions []any
}

func (c *RouteConfig) clone() *RouteConfig {
	dup := *c
	dup.Middleware = append([]any(nil), c.Middleware...)
	dup.Conditions = append([]any(nil), c.Conditions...)
	return &dup
}

// Middlewares builds a Middleware slice from handler references. Convenience
// for configs with a single reference or a mix of names and values:
//
//	cfg := &relay.RouteConfig{
//	    Criteria:   "/user/:id",
//	    Middleware: relay.Middlewares("auth", loggingHandler),
//	    Dispatcher: "user.get",
//	}
func Middlewares(refs ...any) []any {
	return refs
}

// MiddlewareMap flattens a map of labelled handler names into an ordered
// reference list, sorted by label.
func MiddlewareMap(named map[string]string) []any {
	labels := make([]string, 0, len(named))
	for label := range named {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	refs := make([]any, 0, len(labels))
	for _, label := range labels {
		refs = append(refs, named[label])
	}
	return refs
}

// route is the stored, normalized form of a registered route. The matcher is
// compiled once at registration and never re-derived; middleware, dispatcher
// and conditions are resolved to capabilities up front so dispatch never
// touches the Resolver.
type route struct {
	id         string
	config     *RouteConfig
	matcher    *pattern
	middleware []Handler
	dispatcher Handler
	conditions []Condition
}

func (rt *route) conditionsPass(event *Event) bool {
	for _, c := range rt.conditions {
		if !c.IsValid(event, rt.config) {
			return false
		}
	}
	return true
}

func (r *Router) normalizeMiddleware(refs []any) ([]Handler, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	handlers := make([]Handler, 0, len(refs))
	for i, ref := range refs {
		h, err := r.resolveHandler(ref)
		if err != nil {
			return nil, fmt.Errorf("middleware[%d]: %w", i, err)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

func (r *Router) normalizeConditions(refs []any) ([]Condition, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	conditions := make([]Condition, 0, len(refs))
	for i, ref := range refs {
		c, err := r.resolveCondition(ref)
		if err != nil {
			return nil, fmt.Errorf("conditions[%d]: %w", i, err)
		}
		conditions = append(conditions, c)
	}
	return conditions, nil
}

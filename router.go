package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Router matches events against a table of registered routes and runs the
// accumulated handler chain.
//
// Usage:
//  1. Create a router with New, passing a Resolver for named references
//  2. Register routes with Set, SetRoutes, or LoadRoutes
//  3. Dispatch events with Dispatch
//
// Every route whose pattern and conditions match contributes its middleware
// and captured parameters; the walk stops at the first matched route that
// carries a dispatcher, which terminates the chain. Route order is insertion
// order and is load-bearing: it is what lets several non-terminal routes act
// as ordered, cross-cutting filters in front of a terminal route.
//
// Router is safe for concurrent Dispatch calls after configuration. Do not
// call Set, SetRoutes, or LoadRoutes after dispatching begins.
type Router struct {
	resolver Resolver
	ids      []string
	routes   map[string]*route
	hooks    hooks
	logger   *slog.Logger
}

// New creates a Router. The resolver turns string handler and condition
// references into capability objects; pass nil when all references are
// supplied as values.
//
// Example:
//
//	r := relay.New(locator.Resolve,
//	    relay.WithOnSuccess(func(ctx context.Context, trace []string, d time.Duration) {
//	        metrics.Timing("relay.success", d)
//	    }),
//	)
func New(resolver Resolver, opts ...Option) *Router {
	r := &Router{
		resolver: resolver,
		routes:   make(map[string]*route),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RouteOption configures one registration call.
type RouteOption func(*routeOptions)

type routeOptions struct {
	separators string
}

// WithSeparators overrides the separator character set ("/" by default) used
// to compile the route's pattern. Wildcards and :name captures never cross a
// separator, so the set controls their reach:
//
//	r.Set("topics", &relay.RouteConfig{Criteria: "news.:topic"}, relay.WithSeparators("."))
func WithSeparators(separators string) RouteOption {
	return func(o *routeOptions) {
		o.separators = separators
	}
}

// Set registers a route under id, or deletes it when cfg is nil.
//
// Deletion is idempotent: removing an absent id is not an error. A
// registration that fails leaves the table unchanged. The config is cloned
// and its pattern compiled exactly once, here; string references are
// resolved and validated here as well, so Dispatch never consults the
// Resolver.
func (r *Router) Set(id string, cfg *RouteConfig, opts ...RouteOption) error {
	if cfg == nil {
		r.delete(id)
		return nil
	}
	if cfg.Criteria == "" {
		return fmt.Errorf("%w: route %q has no criteria", ErrInvalidRoute, id)
	}
	if _, exists := r.routes[id]; exists {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidRoute, id)
	}

	o := routeOptions{separators: defaultSeparators}
	for _, opt := range opts {
		opt(&o)
	}

	matcher, err := compilePattern(cfg.Criteria, o.separators)
	if err != nil {
		return fmt.Errorf("%w: route %q: %v", ErrInvalidRoute, id, err)
	}

	middleware, err := r.normalizeMiddleware(cfg.Middleware)
	if err != nil {
		return fmt.Errorf("route %q: %w", id, err)
	}

	conditions, err := r.normalizeConditions(cfg.Conditions)
	if err != nil {
		return fmt.Errorf("route %q: %w", id, err)
	}

	var dispatcher Handler
	if cfg.Dispatcher != nil {
		dispatcher, err = r.resolveHandler(cfg.Dispatcher)
		if err != nil {
			return fmt.Errorf("route %q: dispatcher: %w", id, err)
		}
	}

	r.routes[id] = &route{
		id:         id,
		config:     cfg.clone(),
		matcher:    matcher,
		middleware: middleware,
		dispatcher: dispatcher,
		conditions: conditions,
	}
	r.ids = append(r.ids, id)
	return nil
}

// SetRoutes registers every entry in routes, applying ids in sorted order so
// the resulting table order is deterministic. When match precedence between
// the new routes matters, register them with Set directly or use LoadRoutes,
// which preserves document order.
func (r *Router) SetRoutes(routes map[string]*RouteConfig, opts ...RouteOption) error {
	if routes == nil {
		return fmt.Errorf("%w: nil routes map", ErrInvalidRoutes)
	}
	ids := make([]string, 0, len(routes))
	for id := range routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := r.Set(id, routes[id], opts...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) delete(id string) {
	if _, ok := r.routes[id]; !ok {
		return
	}
	delete(r.routes, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
}

// Dispatch matches event.Criteria against the route table in insertion
// order, accumulates middleware and captured parameters from every matching
// route, and runs the resulting handler chain.
//
// The dispatch flow:
//  1. Normalize meta (nil is fine; id, scratch map, and abortion controller
//     are created on demand)
//  2. Walk the table: pattern match, then conditions; matched routes merge
//     captures into event.Params, append their id to meta.Route.Trace, and
//     contribute middleware
//  3. Stop at the first matched route with a dispatcher; none found fails
//     with ErrNoDispatcher
//  4. Run middleware plus dispatcher as one chain with re-entrant Next
//     semantics, abort checks between handlers, and per-handler OnError
//     recovery
//
// Dispatch returns the normalized Meta so callers can read the trace and any
// handler-set values. Failures come back as a *DispatchError wrapping the
// cause. An abort is not a failure: the dispatch resolves with the chain
// state left at ChainAborted and the reason logged.
func (r *Router) Dispatch(ctx context.Context, event *Event, meta *Meta) (*Meta, error) {
	meta, err := normalizeMeta(meta)
	if err != nil {
		return nil, &DispatchError{Err: err}
	}
	defer func() { meta.chain = nil }()

	var handlers []Handler
	var dispatcher Handler
	for _, id := range r.ids {
		rt := r.routes[id]
		params, ok := rt.matcher.match(event.Criteria)
		if !ok || !rt.conditionsPass(event) {
			continue
		}
		for name, value := range params {
			event.setParam(name, value)
		}
		meta.Route.Trace = append(meta.Route.Trace, id)
		handlers = append(handlers, rt.middleware...)
		ctx = r.callOnMatch(ctx, id, event)
		if rt.dispatcher != nil {
			dispatcher = rt.dispatcher
			break
		}
	}

	if dispatcher == nil {
		return r.handleNoDispatcher(ctx, event, meta)
	}

	handlers = append(handlers, dispatcher)
	meta.chain = newChain(handlers, event, meta)

	r.callOnDispatch(ctx, meta.Route.Trace)

	start := time.Now()
	err = meta.chain.run(ctx)
	duration := time.Since(start)

	if err != nil {
		r.callOnFailure(ctx, meta.Route.Trace, err, duration)
		return nil, &DispatchError{Trace: meta.Route.Trace, Err: err}
	}

	if meta.chain.State() == ChainAborted {
		reason := meta.Abortion.Reason()
		r.logger.InfoContext(ctx, "dispatch aborted",
			"id", meta.ID,
			"reason", reason,
			"trace", meta.Route.Trace,
			"handlers_run", meta.chain.Pos(),
		)
		r.callOnAbort(ctx, meta.Route.Trace, reason)
		return meta, nil
	}

	r.callOnSuccess(ctx, meta.Route.Trace, duration)
	return meta, nil
}

// handleNoDispatcher handles a walk that found no terminal route. Without
// OnNoRoute hooks this is a failure carrying the ids of any non-terminal
// matches; configured hooks may downgrade it to a skip by returning nil.
func (r *Router) handleNoDispatcher(ctx context.Context, event *Event, meta *Meta) (*Meta, error) {
	for _, fn := range r.hooks.onNoRoute {
		if err := fn(ctx, event.Criteria); err != nil {
			return nil, &DispatchError{Trace: meta.Route.Trace, Err: err}
		}
	}
	if len(r.hooks.onNoRoute) > 0 {
		return meta, nil
	}
	if len(meta.Route.Trace) == 0 {
		return nil, &DispatchError{Err: fmt.Errorf("%w: nothing matched %q", ErrNoDispatcher, event.Criteria)}
	}
	return nil, &DispatchError{
		Trace: meta.Route.Trace,
		Err:   fmt.Errorf("%w: no terminal route for %q", ErrNoDispatcher, event.Criteria),
	}
}

// Package relay provides an in-process event router with accumulating
// matches and onion-style handler chains.
//
// Relay matches an event's criteria string against a table of registered
// routes. Unlike first-match routers, every matching route contributes:
// captured parameters are merged into the event and middleware is collected
// in match order until the first matched route that carries a terminal
// dispatcher. The accumulated middleware plus the dispatcher then run as one
// chain with re-entrant "next" semantics, cooperative abort, and per-handler
// error recovery.
//
// # Quick Start
//
// Define handlers:
//
//	type GetUserHandler struct {
//	    store UserStore
//	}
//
//	func (h *GetUserHandler) Dispatch(ctx context.Context, event *relay.Event, meta *relay.Meta) error {
//	    user, err := h.store.Get(ctx, event.Params["id"])
//	    if err != nil {
//	        return err
//	    }
//	    meta.Values["user"] = user
//	    return nil
//	}
//
// Create a router, register routes, and dispatch events:
//
//	r := relay.New(nil)
//
//	r.Set("audit", &relay.RouteConfig{
//	    Criteria:   "/*/*",
//	    Middleware: relay.Middlewares(auditMiddleware),
//	})
//	r.Set("user-get", &relay.RouteConfig{
//	    Criteria:   "/user/:id",
//	    Dispatcher: &GetUserHandler{store},
//	})
//
//	event := &relay.Event{Criteria: "/user/42"}
//	meta, err := r.Dispatch(ctx, event, nil)
//
// After dispatch, event.Params holds {"id": "42"}, meta.Route.Trace holds
// ["audit", "user-get"], and both the audit middleware and the handler ran,
// in that order.
//
// # Criteria Patterns
//
// Patterns are split on a separator set ("/" by default, override per
// registration with WithSeparators):
//
//	r.Set("exact", &relay.RouteConfig{Criteria: "/users/list", ...})   // literal
//	r.Set("param", &relay.RouteConfig{Criteria: "/users/:id", ...})    // named capture
//	r.Set("wild", &relay.RouteConfig{Criteria: "/files/*", ...})       // wildcard segment
//
// A :name segment captures one-or-more non-separator characters into
// event.Params. A * matches one-or-more non-separator characters without
// capturing. Neither crosses a separator: "/a/*" does not match "/a/b/c".
// Patterns are compiled once, at registration.
//
// # Match Accumulation
//
// Routes are walked in insertion order, and that order is a contract:
// several non-terminal routes can each contribute one middleware to a shared
// pipeline before a terminal route supplies the dispatcher. The walk stops
// at the first matched route with a dispatcher. If no terminal route
// matches, Dispatch fails with ErrNoDispatcher (override with WithOnNoRoute).
//
// Routes may also carry conditions — predicates that must all pass for the
// route to count as matched:
//
//	r.Set("admin", &relay.RouteConfig{
//	    Criteria:   "/admin/:section",
//	    Dispatcher: adminHandler,
//	    Conditions: []any{relay.FieldEquals("role", "admin")},
//	})
//
// Built-in conditions (HasFields, FieldEquals, And, Or) query the event's
// JSON payload with gjson paths. Any value implementing Condition works.
//
// # The Handler Chain
//
// Handlers execute sequentially with an onion layering. Each handler may
// call meta.Chain().Next(ctx) to run the downstream handlers inside its own
// turn:
//
//	func (h *TimingMiddleware) Dispatch(ctx context.Context, event *relay.Event, meta *relay.Meta) error {
//	    start := time.Now()
//	    if err := meta.Chain().Next(ctx); err != nil {
//	        return err
//	    }
//	    h.record(event.Criteria, time.Since(start)) // runs after all downstream handlers
//	    return nil
//	}
//
// Code before the Next call runs before all downstream handlers; code after
// it runs once they have completed, in reverse entry order. Calling Next is
// optional — a handler that simply returns lets the walk advance on its own.
// The chain cursor is shared, so a second Next call within one handler turn
// is an idempotent no-op.
//
// # Abort
//
// Cancellation is cooperative. Any handler (or an external goroutine) can
// set the flag:
//
//	meta.Abortion.Abort("rate limited")
//
// The chain stops before the next handler would run; a handler already
// running is not interrupted. An abort is not an error — Dispatch resolves
// normally with meta.Chain() left in state ChainAborted and the reason
// logged. There is no built-in deadline: race Dispatch against a timer and
// call Abort yourself.
//
// # Error Recovery
//
// A handler failure is routed through the handler's own OnError when it
// implements ErrorHandler:
//
//	func (h *FlakyHandler) OnError(ctx context.Context, err error, event *relay.Event, meta *relay.Meta) error {
//	    h.log.Warn("recovered", "error", err)
//	    return nil // chain continues
//	}
//
// Without OnError (or when OnError returns an error) the failure aborts the
// remaining chain and Dispatch returns a *DispatchError wrapping the cause
// and carrying the match trace. Handler panics travel the same path as a
// *PanicError.
//
// # Named References and the Resolver
//
// Middleware, dispatcher, and condition references may be strings. They
// resolve through the Resolver passed to New — a single function, so any
// service locator plugs in:
//
//	r := relay.New(relay.MapResolver(map[string]any{
//	    "auth":     &authMiddleware{},
//	    "user.get": &getUserHandler{},
//	}))
//
// Resolution happens at registration and fails fast with ErrUnresolvable
// when a name cannot be resolved or the resolved object lacks the required
// method.
//
// # Route Files
//
// LoadRoutes registers a YAML route table, preserving document order:
//
//	routes:
//	  - id: audit
//	    criteria: "/*/*"
//	    middleware: [audit]
//	  - id: user-get
//	    criteria: /user/:id
//	    dispatcher: user.get
//
// # Hooks
//
// Hooks provide observability without coupling to a specific logging or
// metrics system:
//
//	r := relay.New(resolver,
//	    relay.WithOnMatch(func(ctx context.Context, id string, event *relay.Event) context.Context {
//	        return logx.WithCtx(ctx, slog.String("route", id))
//	    }),
//	    relay.WithOnSuccess(func(ctx context.Context, trace []string, d time.Duration) {
//	        metrics.Timing("relay.success", d)
//	    }),
//	)
//
// Available hooks: WithOnMatch, WithOnDispatch, WithOnSuccess,
// WithOnFailure, WithOnAbort, WithOnNoRoute. Multiple hooks of the same type
// are called in order.
//
// # Thread Safety
//
// Router is safe for concurrent Dispatch calls after configuration: each
// dispatch allocates its own Meta and chain state, and the route table is
// only read. Do not call Set, SetRoutes, or LoadRoutes concurrently with
// in-flight dispatches.
package relay

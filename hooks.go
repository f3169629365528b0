package relay

import (
	"context"
	"log/slog"
	"time"
)

// OnMatchFunc is called once per matched route, in match order, before the
// chain runs. Use this to enrich the context with logging fields or trace
// spans. The returned context is used for the rest of the dispatch.
type OnMatchFunc func(ctx context.Context, id string, event *Event) context.Context

// OnDispatchFunc is called just before the handler chain executes.
type OnDispatchFunc func(ctx context.Context, trace []string)

// OnSuccessFunc is called after the chain completes without failure or abort.
type OnSuccessFunc func(ctx context.Context, trace []string, duration time.Duration)

// OnFailureFunc is called after the chain fails.
type OnFailureFunc func(ctx context.Context, trace []string, err error, duration time.Duration)

// OnAbortFunc is called when the abort flag stopped the chain. Aborts are
// not failures; Dispatch still resolves.
type OnAbortFunc func(ctx context.Context, trace []string, reason string)

// OnNoRouteFunc is called when no matched route carried a dispatcher.
// Return nil to skip the event, return an error to fail.
type OnNoRouteFunc func(ctx context.Context, criteria string) error

// hooks holds all configured hook functions.
type hooks struct {
	onMatch    []OnMatchFunc
	onDispatch []OnDispatchFunc
	onSuccess  []OnSuccessFunc
	onFailure  []OnFailureFunc
	onAbort    []OnAbortFunc
	onNoRoute  []OnNoRouteFunc
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for dispatch lifecycle messages, such as
// an observed abort. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithOnMatch adds a hook called for each matched route, in match order.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	relay.WithOnMatch(func(ctx context.Context, id string, event *relay.Event) context.Context {
//	    return logx.WithCtx(ctx, slog.String("route", id))
//	})
func WithOnMatch(fn OnMatchFunc) Option {
	return func(r *Router) {
		r.hooks.onMatch = append(r.hooks.onMatch, fn)
	}
}

// WithOnDispatch adds a hook called just before the chain executes.
// Multiple hooks are called in order.
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(r *Router) {
		r.hooks.onDispatch = append(r.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after the chain completes.
// Multiple hooks are called in order.
//
// Example:
//
//	relay.WithOnSuccess(func(ctx context.Context, trace []string, d time.Duration) {
//	    metrics.Timing("relay.success", d)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(r *Router) {
		r.hooks.onSuccess = append(r.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after the chain fails.
// Multiple hooks are called in order.
//
// Example:
//
//	relay.WithOnFailure(func(ctx context.Context, trace []string, err error, d time.Duration) {
//	    logger.Error("dispatch failed", "trace", trace, "error", err)
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(r *Router) {
		r.hooks.onFailure = append(r.hooks.onFailure, fn)
	}
}

// WithOnAbort adds a hook called when the abort flag stopped the chain.
// Multiple hooks are called in order.
func WithOnAbort(fn OnAbortFunc) Option {
	return func(r *Router) {
		r.hooks.onAbort = append(r.hooks.onAbort, fn)
	}
}

// WithOnNoRoute adds a hook called when no terminal route matched.
// Return nil to skip, return an error to fail.
// Multiple hooks are called in order; first error wins.
//
// Example:
//
//	relay.WithOnNoRoute(func(ctx context.Context, criteria string) error {
//	    logger.Warn("unrouted event", "criteria", criteria)
//	    return nil // skip instead of failing
//	})
func WithOnNoRoute(fn OnNoRouteFunc) Option {
	return func(r *Router) {
		r.hooks.onNoRoute = append(r.hooks.onNoRoute, fn)
	}
}

// callOnMatch calls OnMatch hooks in order, chaining the context.
func (r *Router) callOnMatch(ctx context.Context, id string, event *Event) context.Context {
	for _, fn := range r.hooks.onMatch {
		ctx = fn(ctx, id, event)
	}
	return ctx
}

func (r *Router) callOnDispatch(ctx context.Context, trace []string) {
	for _, fn := range r.hooks.onDispatch {
		fn(ctx, trace)
	}
}

func (r *Router) callOnSuccess(ctx context.Context, trace []string, duration time.Duration) {
	for _, fn := range r.hooks.onSuccess {
		fn(ctx, trace, duration)
	}
}

func (r *Router) callOnFailure(ctx context.Context, trace []string, err error, duration time.Duration) {
	for _, fn := range r.hooks.onFailure {
		fn(ctx, trace, err, duration)
	}
}

func (r *Router) callOnAbort(ctx context.Context, trace []string, reason string) {
	for _, fn := range r.hooks.onAbort {
		fn(ctx, trace, reason)
	}
}

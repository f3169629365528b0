package relay

import (
	"context"
	"encoding/json"
	"fmt"
)

// validatable is the interface for payload validation.
// Compatible with github.com/go-ozzo/ozzo-validation/v4.
type validatable interface {
	Validate() error
}

// Handler processes one event within a dispatch chain.
//
// Handlers run in sequence: accumulated middleware first, the terminal
// dispatcher last. A handler may call meta.Chain().Next(ctx) to run the
// downstream handlers inside its own turn — code before the call runs before
// all downstream handlers, code after it runs once they have completed.
// Handlers that never call Next still let the walk advance automatically
// when they return.
type Handler interface {
	Dispatch(ctx context.Context, event *Event, meta *Meta) error
}

// HandlerFunc is a function adapter for Handler. Use for simple handlers
// that don't need a struct:
//
//	relay.HandlerFunc(func(ctx context.Context, event *relay.Event, meta *relay.Meta) error {
//	    return nil
//	})
type HandlerFunc func(ctx context.Context, event *Event, meta *Meta) error

// Dispatch implements the Handler interface.
func (f HandlerFunc) Dispatch(ctx context.Context, event *Event, meta *Meta) error {
	return f(ctx, event, meta)
}

// ErrorHandler is an optional interface handlers can implement for local
// recovery. When Dispatch fails and the handler implements ErrorHandler,
// OnError is called with the failure; returning nil recovers the step and
// the chain continues, returning an error fails the chain.
type ErrorHandler interface {
	OnError(ctx context.Context, err error, event *Event, meta *Meta) error
}

// Resolver turns a string handler or condition reference into a capability
// object. It is supplied at construction and called once per string
// reference at registration time, never during dispatch.
type Resolver func(name string) (any, error)

// MapResolver returns a Resolver backed by a static map. Use when the full
// set of named handlers and conditions is known up front:
//
//	r := relay.New(relay.MapResolver(map[string]any{
//	    "auth":     &authMiddleware{},
//	    "user.get": &getUserHandler{},
//	}))
func MapResolver(entries map[string]any) Resolver {
	return func(name string) (any, error) {
		v, ok := entries[name]
		if !ok {
			return nil, fmt.Errorf("no entry for %q", name)
		}
		return v, nil
	}
}

// Typed wraps a payload-typed function as a Handler. The event payload is
// unmarshaled into T and validated if T implements Validate() error, then fn
// is called with the typed value.
//
// Example:
//
//	relay.Typed(func(ctx context.Context, p UserPayload, event *relay.Event, meta *relay.Meta) error {
//	    return store.Save(ctx, p.UserID)
//	})
func Typed[T any](fn func(ctx context.Context, payload T, event *Event, meta *Meta) error) Handler {
	return HandlerFunc(func(ctx context.Context, event *Event, meta *Meta) error {
		var data T
		if len(event.Payload) > 0 {
			if err := json.Unmarshal(event.Payload, &data); err != nil {
				return fmt.Errorf("unmarshal payload: %w", err)
			}
		}

		if v, ok := any(data).(validatable); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("validate payload: %w", err)
			}
		} else if v, ok := any(&data).(validatable); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("validate payload: %w", err)
			}
		}

		return fn(ctx, data, event, meta)
	})
}

// resolveHandler normalizes a handler reference into a Handler. Strings go
// through the Resolver; anything else must already implement Handler.
func (r *Router) resolveHandler(ref any) (Handler, error) {
	switch v := ref.(type) {
	case Handler:
		return v, nil
	case func(ctx context.Context, event *Event, meta *Meta) error:
		return HandlerFunc(v), nil
	case string:
		obj, err := r.resolveName(v)
		if err != nil {
			return nil, err
		}
		h, ok := obj.(Handler)
		if !ok {
			return nil, fmt.Errorf("%w: %q resolved to %T, which has no Dispatch method", ErrUnresolvable, v, obj)
		}
		return h, nil
	default:
		return nil, fmt.Errorf("%w: reference must be a string or Handler, got %T", ErrInvalidMiddleware, ref)
	}
}

// resolveCondition normalizes a condition reference into a Condition.
func (r *Router) resolveCondition(ref any) (Condition, error) {
	switch v := ref.(type) {
	case Condition:
		return v, nil
	case func(event *Event, cfg *RouteConfig) bool:
		return ConditionFunc(v), nil
	case string:
		obj, err := r.resolveName(v)
		if err != nil {
			return nil, err
		}
		c, ok := obj.(Condition)
		if !ok {
			return nil, fmt.Errorf("%w: %q resolved to %T, which has no IsValid method", ErrUnresolvable, v, obj)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: reference must be a string or Condition, got %T", ErrInvalidCondition, ref)
	}
}

func (r *Router) resolveName(name string) (any, error) {
	if r.resolver == nil {
		return nil, fmt.Errorf("%w: no resolver configured for %q", ErrUnresolvable, name)
	}
	obj, err := r.resolver(name)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %v", ErrUnresolvable, name, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: resolve %q: nil object", ErrUnresolvable, name)
	}
	return obj, nil
}

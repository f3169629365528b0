package relay

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registration and dispatch failures. Match with errors.Is.
var (
	// ErrInvalidRoute is returned when a route config is malformed: missing
	// criteria, an id registered twice, or a pattern that fails to compile.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidRoutes is returned when a bulk registration input is unusable.
	ErrInvalidRoutes = errors.New("invalid routes")

	// ErrInvalidMiddleware is returned when a handler reference is neither a
	// string name nor a Handler value.
	ErrInvalidMiddleware = errors.New("invalid middleware")

	// ErrInvalidCondition is returned when a condition reference is neither a
	// string name nor a Condition value.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrUnresolvable is returned when the Resolver fails for a name, or the
	// resolved object does not satisfy the required capability contract.
	ErrUnresolvable = errors.New("unresolvable reference")

	// ErrNoDispatcher is returned when the route walk finishes without any
	// matched route carrying a terminal dispatcher.
	ErrNoDispatcher = errors.New("no dispatcher")

	// ErrInvalidAbortion is returned when a caller-supplied abortion
	// controller is a nil implementation.
	ErrInvalidAbortion = errors.New("invalid abortion controller")

	// ErrInvalidPattern is returned when criteria cannot be compiled into a
	// matcher. Well-formed criteria never trigger it; treat it as a
	// registration bug.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// DispatchError wraps any failure raised while matching an event or running
// its handler chain. Trace lists the ids of the routes that had matched
// before the failure, in match order.
type DispatchError struct {
	Trace []string
	Err   error
}

func (e *DispatchError) Error() string {
	if len(e.Trace) == 0 {
		return fmt.Sprintf("dispatch failed: %v", e.Err)
	}
	return fmt.Sprintf("dispatch failed after [%s]: %v", strings.Join(e.Trace, " "), e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

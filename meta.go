package relay

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Aborter is the cooperative cancellation contract carried by a Meta.
// Setting the flag prevents further handler invocations in an in-flight
// chain; a handler already running is not interrupted, and the dispatch
// still resolves normally.
type Aborter interface {
	// Abort sets the cancellation flag with a reason. Only the first call
	// records its reason.
	Abort(reason string)

	// Aborted reports whether the flag is set.
	Aborted() bool

	// Reason returns the reason passed to the first Abort call.
	Reason() string
}

// Abortion is the default Aborter. Safe for concurrent use, so an external
// timer goroutine may trigger it while a dispatch is running.
type Abortion struct {
	mu      sync.Mutex
	aborted bool
	reason  string
}

// NewAbortion creates an unset abortion controller.
func NewAbortion() *Abortion {
	return &Abortion{}
}

// Abort implements the Aborter interface.
func (a *Abortion) Abort(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.aborted {
		return
	}
	a.aborted = true
	a.reason = reason
}

// Aborted implements the Aborter interface.
func (a *Abortion) Aborted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aborted
}

// Reason implements the Aborter interface.
func (a *Abortion) Reason() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reason
}

// RouteInfo records how a dispatch matched.
type RouteInfo struct {
	// Trace lists matched route ids in match order.
	Trace []string
}

// Meta is the per-dispatch context. It is created (or normalized) at the
// start of one Dispatch call and discarded when the call returns; never
// reuse a Meta across dispatches.
//
// Handlers may read and write Values freely. The chain state is deliberately
// unexported so handler code can advance the chain through Chain() but never
// replace it.
type Meta struct {
	// ID correlates hook and log output for one dispatch. Assigned during
	// normalization when empty.
	ID string

	// Route is the merged view of every matched route.
	Route RouteInfo

	// Abortion is the cancellation controller, created lazily when nil.
	Abortion Aborter

	// Values is scratch space for handlers to pass data down (and back up)
	// the chain.
	Values map[string]any

	chain *Chain
}

// Chain returns the executor state for the in-flight dispatch, or nil
// outside one.
func (m *Meta) Chain() *Chain {
	return m.chain
}

// normalizeMeta guarantees a usable Meta: allocates one when nil, assigns a
// dispatch id, creates the Values map and the abortion controller when
// absent. A caller-supplied Abortion holding a typed nil pointer would only
// blow up mid-chain, so it is rejected here instead.
func normalizeMeta(meta *Meta) (*Meta, error) {
	if meta == nil {
		meta = &Meta{}
	}
	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	if meta.Values == nil {
		meta.Values = make(map[string]any)
	}
	if meta.Abortion == nil {
		meta.Abortion = NewAbortion()
	} else if v := reflect.ValueOf(meta.Abortion); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, fmt.Errorf("%w: nil %T", ErrInvalidAbortion, meta.Abortion)
	}
	return meta, nil
}

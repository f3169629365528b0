package relay

import (
	"context"
	"fmt"
	"runtime/debug"
)

// ChainState reports where a chain executor is in its lifecycle.
type ChainState int

const (
	ChainIdle ChainState = iota
	ChainRunning
	ChainCompleted
	ChainAborted
	ChainFailed
)

func (s ChainState) String() string {
	switch s {
	case ChainIdle:
		return "idle"
	case ChainRunning:
		return "running"
	case ChainCompleted:
		return "completed"
	case ChainAborted:
		return "aborted"
	case ChainFailed:
		return "failed"
	default:
		return fmt.Sprintf("ChainState(%d)", int(s))
	}
}

// PanicError wraps a panic raised by a handler so it can travel the normal
// error path, including the handler's own OnError.
type PanicError struct {
	Value      any
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Chain executes the handler sequence accumulated for one dispatch:
// middleware from every matched route, in match order, then the terminal
// dispatcher. It lives on the dispatch Meta for exactly one Dispatch call.
type Chain struct {
	handlers []Handler
	event    *Event
	meta     *Meta
	pos      int
	state    ChainState
}

func newChain(handlers []Handler, event *Event, meta *Meta) *Chain {
	return &Chain{handlers: handlers, event: event, meta: meta}
}

// State returns the executor state. Useful after Dispatch resolves to tell a
// completed chain from an aborted one.
func (c *Chain) State() ChainState {
	return c.state
}

// Len returns the number of handlers in the finalized sequence.
func (c *Chain) Len() int {
	return len(c.handlers)
}

// Pos returns the cursor: how many handlers have been pulled so far.
func (c *Chain) Pos() int {
	return c.pos
}

// Next advances the chain: it pulls handlers from the cursor onward and
// invokes each in turn, stopping when the sequence is exhausted, the abort
// flag is observed, or a handler fails without recovering.
//
// Next is re-entrant. A handler may call meta.Chain().Next(ctx) itself to
// run the downstream handlers inside its own turn — before its own logic
// (post-call code then runs after the whole downstream finished, in reverse
// entry order, like a call stack unwinding) or after it. The cursor is
// shared, so when the handler returns, the natural walk finds the sequence
// consumed; calling Next a second time within one handler turn is an
// idempotent no-op.
//
// An observed abort is not an error: Next returns nil and the remaining
// handlers simply never run.
func (c *Chain) Next(ctx context.Context) error {
	for {
		if c.pos >= len(c.handlers) {
			if c.state == ChainRunning {
				c.state = ChainCompleted
			}
			return nil
		}
		if c.meta.Abortion.Aborted() {
			c.state = ChainAborted
			return nil
		}

		h := c.handlers[c.pos]
		c.pos++

		if err := c.invoke(ctx, h); err != nil {
			c.state = ChainFailed
			return err
		}
	}
}

// invoke runs one handler, routing failures through the handler's own
// OnError when it has one. A nil OnError result recovers the step.
func (c *Chain) invoke(ctx context.Context, h Handler) error {
	err := c.dispatch(ctx, h)
	if err == nil {
		return nil
	}
	if eh, ok := h.(ErrorHandler); ok {
		return eh.OnError(ctx, err, c.event, c.meta)
	}
	return err
}

func (c *Chain) dispatch(ctx context.Context, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, StackTrace: string(debug.Stack())}
		}
	}()
	return h.Dispatch(ctx, c.event, c.meta)
}

func (c *Chain) run(ctx context.Context) error {
	c.state = ChainRunning
	return c.Next(ctx)
}

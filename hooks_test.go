package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type contextKey string

type HooksSuite struct {
	suite.Suite
}

func TestHooksSuite(t *testing.T) {
	suite.Run(t, new(HooksSuite))
}

func (s *HooksSuite) router(log *[]string, opts ...Option) *Router {
	r := New(nil, opts...)
	s.Require().NoError(r.Set("mw", &RouteConfig{
		Criteria:   "/*",
		Middleware: []any{&recordingHandler{name: "mw", log: log}},
	}))
	s.Require().NoError(r.Set("run", &RouteConfig{
		Criteria:   "/run",
		Dispatcher: &recordingHandler{name: "disp", log: log},
	}))
	return r
}

func (s *HooksSuite) TestOnMatchCalledPerRouteInOrder() {
	var log []string
	var matched []string

	r := s.router(&log, WithOnMatch(func(ctx context.Context, id string, event *Event) context.Context {
		matched = append(matched, id)
		return ctx
	}))

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/run"}, nil)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"mw", "run"}, matched)
}

func (s *HooksSuite) TestOnMatchChainsContext() {
	var log []string
	var seen any

	r := s.router(&log,
		WithOnMatch(func(ctx context.Context, id string, event *Event) context.Context {
			return context.WithValue(ctx, contextKey("tag"), "set")
		}),
		WithOnDispatch(func(ctx context.Context, trace []string) {
			seen = ctx.Value(contextKey("tag"))
		}),
	)

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/run"}, nil)
	s.Require().NoError(err)
	s.Assert().Equal("set", seen)
}

func (s *HooksSuite) TestOnDispatchSeesFullTrace() {
	var log []string
	var trace []string

	r := s.router(&log, WithOnDispatch(func(ctx context.Context, t []string) {
		trace = append([]string(nil), t...)
	}))

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/run"}, nil)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"mw", "run"}, trace)
	// The hook fires before any handler.
	s.Assert().Equal([]string{"mw", "disp"}, log)
}

func (s *HooksSuite) TestOnSuccessCalledWithDuration() {
	var log []string
	var called bool

	r := s.router(&log, WithOnSuccess(func(ctx context.Context, trace []string, d time.Duration) {
		called = true
		s.Assert().GreaterOrEqual(d, time.Duration(0))
	}))

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/run"}, nil)
	s.Require().NoError(err)
	s.Assert().True(called)
}

func (s *HooksSuite) TestOnFailureCalledWithCause() {
	var log []string
	boom := errors.New("boom")
	var got error

	r := New(nil, WithOnFailure(func(ctx context.Context, trace []string, err error, d time.Duration) {
		got = err
	}))
	s.Require().NoError(r.Set("run", &RouteConfig{
		Criteria:   "/run",
		Dispatcher: &recordingHandler{name: "disp", log: &log, err: boom},
	}))

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/run"}, nil)
	s.Require().Error(err)
	s.Assert().ErrorIs(got, boom)
}

func (s *HooksSuite) TestOnAbortCalledWithReason() {
	var reason string

	r := New(nil, WithOnAbort(func(ctx context.Context, trace []string, why string) {
		reason = why
	}))
	s.Require().NoError(r.Set("run", &RouteConfig{
		Criteria: "/run",
		Dispatcher: HandlerFunc(func(ctx context.Context, event *Event, meta *Meta) error {
			meta.Abortion.Abort("enough")
			return nil
		}),
	}))

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/run"}, nil)
	s.Require().NoError(err)
	s.Assert().Equal("enough", reason)
}

func (s *HooksSuite) TestOnNoRouteSkips() {
	var called bool

	r := New(nil, WithOnNoRoute(func(ctx context.Context, criteria string) error {
		called = true
		return nil
	}))

	meta, err := r.Dispatch(context.Background(), &Event{Criteria: "/nope"}, nil)
	s.Require().NoError(err)
	s.Assert().NotNil(meta)
	s.Assert().True(called)
}

func (s *HooksSuite) TestOnNoRouteFirstErrorWins() {
	first := errors.New("first")

	r := New(nil,
		WithOnNoRoute(func(ctx context.Context, criteria string) error {
			return first
		}),
		WithOnNoRoute(func(ctx context.Context, criteria string) error {
			s.Fail("second hook should not run")
			return nil
		}),
	)

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/nope"}, nil)
	s.Assert().ErrorIs(err, first)
}

func (s *HooksSuite) TestHooksOfSameTypeRunInOrder() {
	var log []string
	var order []string

	r := s.router(&log,
		WithOnDispatch(func(ctx context.Context, trace []string) {
			order = append(order, "first")
		}),
		WithOnDispatch(func(ctx context.Context, trace []string) {
			order = append(order, "second")
		}),
	)

	_, err := r.Dispatch(context.Background(), &Event{Criteria: "/run"}, nil)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"first", "second"}, order)
}

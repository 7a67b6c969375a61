// ABOUTME: One-shot handle for the external analyzer client, probed once from ordered factories.
// ABOUTME: Moves Uninitialized -> Ready or Unavailable exactly once and is read lock-free afterwards.

package diagnose

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// HandleState is the lifecycle state of a Handle.
type HandleState int32

const (
	HandleUninitialized HandleState = iota
	HandleReady
	HandleUnavailable
)

func (s HandleState) String() string {
	switch s {
	case HandleUninitialized:
		return "uninitialized"
	case HandleReady:
		return "ready"
	case HandleUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("HandleState(%d)", int32(s))
	}
}

// Factory constructs an analyzer client. The returned value is adapted with
// Adapt, so it may expose any of the supported call shapes.
type Factory func(ctx context.Context) (any, error)

// Handle holds the analyzer client for the life of the process.
type Handle struct {
	once     sync.Once
	state    atomic.Int32
	analyzer atomic.Pointer[Analyzer]
	logger   *log.Logger
}

// NewHandle creates an uninitialized Handle. logger may be nil.
func NewHandle(logger *log.Logger) *Handle {
	return &Handle{logger: logger}
}

// ReadyHandle returns a Handle already initialized with client, for callers
// that construct their client eagerly.
func ReadyHandle(client any) *Handle {
	h := &Handle{}
	h.Init(context.Background(), func(context.Context) (any, error) { return client, nil })
	return h
}

// State returns the current state.
func (h *Handle) State() HandleState {
	if h == nil {
		return HandleUnavailable
	}
	return HandleState(h.state.Load())
}

// Analyzer returns the adapted client, or nil when the handle is not ready or
// the client exposes no supported call shape.
func (h *Handle) Analyzer() Analyzer {
	if h.State() != HandleReady {
		return nil
	}
	if p := h.analyzer.Load(); p != nil {
		return *p
	}
	return nil
}

// Init probes factories in order and keeps the first client that is built
// without error or panic. Only the first call has any effect; later calls
// return the settled state.
func (h *Handle) Init(ctx context.Context, factories ...Factory) HandleState {
	h.once.Do(func() {
		for i, f := range factories {
			client, err := h.try(ctx, f)
			if err != nil {
				h.logf("component=diagnose.handle action=probe factory=%d status=error err=%v", i, err)
				continue
			}
			if client == nil {
				h.logf("component=diagnose.handle action=probe factory=%d status=empty", i)
				continue
			}
			if a := Adapt(client); a != nil {
				h.analyzer.Store(&a)
			} else {
				h.logf("component=diagnose.handle action=probe factory=%d status=no_call_shape type=%T", i, client)
			}
			h.state.Store(int32(HandleReady))
			h.logf("component=diagnose.handle action=probe factory=%d status=ready", i)
			return
		}
		h.state.Store(int32(HandleUnavailable))
		h.logf("component=diagnose.handle action=probe status=unavailable factories=%d", len(factories))
	})
	return h.State()
}

// InitAsync runs Init on a new goroutine. The returned channel closes once
// the handle has settled. Failures analyzed before then see an uninitialized
// handle and skip escalation.
func (h *Handle) InitAsync(ctx context.Context, factories ...Factory) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Init(ctx, factories...)
	}()
	return done
}

func (h *Handle) try(ctx context.Context, f Factory) (client any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()
	if f == nil {
		return nil, fmt.Errorf("nil factory")
	}
	return f(ctx)
}

func (h *Handle) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}

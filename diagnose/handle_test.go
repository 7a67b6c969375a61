// ABOUTME: Tests for the one-shot analyzer handle.
// ABOUTME: Covers factory fallback order, panics, the no-shape case, and single initialization.

package diagnose

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
)

func failingFactory(context.Context) (any, error)   { return nil, errors.New("import failed") }
func panickingFactory(context.Context) (any, error) { panic("constructor exploded") }
func emptyFactory(context.Context) (any, error)     { return nil, nil }

func clientFactory(client any) Factory {
	return func(context.Context) (any, error) { return client, nil }
}

func TestHandleStartsUninitialized(t *testing.T) {
	h := NewHandle(nil)
	if h.State() != HandleUninitialized {
		t.Errorf("State = %s", h.State())
	}
	if h.Analyzer() != nil {
		t.Error("uninitialized handle must not expose an analyzer")
	}
}

func TestHandleFallsBackThroughFactories(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandle(log.New(&buf, "", 0))

	state := h.Init(context.Background(), failingFactory, panickingFactory, emptyFactory, clientFactory(requestOnly{}))
	if state != HandleReady {
		t.Fatalf("State = %s, want ready", state)
	}
	got, err := h.Analyzer().Analyze(context.Background(), "p")
	if err != nil || got != "request:p" {
		t.Errorf("Analyze = %q, %v", got, err)
	}

	logs := buf.String()
	for _, want := range []string{"factory=0 status=error", "factory=1 status=error", "factory=2 status=empty", "factory=3 status=ready"} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
}

func TestHandleUnavailableWhenAllFactoriesFail(t *testing.T) {
	h := NewHandle(nil)
	if state := h.Init(context.Background(), failingFactory, panickingFactory, nil); state != HandleUnavailable {
		t.Fatalf("State = %s, want unavailable", state)
	}
	if h.Analyzer() != nil {
		t.Error("unavailable handle must not expose an analyzer")
	}
}

func TestHandleNoFactories(t *testing.T) {
	h := NewHandle(nil)
	if state := h.Init(context.Background()); state != HandleUnavailable {
		t.Errorf("State = %s, want unavailable", state)
	}
}

func TestHandleReadyWithoutCallShape(t *testing.T) {
	h := NewHandle(nil)
	if state := h.Init(context.Background(), clientFactory(struct{}{})); state != HandleReady {
		t.Fatalf("State = %s, want ready", state)
	}
	if h.Analyzer() != nil {
		t.Error("client without a call shape must yield a nil analyzer")
	}
}

func TestHandleInitOnlyOnce(t *testing.T) {
	h := NewHandle(nil)
	h.Init(context.Background(), failingFactory)

	calls := 0
	state := h.Init(context.Background(), func(context.Context) (any, error) {
		calls++
		return analyzeOnly{}, nil
	})
	if state != HandleUnavailable {
		t.Errorf("State = %s, want unavailable to stick", state)
	}
	if calls != 0 {
		t.Errorf("second Init ran %d factories", calls)
	}
}

func TestHandleConcurrentInit(t *testing.T) {
	h := NewHandle(nil)
	var built int
	var mu sync.Mutex
	factory := func(context.Context) (any, error) {
		mu.Lock()
		built++
		mu.Unlock()
		return analyzeOnly{}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Init(context.Background(), factory)
			_ = h.Analyzer()
		}()
	}
	wg.Wait()

	if built != 1 {
		t.Errorf("factory ran %d times, want 1", built)
	}
	if h.State() != HandleReady {
		t.Errorf("State = %s", h.State())
	}
}

func TestHandleInitAsync(t *testing.T) {
	release := make(chan struct{})
	h := NewHandle(nil)
	done := h.InitAsync(context.Background(), func(context.Context) (any, error) {
		<-release
		return analyzeOnly{}, nil
	})

	if h.State() != HandleUninitialized {
		t.Errorf("State before init settles = %s", h.State())
	}
	close(release)
	<-done
	if h.State() != HandleReady {
		t.Errorf("State after init = %s", h.State())
	}
}

func TestReadyHandle(t *testing.T) {
	if ReadyHandle(analyzeOnly{}).State() != HandleReady {
		t.Error("ReadyHandle with a client should be ready")
	}
	if ReadyHandle(nil).State() != HandleUnavailable {
		t.Error("ReadyHandle(nil) should be unavailable")
	}
}

func TestNilHandle(t *testing.T) {
	var h *Handle
	if h.State() != HandleUnavailable || h.Analyzer() != nil {
		t.Error("nil handle should behave as unavailable")
	}
}

func TestHandleStateString(t *testing.T) {
	if HandleReady.String() != "ready" || HandleState(9).String() != "HandleState(9)" {
		t.Error("unexpected HandleState strings")
	}
}

// ABOUTME: Escalation dispatcher that races one analyzer call against a fixed deadline.
// ABOUTME: Prints the analysis only if it arrives in time; every failure mode is silent to the user.

package diagnose

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jancsp3/GHCPCLI-Shekhar/llm"
)

// DefaultEscalationTimeout bounds how long Dispatch waits for the analyzer.
const DefaultEscalationTimeout = 2000 * time.Millisecond

// Dispatcher forwards failures to the external analyzer.
type Dispatcher struct {
	handle  *Handle
	out     io.Writer
	timeout time.Duration
	getenv  func(string) string
	logger  *log.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout sets the escalation deadline. Non-positive values are ignored.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithGetenv replaces the environment lookup used for the credential gate.
func WithGetenv(getenv func(string) string) DispatcherOption {
	return func(dp *Dispatcher) {
		if getenv != nil {
			dp.getenv = getenv
		}
	}
}

// WithDispatchLogger records why an escalation produced no output.
func WithDispatchLogger(logger *log.Logger) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.logger = logger
	}
}

// NewDispatcher creates a Dispatcher that writes analyses to out.
func NewDispatcher(handle *Handle, out io.Writer, opts ...DispatcherOption) *Dispatcher {
	dp := &Dispatcher{
		handle:  handle,
		out:     out,
		timeout: DefaultEscalationTimeout,
		getenv:  os.Getenv,
	}
	for _, opt := range opts {
		opt(dp)
	}
	if dp.out == nil {
		dp.out = io.Discard
	}
	return dp
}

// Timeout returns the escalation deadline.
func (dp *Dispatcher) Timeout() time.Duration { return dp.timeout }

type analysisResult struct {
	text string
	err  error
}

// Dispatch escalates one failure. It returns immediately when no GitHub token
// is set or no analyzer is ready, and otherwise within the timeout. The call
// itself is detached: when the deadline wins it keeps running and its result
// is dropped.
func (dp *Dispatcher) Dispatch(ctx context.Context, c Context, cats []Category, loc *LocatorInfo) {
	if _, source := llm.LookupToken(dp.getenv); source == "" {
		return
	}

	prompt := BuildPrompt(c, cats, loc)

	analyzer := dp.handle.Analyzer()
	if analyzer == nil {
		dp.logf("component=diagnose.dispatch action=skip id=%s reason=handle_%s", c.ID, dp.handle.State())
		return
	}

	results := make(chan analysisResult, 1)
	callCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- analysisResult{err: fmt.Errorf("analyzer panicked: %v", r)}
			}
		}()
		text, err := analyzer.Analyze(callCtx, prompt)
		results <- analysisResult{text: text, err: err}
	}()

	timer := time.NewTimer(dp.timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			dp.logf("component=diagnose.dispatch action=analyze id=%s status=error transient=%t err=%v", c.ID, llm.IsTransient(res.err), res.err)
			return
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			dp.logf("component=diagnose.dispatch action=analyze id=%s status=empty", c.ID)
			return
		}
		dp.print(text)
	case <-timer.C:
		dp.logf("component=diagnose.dispatch action=analyze id=%s status=timeout after=%s", c.ID, dp.timeout)
	case <-ctx.Done():
		dp.logf("component=diagnose.dispatch action=analyze id=%s status=canceled err=%v", c.ID, ctx.Err())
	}
}

func (dp *Dispatcher) print(text string) {
	var b strings.Builder
	b.WriteString("\n" + Banner + "\n")
	b.WriteString(HeadingDetailed + "\n")
	b.WriteString(Banner + "\n")
	b.WriteString(text + "\n")
	b.WriteString(Banner + "\n")
	_, _ = io.WriteString(dp.out, b.String())
}

func (dp *Dispatcher) logf(format string, args ...any) {
	if dp.logger != nil {
		dp.logger.Printf(format, args...)
	}
}

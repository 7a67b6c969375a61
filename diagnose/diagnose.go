// ABOUTME: Entry point that runs the failure pipeline: collect, categorize, summarize, escalate.
// ABOUTME: AnalyzeError never panics or returns an error; the caller keeps ownership of the failure.

package diagnose

import (
	"context"
	"io"
	"log"
	"os"
	"time"
)

// Diagnoser wires the collector, renderer, and dispatcher together.
type Diagnoser struct {
	collector  *Collector
	dispatcher *Dispatcher
	out        io.Writer
	logger     *log.Logger
}

// Options configures a Diagnoser. The zero value writes to stdout, uses an
// unavailable analyzer handle, and logs nothing.
type Options struct {
	Page    Page
	Handle  *Handle
	Out     io.Writer
	Logger  *log.Logger
	Timeout time.Duration
	Getenv  func(string) string
	// Now replaces the clock, for tests.
	Now func() time.Time
}

// New creates a Diagnoser from opts.
func New(opts Options) *Diagnoser {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	handle := opts.Handle
	if handle == nil {
		handle = NewHandle(opts.Logger)
		handle.Init(context.Background())
	}

	collector := NewCollector(opts.Page)
	if opts.Now != nil {
		collector.now = opts.Now
	}

	return &Diagnoser{
		collector: collector,
		dispatcher: NewDispatcher(handle, out,
			WithTimeout(opts.Timeout),
			WithGetenv(opts.Getenv),
			WithDispatchLogger(opts.Logger),
		),
		out:    out,
		logger: opts.Logger,
	}
}

// Diagnosis is what AnalyzeError derived from a failure.
type Diagnosis struct {
	Context    Context
	Categories []Category
	Summary    string
}

// AnalyzeError prints the quick summary for err and then escalates it. It
// recovers from any internal panic.
func (d *Diagnoser) AnalyzeError(ctx context.Context, err error, ov *Override) {
	d.Diagnose(ctx, err, ov)
}

// Diagnose is AnalyzeError that also returns what it derived. The result is
// zero when the pipeline panicked.
func (d *Diagnoser) Diagnose(ctx context.Context, err error, ov *Override) (diag Diagnosis) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("component=diagnose action=analyze status=panic err=%v", r)
			d.logf("component=diagnose action=analyze status=panic err=%v", r)
			diag = Diagnosis{}
		}
	}()

	dc := d.collector.Collect(err, ov)
	cats := Categorize(dc.ErrorMessage)
	dc.Locator = ExtractLocator(dc.ErrorMessage)

	summary := RenderSummary(dc.ErrorMessage, cats, dc.Locator)
	_, _ = io.WriteString(d.out, summary)
	d.logf("component=diagnose action=summarize id=%s categories=%q locator=%t", dc.ID, JoinCategories(cats), dc.Locator != nil)

	d.dispatcher.Dispatch(ctx, dc, cats, dc.Locator)

	return Diagnosis{Context: dc, Categories: cats, Summary: summary}
}

// Report analyzes err and returns it unchanged so test code can write
// `return d.Report(ctx, err, nil)` or `t.Fatal(d.Report(ctx, err, nil))`.
func (d *Diagnoser) Report(ctx context.Context, err error, ov *Override) error {
	d.AnalyzeError(ctx, err, ov)
	return err
}

func (d *Diagnoser) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

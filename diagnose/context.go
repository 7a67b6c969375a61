// ABOUTME: Context collector that snapshots ambient facts about a test failure into one record.
// ABOUTME: Merges page URL, timestamp, platform, and stack with optional caller-supplied overrides.

package diagnose

import (
	"crypto/rand"
	"errors"
	"log"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/oklog/ulid/v2"
)

// StackUnavailable is recorded when the error carries no stack trace.
const StackUnavailable = "Stack trace not available"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Context is the diagnostic snapshot of a single failure. It is built once by
// Collector.Collect and passed by value afterwards.
type Context struct {
	ID            ulid.ULID    `json:"id"`
	ErrorMessage  string       `json:"error_message"`
	ErrorStack    string       `json:"error_stack"`
	PageURL       string       `json:"page_url"`
	Timestamp     string       `json:"timestamp"`
	Platform      string       `json:"platform"`
	PageContent   string       `json:"page_content,omitempty"`
	NetworkErrors []string     `json:"network_errors,omitempty"`
	Locator       *LocatorInfo `json:"locator,omitempty"`
}

// Override carries caller-supplied context. Non-zero fields replace what the
// collector would otherwise gather.
type Override struct {
	PageURL       string   `yaml:"page_url"`
	ErrorStack    string   `yaml:"error_stack"`
	Timestamp     string   `yaml:"timestamp"`
	Platform      string   `yaml:"platform"`
	PageContent   string   `yaml:"page_content"`
	NetworkErrors []string `yaml:"network_errors"`
}

// Page is the slice of a browser page handle the collector needs.
type Page interface {
	URL() string
}

// StaticPage is a Page with a fixed URL.
type StaticPage string

// URL returns the fixed URL.
func (p StaticPage) URL() string { return string(p) }

// Collector gathers ambient failure context.
type Collector struct {
	page Page
	now  func() time.Time
}

// NewCollector creates a Collector reading the current URL from page. A nil
// page leaves PageURL empty unless an override supplies it.
func NewCollector(page Page) *Collector {
	return &Collector{page: page, now: time.Now}
}

// Collect builds the Context for err. ov may be nil.
func (c *Collector) Collect(err error, ov *Override) Context {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	ts := now()

	dc := Context{
		ID:           newID(ts),
		ErrorMessage: errorMessage(err),
		ErrorStack:   errorStack(err),
		Timestamp:    ts.UTC().Format(TimestampLayout),
		Platform:     runtime.GOOS,
	}
	if c.page != nil {
		dc.PageURL = pageURL(c.page)
	}

	if ov != nil {
		if ov.PageURL != "" {
			dc.PageURL = ov.PageURL
		}
		if ov.ErrorStack != "" {
			dc.ErrorStack = ov.ErrorStack
		}
		if ov.Timestamp != "" {
			dc.Timestamp = ov.Timestamp
		}
		if ov.Platform != "" {
			dc.Platform = ov.Platform
		}
		if ov.PageContent != "" {
			dc.PageContent = ov.PageContent
		}
		if len(ov.NetworkErrors) > 0 {
			dc.NetworkErrors = append([]string(nil), ov.NetworkErrors...)
		}
	}
	return dc
}

// newID stamps the ID with ts, or with the wall clock when ts is outside the
// range a ULID can encode.
func newID(ts time.Time) ulid.ULID {
	id, err := ulid.New(ulid.Timestamp(ts), rand.Reader)
	if err != nil {
		log.Printf("component=diagnose action=collect status=bad_clock ts=%s err=%v", ts.Format(time.RFC3339), err)
		return ulid.Make()
	}
	return id
}

// pageURL reads the page URL. A panicking accessor is reported and yields "".
func pageURL(p Page) (url string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("component=diagnose action=collect status=page_error err=%v", r)
			url = ""
		}
	}()
	return p.URL()
}

func errorMessage(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

// stackTracer is implemented by errors that carry their own stack trace.
type stackTracer interface {
	Stack() string
}

func errorStack(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		if s := st.Stack(); s != "" {
			return s
		}
	}
	return StackUnavailable
}

// stackError attaches the goroutine stack captured at wrap time.
type stackError struct {
	err   error
	stack string
}

func (e *stackError) Error() string { return e.err.Error() }
func (e *stackError) Unwrap() error { return e.err }
func (e *stackError) Stack() string { return e.stack }

// WithStack wraps err with the current goroutine's stack so the collector can
// report where the failure was observed. Returns nil for a nil error.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &stackError{err: err, stack: string(debug.Stack())}
}

// ABOUTME: Terminal styling for the failure report: colored banners, title, and section headings.
// ABOUTME: Wraps the output writer and restyles whole lines when color is enabled.
package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jancsp3/GHCPCLI-Shekhar/config"
	"github.com/jancsp3/GHCPCLI-Shekhar/diagnose"
)

// headings are the summary section headings. They are styled only inside the
// summary block so analysis text starting with the same words is left alone.
var headings = []string{
	diagnose.HeadingCategories,
	diagnose.HeadingError,
	diagnose.HeadingRootCause,
	diagnose.HeadingWhy,
	diagnose.HeadingRecommendedFix,
	diagnose.HeadingPrevention,
}

// styles holds the lipgloss styles bound to one output renderer.
type styles struct {
	banner  lipgloss.Style
	title   lipgloss.Style
	heading lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		banner:  r.NewStyle().Foreground(lipgloss.Color("62")),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
	}
}

// colorEnabled resolves a color mode against the destination.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// styledWriter restyles report lines. Writes may split a line; the partial
// tail is held until its newline arrives or Flush is called.
type styledWriter struct {
	mu      sync.Mutex
	out     io.Writer
	styles  styles
	pending string

	// inSummary is set by the title line and cleared by the summary's
	// closing banner. banners counts banner lines seen since the title.
	inSummary  bool
	banners    int
	prevBanner bool
}

// newOutputWriter returns out unchanged when color is off.
func newOutputWriter(mode string, out io.Writer) io.Writer {
	if !colorEnabled(mode, out) {
		return out
	}
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI256)
	return &styledWriter{out: out, styles: newStyles(r)}
}

func (w *styledWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := w.pending + string(p)
	lines := strings.SplitAfter(data, "\n")
	w.pending = lines[len(lines)-1]

	var b strings.Builder
	for _, line := range lines[:len(lines)-1] {
		b.WriteString(w.styleLine(strings.TrimSuffix(line, "\n")))
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush writes any held partial line.
func (w *styledWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == "" {
		return nil
	}
	_, err := io.WriteString(w.out, w.styleLine(w.pending))
	w.pending = ""
	return err
}

func (w *styledWriter) styleLine(line string) string {
	afterBanner := w.prevBanner
	w.prevBanner = line == diagnose.Banner

	switch {
	case line == diagnose.Banner:
		if w.inSummary {
			// The first banner after the title underlines it; the second closes the block.
			w.banners++
			w.inSummary = w.banners < 2
		}
		return w.styles.banner.Render(line)
	case line == diagnose.SummaryTitle && afterBanner:
		w.inSummary = true
		w.banners = 0
		return w.styles.title.Render(line)
	case line == diagnose.HeadingDetailed && afterBanner && !w.inSummary:
		return w.styles.heading.Render(line)
	}
	if !w.inSummary {
		return line
	}
	for _, h := range headings {
		if line == h {
			return w.styles.heading.Render(h)
		}
	}
	if rest, ok := strings.CutPrefix(line, diagnose.HeadingCategories+" "); ok {
		return w.styles.heading.Render(diagnose.HeadingCategories) + " " + rest
	}
	return line
}

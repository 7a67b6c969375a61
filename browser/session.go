// ABOUTME: Headless Chrome session that opens one URL and exposes its tracked Page and DOM content.
// ABOUTME: Used by the CLI to capture live page context for a failure report.

package browser

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/chromedp"
)

// Session is one headless browser with a single tab.
type Session struct {
	Page *Page

	ctx           context.Context
	cancelTab     context.CancelFunc
	cancelBrowser context.CancelFunc
}

// SessionOption configures Open.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	execPath string
	logger   *log.Logger
}

// WithExecPath selects the Chrome binary instead of searching PATH.
func WithExecPath(path string) SessionOption {
	return func(c *sessionConfig) { c.execPath = path }
}

// WithLogger routes chromedp's own log output to logger.
func WithLogger(logger *log.Logger) SessionOption {
	return func(c *sessionConfig) { c.logger = logger }
}

// Open starts headless Chrome, navigates to rawURL, and tracks the tab's
// main-frame URL from then on. The browser lives until Close or until ctx ends.
func Open(ctx context.Context, rawURL string, opts ...SessionOption) (*Session, error) {
	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.execPath))
	}
	allocCtx, cancelBrowser := chromedp.NewExecAllocator(ctx, allocOpts...)

	var ctxOpts []chromedp.ContextOption
	if cfg.logger != nil {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(cfg.logger.Printf), chromedp.WithErrorf(cfg.logger.Printf))
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, ctxOpts...)

	s := &Session{ctx: tabCtx, cancelTab: cancelTab, cancelBrowser: cancelBrowser}

	if err := chromedp.Run(tabCtx, chromedp.Navigate(rawURL)); err != nil {
		s.Close()
		return nil, fmt.Errorf("navigating to %s: %w", rawURL, err)
	}
	page, err := Attach(tabCtx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Page = page
	log.Printf("component=browser action=open url=%s", page.URL())
	return s, nil
}

// Content returns the outer HTML of the document element.
func (s *Session) Content() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading page content: %w", err)
	}
	return html, nil
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	if s.cancelTab != nil {
		s.cancelTab()
	}
	if s.cancelBrowser != nil {
		s.cancelBrowser()
	}
}

// ABOUTME: Chrome DevTools page handle that tracks the main frame's current URL from navigation events.
// ABOUTME: Satisfies diagnose.Page so a live browser tab can feed the failure collector.

package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jancsp3/GHCPCLI-Shekhar/diagnose"
)

var _ diagnose.Page = (*Page)(nil)

// Page tracks the URL of a tab's main frame. It is safe for concurrent use;
// event delivery and URL reads may happen on different goroutines.
type Page struct {
	mu      sync.RWMutex
	url     string
	frameID cdp.FrameID
}

// NewPage returns a Page reporting initialURL until the first main-frame
// navigation is observed.
func NewPage(initialURL string) *Page {
	return &Page{url: initialURL}
}

// Attach starts tracking navigations on the tab bound to ctx, which must be a
// chromedp context. The current location is read once to seed the URL.
func Attach(ctx context.Context) (*Page, error) {
	p := NewPage("")
	chromedp.ListenTarget(ctx, p.handleEvent)

	var loc string
	if err := chromedp.Run(ctx, chromedp.Location(&loc)); err != nil {
		return nil, fmt.Errorf("reading tab location: %w", err)
	}
	p.mu.Lock()
	if p.url == "" {
		p.url = loc
	}
	p.mu.Unlock()
	return p, nil
}

// URL returns the last known main-frame URL.
func (p *Page) URL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.url
}

func (p *Page) handleEvent(ev any) {
	switch e := ev.(type) {
	case *page.EventFrameNavigated:
		if e.Frame == nil || e.Frame.ParentID != "" {
			return
		}
		p.mu.Lock()
		p.frameID = e.Frame.ID
		p.url = e.Frame.URL + e.Frame.URLFragment
		p.mu.Unlock()
	case *page.EventNavigatedWithinDocument:
		p.mu.Lock()
		if p.frameID == "" || e.FrameID == p.frameID {
			p.url = e.URL
		}
		p.mu.Unlock()
	}
}

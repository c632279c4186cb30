// Package pagetest provides a scriptable page.Page for tests.
package pagetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
)

// Page is a fake page. Snapshot returns Render's result for the current
// viewport and injected styles, or Doc when Render is nil.
type Page struct {
	Address string
	Doc     *dom.Document
	Render  func(vp page.Viewport, styles []string) (*dom.Document, error)

	// Boxes maps selectors to bounding boxes; Hidden selectors fail WaitVisible.
	Boxes  map[string]*dom.Rect
	Hidden map[string]bool

	ScreenshotErr error
	SnapshotErr   error

	mu        sync.Mutex
	viewport  page.Viewport
	styles    []string
	Shots     []*dom.Rect
	Viewports []page.Viewport
	// ShotViewports holds the viewport active at each screenshot.
	ShotViewports []page.Viewport
	Closed    bool
}

// FromHTML returns a fake page whose Doc is parsed from src.
func FromHTML(src string) *Page {
	doc, err := dom.Parse(strings.NewReader(src), "https://example.org/")
	if err != nil {
		panic(err)
	}
	return &Page{Address: "https://example.org/", Doc: doc}
}

func (p *Page) URL() string { return p.Address }

func (p *Page) Snapshot(ctx context.Context) (*dom.Document, error) {
	if p.SnapshotErr != nil {
		return nil, p.SnapshotErr
	}
	p.mu.Lock()
	vp := p.currentViewport()
	styles := append([]string(nil), p.styles...)
	p.mu.Unlock()
	if p.Render != nil {
		return p.Render(vp, styles)
	}
	if p.Doc == nil {
		return nil, errors.New("pagetest: no document")
	}
	return p.Doc, nil
}

func (p *Page) currentViewport() page.Viewport {
	if p.viewport == (page.Viewport{}) {
		return page.DefaultViewport
	}
	return p.viewport
}

func (p *Page) Viewport() page.Viewport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentViewport()
}

func (p *Page) SetViewport(ctx context.Context, vp page.Viewport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewport = vp
	p.Viewports = append(p.Viewports, vp)
	return nil
}

func (p *Page) InjectStyle(ctx context.Context, css string) (func(context.Context) error, error) {
	p.mu.Lock()
	p.styles = append(p.styles, css)
	p.mu.Unlock()
	return func(context.Context) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.styles {
			if s == css {
				p.styles = append(p.styles[:i], p.styles[i+1:]...)
				break
			}
		}
		return nil
	}, nil
}

// Styles returns the stylesheets currently injected.
func (p *Page) Styles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.styles...)
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if p.Hidden[selector] {
		return fmt.Errorf("%s: not visible after %s", selector, timeout)
	}
	return nil
}

func (p *Page) BoundingBox(ctx context.Context, selector string) (*dom.Rect, error) {
	return p.Boxes[selector], nil
}

func (p *Page) Screenshot(ctx context.Context, clip *dom.Rect) ([]byte, error) {
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Shots = append(p.Shots, clip)
	p.ShotViewports = append(p.ShotViewports, p.currentViewport())
	return []byte("\x89PNG fake"), nil
}

func (p *Page) Close() error {
	p.Closed = true
	return nil
}

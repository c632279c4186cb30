package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
)

//go:embed collect.js
var collectScript string

var (
	_ page.Page   = (*Tab)(nil)
	_ page.Source = (*Pool)(nil)
)

// Tab is a loaded page in one browser tab. Snapshots are cached until the
// viewport or the injected styles change.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	url    string

	mu       sync.Mutex
	viewport page.Viewport
	snap     *dom.Document
	styleSeq int
}

// run executes actions in the tab, aborting when ctx is done.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (t *Tab) navigate(ctx context.Context, address string) (*network.Response, error) {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.RunResponse(runCtx, chromedp.Navigate(address))
}

func (t *Tab) URL() string { return t.url }

func (t *Tab) Snapshot(ctx context.Context) (*dom.Document, error) {
	t.mu.Lock()
	if t.snap != nil {
		doc := t.snap
		t.mu.Unlock()
		return doc, nil
	}
	t.mu.Unlock()

	var raw []byte
	if err := t.run(ctx, chromedp.Evaluate(collectScript, &raw)); err != nil {
		return nil, fmt.Errorf("collect snapshot: %w", err)
	}
	doc, err := dom.FromSnapshot(raw)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.snap = doc
	t.mu.Unlock()
	return doc, nil
}

func (t *Tab) Viewport() page.Viewport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewport
}

func (t *Tab) SetViewport(ctx context.Context, vp page.Viewport) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("invalid viewport %s", vp)
	}
	err := t.run(ctx, emulation.SetDeviceMetricsOverride(int64(vp.Width), int64(vp.Height), scale(vp), false))
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.viewport = vp
	t.snap = nil
	t.mu.Unlock()
	return nil
}

func (t *Tab) InjectStyle(ctx context.Context, css string) (func(context.Context) error, error) {
	t.mu.Lock()
	t.styleSeq++
	id := fmt.Sprintf("bitvcheck-style-%d", t.styleSeq)
	t.mu.Unlock()

	js := fmt.Sprintf(`(() => {
  const s = document.createElement("style");
  s.id = %s;
  s.textContent = %s;
  document.head.appendChild(s);
  return true;
})()`, jsString(id), jsString(css))
	var ok bool
	if err := t.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return nil, err
	}
	t.invalidate()

	remove := func(ctx context.Context) error {
		js := fmt.Sprintf(`(() => { const s = document.getElementById(%s); if (s) s.remove(); return true; })()`, jsString(id))
		var ok bool
		if err := t.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
			return err
		}
		t.invalidate()
		return nil
	}
	return remove, nil
}

func (t *Tab) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return t.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (t *Tab) BoundingBox(ctx context.Context, selector string) (*dom.Rect, error) {
	js := fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return null;
  const r = el.getBoundingClientRect();
  return { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height };
})()`, jsString(selector))
	var rect *dom.Rect
	if err := t.run(ctx, chromedp.Evaluate(js, &rect)); err != nil {
		return nil, err
	}
	if rect == nil || !rect.Valid() {
		return nil, nil
	}
	return rect, nil
}

func (t *Tab) Screenshot(ctx context.Context, clip *dom.Rect) ([]byte, error) {
	var buf []byte
	if clip == nil {
		// Quality 100 selects PNG.
		if err := t.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
			return nil, err
		}
		return buf, nil
	}
	if !clip.Valid() {
		return nil, errors.New("screenshot: empty clip")
	}
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = cdppage.CaptureScreenshot().
			WithFormat(cdppage.CaptureScreenshotFormatPng).
			WithCaptureBeyondViewport(true).
			WithClip(&cdppage.Viewport{X: clip.X, Y: clip.Y, Width: clip.Width, Height: clip.Height, Scale: 1}).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes the tab. The browser keeps running for other tabs.
func (t *Tab) Close() error {
	t.cancel()
	return nil
}

func (t *Tab) invalidate() {
	t.mu.Lock()
	t.snap = nil
	t.mu.Unlock()
}

func scale(vp page.Viewport) float64 {
	if vp.DeviceScaleFactor <= 0 {
		return 1
	}
	return vp.DeviceScaleFactor
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

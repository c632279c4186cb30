// Package browser loads pages in headless Chrome through the DevTools
// protocol.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"bitvcheck/internal/page"
)

type Options struct {
	// ChromePath overrides the browser executable; empty searches the
	// usual install locations.
	ChromePath     string
	AcceptLanguage string
	Viewport       page.Viewport
	// Headful shows the browser window.
	Headful bool
	Logger  *zap.SugaredLogger
}

// Pool shares one browser process between concurrent audits; each Open
// gets its own tab. The browser starts on the first Open.
type Pool struct {
	opts Options

	launch singleflight.Group
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func NewPool(opts Options) *Pool {
	if opts.Viewport.Width == 0 {
		opts.Viewport = page.DefaultViewport
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Pool{opts: opts}
}

// browser returns the browser context, launching Chrome if needed.
// Concurrent callers wait for the same launch.
func (p *Pool) browser() (context.Context, error) {
	v, err, _ := p.launch.Do("browser", func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return nil, fmt.Errorf("browser pool closed")
		}
		if p.ctx != nil {
			return p.ctx, nil
		}

		allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		allocOpts = append(allocOpts,
			chromedp.WindowSize(p.opts.Viewport.Width, p.opts.Viewport.Height),
			chromedp.Flag("headless", !p.opts.Headful),
		)
		if p.opts.ChromePath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(p.opts.ChromePath))
		}
		// The browser outlives any single audit, so it hangs off Background.
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
		log := p.opts.Logger
		browserCtx, browserCancel := chromedp.NewContext(allocCtx,
			chromedp.WithLogf(log.Debugf),
			chromedp.WithErrorf(log.Debugf),
		)
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("start browser: %w", err)
		}
		log.Debugw("browser started", "chrome", p.opts.ChromePath)

		p.ctx = browserCtx
		p.cancel = func() {
			browserCancel()
			allocCancel()
		}
		return browserCtx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(context.Context), nil
}

// Open loads target in a new tab. Local paths are opened as file:// URLs.
// HTTP error statuses fail the load.
func (p *Pool) Open(ctx context.Context, target string) (page.Page, error) {
	browserCtx, err := p.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	// First Run on the tab creates the target; it must not carry the
	// caller's deadline or the tab would close with it.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	t := &Tab{ctx: tabCtx, cancel: cancel, viewport: p.opts.Viewport}
	address := navigationURL(target)
	setup := chromedp.Tasks{
		network.Enable(),
		emulation.SetDeviceMetricsOverride(int64(t.viewport.Width), int64(t.viewport.Height), t.viewport.DeviceScaleFactor, false),
	}
	if p.opts.AcceptLanguage != "" {
		setup = append(setup, network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": p.opts.AcceptLanguage}))
	}
	if err := t.run(ctx, setup); err != nil {
		t.Close()
		return nil, fmt.Errorf("navigate %s: %w", target, err)
	}

	resp, err := t.navigate(ctx, address)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("navigate %s: %w", target, err)
	}
	if resp != nil && resp.Status >= 400 {
		t.Close()
		return nil, fmt.Errorf("navigate %s: unexpected status %d %s", target, resp.Status, http.StatusText(int(resp.Status)))
	}
	t.url = address
	p.opts.Logger.Debugw("page loaded", "url", address)
	return t, nil
}

// Close stops the browser. Open fails afterwards.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.ctx = nil
	}
	return nil
}

func navigationURL(target string) string {
	if path, local := page.LocalPath(target); local {
		return page.FileURL(path)
	}
	return target
}

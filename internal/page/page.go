// Package page defines the live page handle the accessibility rules inspect
// and the sources that load one page per audited target.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitvcheck/internal/dom"
)

// ErrUnsupported is returned by pages that cannot perform an operation,
// such as screenshots of a page that was never rendered.
var ErrUnsupported = errors.New("operation not supported by page")

// Viewport is the emulated window size.
type Viewport struct {
	Width             int
	Height            int
	DeviceScaleFactor float64
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d@%gx", v.Width, v.Height, v.scale())
}

func (v Viewport) scale() float64 {
	if v.DeviceScaleFactor <= 0 {
		return 1
	}
	return v.DeviceScaleFactor
}

// DefaultViewport matches a common desktop resolution.
var DefaultViewport = Viewport{Width: 1920, Height: 1080, DeviceScaleFactor: 1}

// Page is exclusively owned by one audit run for its lifetime.
type Page interface {
	// URL returns the address the page was loaded from.
	URL() string

	// Snapshot returns the current DOM with computed styles and, when the
	// page is rendered, layout boxes.
	Snapshot(ctx context.Context) (*dom.Document, error)

	// Viewport returns the current viewport.
	Viewport() Viewport

	// SetViewport resizes the page.
	SetViewport(ctx context.Context, vp Viewport) error

	// InjectStyle adds a stylesheet and returns a function that removes it.
	InjectStyle(ctx context.Context, css string) (func(context.Context) error, error)

	// WaitVisible waits up to timeout for selector to match a visible element.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// BoundingBox returns the document-relative box of the element matched
	// by selector, or nil when it has no renderable box.
	BoundingBox(ctx context.Context, selector string) (*dom.Rect, error)

	// Screenshot captures a PNG clipped to clip, or the full page when clip
	// is nil.
	Screenshot(ctx context.Context, clip *dom.Rect) ([]byte, error)

	Close() error
}

// Source loads pages.
type Source interface {
	// Open loads target and returns a page ready for inspection. A failure
	// here is fatal for the target.
	Open(ctx context.Context, target string) (Page, error)
	Close() error
}

package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bitvcheck/internal/dom"
)

// Static is a Page over raw HTML that was never rendered. Styles come from
// inline style attributes, there is no layout and no screenshots.
type Static struct {
	url string
	src []byte

	mu       sync.Mutex
	viewport Viewport
	styles   int
	doc      *dom.Document
}

// NewStatic returns a page for the given HTML.
func NewStatic(url string, html []byte) *Static {
	return &Static{url: url, src: html, viewport: DefaultViewport}
}

func (s *Static) URL() string { return s.url }

func (s *Static) Snapshot(ctx context.Context) (*dom.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		doc, err := dom.Parse(bytes.NewReader(s.src), s.url)
		if err != nil {
			return nil, err
		}
		s.doc = doc
	}
	return s.doc, nil
}

func (s *Static) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

func (s *Static) SetViewport(ctx context.Context, vp Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = vp
	return nil
}

// InjectStyle only tracks the number of injected sheets; they have no
// effect on a static snapshot.
func (s *Static) InjectStyle(ctx context.Context, css string) (func(context.Context) error, error) {
	s.mu.Lock()
	s.styles++
	s.mu.Unlock()
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			s.mu.Lock()
			s.styles--
			s.mu.Unlock()
		})
		return nil
	}, nil
}

// InjectedStyles returns the number of stylesheets currently injected.
func (s *Static) InjectedStyles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.styles
}

func (s *Static) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	n := doc.QuerySelector(selector)
	if n == nil || !n.Visible() {
		return fmt.Errorf("%s: not visible", selector)
	}
	return nil
}

func (s *Static) BoundingBox(ctx context.Context, selector string) (*dom.Rect, error) {
	return nil, nil
}

func (s *Static) Screenshot(ctx context.Context, clip *dom.Rect) ([]byte, error) {
	return nil, ErrUnsupported
}

func (s *Static) Close() error { return nil }

// StaticSource opens targets without a browser: http(s) URLs are fetched
// with Client, anything else is read from the local file system.
type StaticSource struct {
	Client *http.Client
}

func (src *StaticSource) Open(ctx context.Context, target string) (Page, error) {
	path, local := LocalPath(target)
	if !local {
		body, err := src.fetch(ctx, target)
		if err != nil {
			return nil, err
		}
		return NewStatic(target, body), nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewStatic(FileURL(path), body), nil
}

// LocalPath returns the file system path of target and true, unless target
// is an http(s) URL.
func LocalPath(target string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil {
		return target, true
	}
	switch u.Scheme {
	case "http", "https":
		return "", false
	case "file":
		return u.Path, true
	}
	return target, true
}

// FileURL returns the absolute file:// URL of path.
func FileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func (src *StaticSource) fetch(ctx context.Context, target string) ([]byte, error) {
	client := src.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", target, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("fetch %s: unexpected content type %q", target, ct)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 20<<20))
}

func (src *StaticSource) Close() error { return nil }

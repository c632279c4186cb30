package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bitvcheck/internal/page"
)

func TestNavigationURL(t *testing.T) {
	abs, err := filepath.Abs("index.html")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		target string
		want   string
	}{
		{"https://example.org/a?b=c", "https://example.org/a?b=c"},
		{"file:///tmp/site/index.html", "file:///tmp/site/index.html"},
		{"index.html", "file://" + filepath.ToSlash(abs)},
	}
	for _, tt := range tests {
		if got := navigationURL(tt.target); got != tt.want {
			t.Errorf("navigationURL(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestJSString(t *testing.T) {
	if got := jsString(`a[href="x"]`); got != `"a[href=\"x\"]"` {
		t.Errorf("jsString = %s", got)
	}
	if got := jsString("</style>"); strings.Contains(got, "</") {
		t.Errorf("jsString did not escape markup: %s", got)
	}
}

func TestCollectScriptEmbedded(t *testing.T) {
	for _, want := range []string{"getComputedStyle", "layout", "labels"} {
		if !strings.Contains(collectScript, want) {
			t.Errorf("collect script missing %q", want)
		}
	}
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(Options{})
	if p.opts.Viewport != page.DefaultViewport {
		t.Errorf("viewport = %v", p.opts.Viewport)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Open(context.Background(), "https://example.org/"); err == nil {
		t.Error("Open after Close: expected error")
	}
}

// findChrome returns a Chrome executable or skips the test.
func findChrome(t *testing.T) string {
	t.Helper()
	if p := os.Getenv("BITVCHECK_CHROME"); p != "" {
		return p
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome executable found; set BITVCHECK_CHROME to run browser tests")
	return ""
}

func TestPool_LoadsPage(t *testing.T) {
	chrome := findChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!doctype html><html lang="de"><head><title>Startseite</title></head>
<body><main><h1 id="top">%s</h1><img src="a.png" style="width:20px;height:20px"><label for="q">Suche</label><input id="q"></main></body></html>`,
			r.Header.Get("Accept-Language"))
	}))
	defer srv.Close()

	pool := NewPool(Options{ChromePath: chrome, AcceptLanguage: "de-DE"})
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p, err := pool.Open(ctx, srv.URL+"/")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	doc, err := p.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if doc.Title != "Startseite" || !doc.Layout.Available {
		t.Errorf("title = %q, layout = %+v", doc.Title, doc.Layout)
	}
	if h1 := doc.ByID("top"); h1 == nil || h1.TrimmedText() != "de-DE" {
		t.Errorf("Accept-Language not sent: %v", h1)
	}
	if in := doc.ByID("q"); in == nil || in.Labels != 1 {
		t.Errorf("input labels = %+v", in)
	}

	box, err := p.BoundingBox(ctx, "img")
	if err != nil || box == nil || box.Width != 20 {
		t.Errorf("BoundingBox = %+v, %v", box, err)
	}
	png, err := p.Screenshot(ctx, box)
	if err != nil || len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("Screenshot: %d bytes, %v", len(png), err)
	}

	narrow := page.Viewport{Width: 320, Height: 640, DeviceScaleFactor: 1}
	if err := p.SetViewport(ctx, narrow); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	doc, err = p.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Layout.ViewportWidth > 320 {
		t.Errorf("viewport width after resize = %v", doc.Layout.ViewportWidth)
	}

	if _, err := pool.Open(ctx, srv.URL+"/missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("missing page err = %v", err)
	}
}

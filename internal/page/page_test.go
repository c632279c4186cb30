package page

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWithViewport_RestoresOnError(t *testing.T) {
	p := NewStatic("https://example.org/", []byte("<html></html>"))
	zoom := Viewport{Width: 640, Height: 400, DeviceScaleFactor: 2}
	boom := errors.New("boom")

	err := WithViewport(context.Background(), p, zoom, func() error {
		if got := p.Viewport(); got != zoom {
			t.Errorf("viewport inside = %v, want %v", got, zoom)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := p.Viewport(); got != DefaultViewport {
		t.Fatalf("viewport after = %v, want %v", got, DefaultViewport)
	}
}

func TestWithStyle_Removes(t *testing.T) {
	p := NewStatic("https://example.org/", []byte("<html></html>"))
	err := WithStyle(context.Background(), p, "* { color: red }", func() error {
		if p.InjectedStyles() != 1 {
			t.Errorf("InjectedStyles inside = %d", p.InjectedStyles())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.InjectedStyles() != 0 {
		t.Fatalf("InjectedStyles after = %d", p.InjectedStyles())
	}
}

func TestStatic_WaitVisibleAndScreenshot(t *testing.T) {
	p := NewStatic("https://example.org/", []byte(`<html><body><p id="a">x</p><p id="b" hidden>y</p></body></html>`))
	ctx := context.Background()
	if err := p.WaitVisible(ctx, "#a", time.Second); err != nil {
		t.Errorf("WaitVisible(#a) = %v", err)
	}
	if err := p.WaitVisible(ctx, "#b", time.Second); err == nil {
		t.Error("WaitVisible(#b) succeeded for hidden element")
	}
	if _, err := p.Screenshot(ctx, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Screenshot err = %v", err)
	}
}

func TestStaticSource_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Served page</title></head></html>`))
	}))
	defer srv.Close()

	src := &StaticSource{Client: srv.Client()}
	p, err := src.Open(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	doc, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Served page" {
		t.Errorf("Title = %q", doc.Title)
	}

	if _, err := src.Open(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestStaticSource_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(`<html lang="de"></html>`), 0o644); err != nil {
		t.Fatal(err)
	}
	src := &StaticSource{}
	p, err := src.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if !strings.HasPrefix(p.URL(), "file://") {
		t.Errorf("URL = %q", p.URL())
	}
	if _, err := src.Open(context.Background(), filepath.Join(dir, "nope.html")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		target    string
		wantPath  string
		wantLocal bool
	}{
		{"https://example.org/", "", false},
		{"http://localhost:8080/a", "", false},
		{"file:///tmp/site/index.html", "/tmp/site/index.html", true},
		{"site/index.html", "site/index.html", true},
		{"/var/www/index.html", "/var/www/index.html", true},
	}
	for _, tt := range tests {
		path, local := LocalPath(tt.target)
		if path != tt.wantPath || local != tt.wantLocal {
			t.Errorf("LocalPath(%q) = %q, %v", tt.target, path, local)
		}
	}
}

func TestFileURL(t *testing.T) {
	if got := FileURL("/tmp/a b.html"); got != "file:///tmp/a%20b.html" {
		t.Errorf("FileURL = %q", got)
	}
}

package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(page, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher([]string{page}, 100*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { calls <- struct{}{} })
	}()

	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(page, []byte("<html><body>v2</body></html>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("no callback after write")
	}
	select {
	case <-calls:
		t.Error("burst of writes produced more than one callback")
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	if err := os.WriteFile(page, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher([]string{page}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	called := make(chan struct{}, 1)
	go func() {
		if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte("a{}"), 0o644); err != nil {
			t.Error(err)
		}
	}()
	if err := w.Run(ctx, func(context.Context) { called <- struct{}{} }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-called:
		t.Error("callback for unrelated file")
	default:
	}
}

func TestNewWatcher_Errors(t *testing.T) {
	if _, err := NewWatcher(nil, 0, nil); err == nil {
		t.Error("no paths: expected error")
	}
	missing := filepath.Join(t.TempDir(), "missing", "index.html")
	if _, err := NewWatcher([]string{missing}, 0, nil); err == nil {
		t.Error("missing directory: expected error")
	}
}

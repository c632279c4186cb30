package evidence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/page/pagetest"
	"bitvcheck/internal/rules"
)

func newRecorder(t *testing.T) *Recorder {
	t.Helper()
	store := NewStore(t.TempDir())
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	n := 0
	store.suffix = func() string {
		n++
		return strings.Repeat(string(rune('a'+n-1)), 6)
	}
	return &Recorder{Store: store, VisibleTimeout: time.Millisecond}
}

func TestStore_FileName(t *testing.T) {
	r := newRecorder(t)
	path, err := r.Store.Save("1.4.3", false, []byte("png"))
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(path); got != "error_1.4.3_1700000000000_aaaaaa.png" {
		t.Errorf("name = %s", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
	path, err = r.Store.Save("1.4.3", true, []byte("png"))
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(path); got != "error_1.4.3_fallback_1700000000000_bbbbbb.png" {
		t.Errorf("fallback name = %s", got)
	}
}

func TestRecorder_Modes(t *testing.T) {
	box := &dom.Rect{X: 1, Y: 2, Width: 30, Height: 40}
	records := []rules.ErrorRecord{
		{Message: "a", Selector: "#shown"},
		{Message: "b", Selector: "#hidden"},
		{Message: "c", Selector: "#nobox"},
	}

	tests := []struct {
		name      string
		mode      rules.EvidenceMode
		wantPaths []bool
		wantClips []bool
	}{
		{"none", rules.EvidenceNone, []bool{false, false, false}, nil},
		{"element", rules.EvidenceElement, []bool{true, true, true}, []bool{true, false, false}},
		{"element only", rules.EvidenceElementOnly, []bool{true, false, false}, []bool{true}},
		{"full page", rules.EvidenceFullPage, []bool{true, true, true}, []bool{false, false, false}},
		{"first full page", rules.EvidenceFirstFullPage, []bool{true, false, false}, []bool{false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pagetest.Page{
				Boxes:  map[string]*dom.Rect{"#shown": box},
				Hidden: map[string]bool{"#hidden": true},
			}
			got := newRecorder(t).Annotate(context.Background(), p, "2.4.4", tt.mode, records)
			for i, want := range tt.wantPaths {
				if (got[i].EvidencePath != "") != want {
					t.Errorf("record %d path = %q, want set=%v", i, got[i].EvidencePath, want)
				}
			}
			if len(p.Shots) != len(tt.wantClips) {
				t.Fatalf("took %d screenshots, want %d", len(p.Shots), len(tt.wantClips))
			}
			for i, clipped := range tt.wantClips {
				if (p.Shots[i] != nil) != clipped {
					t.Errorf("shot %d clipped = %v, want %v", i, p.Shots[i] != nil, clipped)
				}
			}
			if records[0].EvidencePath != "" {
				t.Error("input records were mutated")
			}
		})
	}
}

func TestRecorder_SoftFailures(t *testing.T) {
	records := []rules.ErrorRecord{{Message: "a", Selector: "#x"}}

	p := &pagetest.Page{ScreenshotErr: errors.New("target closed")}
	got := newRecorder(t).Annotate(context.Background(), p, "1.1.1", rules.EvidenceElement, records)
	if len(got) != 1 || got[0].EvidencePath != "" {
		t.Errorf("got %+v", got)
	}

	static := page.NewStatic("https://example.org/", []byte(`<html><body><p id="x">x</p></body></html>`))
	got = newRecorder(t).Annotate(context.Background(), static, "1.1.1", rules.EvidenceFullPage, records)
	if got[0].EvidencePath != "" {
		t.Errorf("static page produced evidence %q", got[0].EvidencePath)
	}

	var nilRecorder *Recorder
	if got := nilRecorder.Annotate(context.Background(), p, "1.1.1", rules.EvidenceElement, records); len(got) != 1 {
		t.Error("nil recorder dropped records")
	}
}

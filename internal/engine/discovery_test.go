package engine

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestResolveTargets(t *testing.T) {
	dir := t.TempDir()
	a := writePage(t, dir, "site/a.html", cleanPage)
	b := writePage(t, dir, "site/sub/b.HTM", cleanPage)
	writePage(t, dir, "site/.git/c.html", cleanPage)
	writePage(t, dir, "site/notes.txt", "x")
	other := writePage(t, dir, "other/x.html", cleanPage)
	writePage(t, dir, "other/y.txt", "x")

	got, err := ResolveTargets([]string{
		"https://example.org/",
		filepath.Join(dir, "site"),
		a,
		filepath.Join(dir, "other", "*.html"),
		"https://example.org/",
		filepath.Join(dir, "missing.html"),
		" ",
	})
	if err != nil {
		t.Fatalf("ResolveTargets: %v", err)
	}
	want := []string{"https://example.org/", a, b, other, filepath.Join(dir, "missing.html")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("targets =\n%v\nwant\n%v", got, want)
	}
}

func TestResolveTargets_Errors(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "readme.txt", "x")

	tests := []struct {
		target  string
		wantErr string
	}{
		{dir, "no HTML files"},
		{filepath.Join(dir, "*.html"), "no files match"},
		{filepath.Join(dir, "[.html"), "invalid pattern"},
	}
	for _, tt := range tests {
		_, err := ResolveTargets([]string{tt.target})
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("ResolveTargets(%q) err = %v, want %q", tt.target, err, tt.wantErr)
		}
	}
}

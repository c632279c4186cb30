package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/report"
)

// HTMLSink writes one HTML document per target as soon as its run result
// arrives.
type HTMLSink struct {
	pattern  string
	noQRCode bool
	mu       sync.Mutex
	written  []string
	now      func() time.Time
}

func NewHTMLSink(pattern string, noQRCode bool) (*HTMLSink, error) {
	if pattern == "" {
		return nil, fmt.Errorf("html path required")
	}
	return &HTMLSink{pattern: pattern, noQRCode: noQRCode, now: time.Now}, nil
}

func (s *HTMLSink) Write(v any) error {
	res, ok := v.(*audit.RunResult)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.ReplaceAll(s.pattern, report.SlugPlaceholder, report.Slug(res.URL))
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create html file: %w", err)
	}
	err = report.RenderHTML(f, res, report.HTMLOptions{
		Generated: s.now(),
		Dir:       filepath.Dir(path),
		NoQRCode:  s.noQRCode,
	})
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write html %s: %w", path, err)
	}
	s.written = append(s.written, path)
	return nil
}

// Written returns the paths written so far.
func (s *HTMLSink) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

func (s *HTMLSink) Close() error { return nil }

package output

import (
	"fmt"
	"os"
	"sync"
	"time"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/report"
)

// ReportSink writes one Markdown report covering every target on Close.
type ReportSink struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	results []*audit.RunResult
	now     func() time.Time
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{path: path, file: f, now: time.Now}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := v.(*audit.RunResult); ok {
		s.results = append(s.results, res)
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.file.WriteString(report.RenderMarkdown(s.results, s.now()))
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write report %s: %w", s.path, err)
	}
	return nil
}

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bitvcheck/internal/audit"
)

// FileSink writes the json or ndjson output to a file.
type FileSink struct {
	path    string
	format  string
	file    *os.File
	mu      sync.Mutex
	results []*audit.RunResult
}

// NewFileSink creates path. An empty format is inferred from the extension.
func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = "json"
		case ".ndjson", ".jsonl":
			format = "ndjson"
		default:
			return nil, fmt.Errorf("cannot infer output format from file extension %q", ext)
		}
	}

	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	if err := ensureDir(path); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &FileSink{
		path:   path,
		format: format,
		file:   f,
	}, nil
}

func (s *FileSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		if res, ok := v.(*audit.RunResult); ok {
			s.results = append(s.results, res)
		}
		return nil
	case "ndjson":
		return writeNDJSON(s.file, v)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.format == "json" {
		err = writeRecords(s.file, s.results)
	}

	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

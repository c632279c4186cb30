package output

import (
	"fmt"
	"io"
	"sync"

	"bitvcheck/internal/audit"
)

// EmitSink writes additional structured outputs.
//
// Formats:
//   - json: collects run results and writes a single array of persisted
//     records on Close
//   - ndjson: streams Event values (one JSON object per line)
type EmitSink struct {
	writer  io.Writer
	format  string // "json" | "ndjson"
	mu      sync.Mutex
	results []*audit.RunResult
}

func NewEmitSink(w io.Writer, format string) (*EmitSink, error) {
	if w == nil {
		return nil, fmt.Errorf("emit sink writer must not be nil")
	}
	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported emit format: %s", format)
	}
	return &EmitSink{writer: w, format: format}, nil
}

func (s *EmitSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		if res, ok := v.(*audit.RunResult); ok {
			s.results = append(s.results, res)
		}
		return nil
	case "ndjson":
		return writeNDJSON(s.writer, v)
	default:
		return fmt.Errorf("unsupported emit format: %s", s.format)
	}
}

func (s *EmitSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		return writeRecords(s.writer, s.results)
	}
	return nil
}

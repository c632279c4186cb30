package output

import (
	"encoding/json"
	"io"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/report"
)

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}

// writeNDJSON encodes v as one line if it is an Event or a run result and
// ignores anything else.
func writeNDJSON(w io.Writer, v any) error {
	var e Event
	switch t := v.(type) {
	case Event:
		e = t
	case *audit.RunResult:
		e = eventFromRunResult(t)
	default:
		return nil
	}
	if err := json.NewEncoder(w).Encode(e); err != nil {
		return err
	}
	return flushIfPossible(w)
}

// writeRecords writes the persisted records of results as one indented
// JSON array.
func writeRecords(w io.Writer, results []*audit.RunResult) error {
	records := make([]report.Record, 0, len(results))
	for _, res := range results {
		records = append(records, report.BuildRecord(res, res.FinishedAt))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return err
	}
	return flushIfPossible(w)
}

package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/rules"
)

// ConsoleSink prints progress and results to a terminal.
//
// Formats:
//   - text: one line per violation and a summary line per target
//   - json: the persisted records of all targets, written on Close
//   - ndjson: streamed events
//
// The severity filter applies to rule results; target summaries are
// always printed.
type ConsoleSink struct {
	writer            io.Writer
	format            string // "text", "json", "ndjson"
	mu                sync.Mutex
	results           []*audit.RunResult
	allowedSeverities map[rules.Severity]bool
	colorize          bool
}

func NewConsoleSink(w io.Writer, format string, filterSeverities []rules.Severity) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer:   w,
		format:   format,
		colorize: isTerminal(w),
	}

	if len(filterSeverities) > 0 {
		s.allowedSeverities = make(map[rules.Severity]bool)
		for _, sev := range filterSeverities {
			s.allowedSeverities[sev] = true
		}
	}

	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	if e, ok := v.(Event); ok && e.Type == EventRuleResult && e.Result != nil && len(s.allowedSeverities) > 0 {
		if !s.allowedSeverities[e.Result.Severity] {
			return nil
		}
	}

	switch s.format {
	case "json":
		if res, ok := v.(*audit.RunResult); ok {
			s.results = append(s.results, res)
		}
		return nil
	case "ndjson":
		return writeNDJSON(s.writer, v)
	case "text":
		switch t := v.(type) {
		case Event:
			switch {
			case t.Type == EventTargetFailed:
				return s.printFailure(t)
			case t.Type == EventRuleResult && t.Result != nil:
				return s.printRule(t.URL, *t.Result)
			}
			return nil
		case *audit.RunResult:
			return s.printSummary(t)
		}
		return nil
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) printRule(url string, r audit.RuleResult) error {
	label := s.paint(severityColor(r.Severity), string(r.Severity))
	if r.Failed {
		label = s.paint(color.New(color.FgMagenta), "FAILED")
	}
	for _, rec := range r.Errors {
		if _, err := fmt.Fprintf(s.writer, "[%s] %s %s: %s", label, url, r.RuleID, rec.Message); err != nil {
			return err
		}
		if rec.Selector != "" && rec.Selector != "body" {
			if _, err := fmt.Fprintf(s.writer, " (%s)", rec.Selector); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(s.writer); err != nil {
			return err
		}
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) printFailure(e Event) error {
	label := s.paint(color.New(color.FgRed, color.Bold), "ERROR")
	if _, err := fmt.Fprintf(s.writer, "[%s] %s: %s\n", label, e.URL, e.Error); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) printSummary(res *audit.RunResult) error {
	line := fmt.Sprintf("%s: %.1f%% %s (%d errors", res.URL, res.Score, res.ComplianceLabel, res.TotalErrors)
	if res.Partial() {
		line += fmt.Sprintf(", %d checks failed", len(res.FailedRules))
	}
	line += ")"
	if _, err := fmt.Fprintln(s.writer, s.paint(color.New(color.Bold), line)); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) paint(c *color.Color, text string) string {
	if !s.colorize {
		return text
	}
	c.EnableColor()
	return c.Sprint(text)
}

func severityColor(sev rules.Severity) *color.Color {
	switch sev {
	case rules.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case rules.SeverityHigh:
		return color.New(color.FgRed)
	case rules.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		return writeRecords(s.writer, s.results)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}

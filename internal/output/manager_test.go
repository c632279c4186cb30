package output

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/rules"
)

type recordingSink struct {
	writes   []any
	closed   bool
	writeErr error
	closeErr error
}

func (s *recordingSink) Write(v any) error {
	s.writes = append(s.writes, v)
	return s.writeErr
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.closeErr
}

// sampleRun returns a scored run with one HIGH and one CRITICAL finding.
func sampleRun(url string) *audit.RunResult {
	return &audit.RunResult{
		URL:        url,
		FinishedAt: time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC),
		RuleOrder:  []string{"1.1.1", "1.3.1a", "3.1.1"},
		PerRule: map[string]audit.RuleResult{
			"1.1.1": {
				RuleID: "1.1.1", Description: "Non-text Content", Severity: rules.SeverityHigh, Category: rules.CategoryPerceivable,
				Errors: []rules.ErrorRecord{{Message: "Missing alternative text", Selector: "img"}},
			},
			"1.3.1a": {
				RuleID: "1.3.1a", Description: "Heading structure", Severity: rules.SeverityCritical, Category: rules.CategoryPerceivable,
				Errors: []rules.ErrorRecord{{Message: "Skipped heading level: H1 to H4", Selector: "h4"}},
			},
			"3.1.1": {
				RuleID: "3.1.1", Description: "Language of Page", Severity: rules.SeverityHigh, Category: rules.CategoryUnderstandable,
				Errors: []rules.ErrorRecord{},
			},
		},
		ErrorCountsBySeverity: map[rules.Severity]int{rules.SeverityCritical: 1, rules.SeverityHigh: 1},
		ErrorCountsByCategory: map[rules.Category]int{rules.CategoryPerceivable: 2},
		TotalErrors:           2,
		Deductions:            25,
		Score:                 50,
		ComplianceLabel:       audit.LabelPartiallyCompliant,
	}
}

func TestManager(t *testing.T) {
	t.Run("writes to all sinks", func(t *testing.T) {
		a, b := &recordingSink{}, &recordingSink{}
		mgr := NewManager()
		for _, s := range []Sink{a, b} {
			if err := mgr.AddSink(s); err != nil {
				t.Fatalf("AddSink error: %v", err)
			}
		}
		if mgr.Len() != 2 {
			t.Fatalf("Len = %d", mgr.Len())
		}
		for _, v := range []any{Event{Type: EventAuditStarted}, sampleRun("https://example.org/")} {
			if err := mgr.Write(v); err != nil {
				t.Fatalf("Write error: %v", err)
			}
		}
		if err := mgr.Close(); err != nil {
			t.Fatalf("Close error: %v", err)
		}
		for _, s := range []*recordingSink{a, b} {
			if len(s.writes) != 2 || !s.closed {
				t.Fatalf("sink got %d writes, closed=%v", len(s.writes), s.closed)
			}
		}
	})

	t.Run("AddSink rejects nil", func(t *testing.T) {
		if err := NewManager().AddSink(nil); err == nil {
			t.Fatalf("AddSink(nil) want error, got nil")
		}
	})

	t.Run("nil manager", func(t *testing.T) {
		var mgr *Manager
		if mgr.Len() != 0 || mgr.Write("v") == nil || mgr.Close() == nil {
			t.Fatal("nil manager should report errors")
		}
	})

	t.Run("Write joins sink errors and keeps going", func(t *testing.T) {
		a := &recordingSink{writeErr: errors.New("boom-a")}
		b := &recordingSink{writeErr: errors.New("boom-b")}
		c := &recordingSink{}
		mgr := NewManager()
		for _, s := range []Sink{a, b, c} {
			_ = mgr.AddSink(s)
		}

		err := mgr.Write("v")
		if err == nil {
			t.Fatalf("Write want error, got nil")
		}
		for _, want := range []string{"errors writing to sinks", "boom-a", "boom-b", "recordingSink"} {
			if !strings.Contains(err.Error(), want) {
				t.Fatalf("Write error missing %q; got: %s", want, err)
			}
		}
		if len(c.writes) != 1 {
			t.Fatal("healthy sink skipped after an error")
		}
	})

	t.Run("Close joins sink errors", func(t *testing.T) {
		a := &recordingSink{closeErr: errors.New("close-a")}
		b := &recordingSink{closeErr: errors.New("close-b")}
		mgr := NewManager()
		_ = mgr.AddSink(a)
		_ = mgr.AddSink(b)

		err := mgr.Close()
		if err == nil {
			t.Fatalf("Close want error, got nil")
		}
		for _, want := range []string{"errors closing sinks", "close-a", "close-b"} {
			if !strings.Contains(err.Error(), want) {
				t.Fatalf("Close error missing %q; got: %s", want, err)
			}
		}
		if !a.closed || !b.closed {
			t.Fatal("not every sink was closed")
		}
	})
}

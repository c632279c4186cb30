package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bitvcheck/internal/report"
	"bitvcheck/internal/rules"
)

func TestConsoleSink_Text(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text", nil)
	run := sampleRun("https://example.org/")

	for _, v := range []any{
		Event{Type: EventAuditStarted, Targets: 1, Rules: 3},
		RuleEvent(run.URL, run.PerRule["1.1.1"]),
		RuleEvent(run.URL, run.PerRule["3.1.1"]),
		run,
	} {
		if err := sink.Write(v); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	want := "[HIGH] https://example.org/ 1.1.1: Missing alternative text (img)\n" +
		"https://example.org/: 50.0% Partially compliant (2 errors)\n"
	if buf.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestConsoleSink_TextFailedRule(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text", nil)
	run := sampleRun("https://example.org/")
	r := run.PerRule["1.1.1"]
	r.Failed = true
	r.Errors = []rules.ErrorRecord{rules.PageError("Check failed: boom")}
	run.FailedRules = []string{"1.1.1"}

	_ = sink.Write(RuleEvent(run.URL, r))
	_ = sink.Write(run)

	out := buf.String()
	if !strings.Contains(out, "[FAILED] https://example.org/ 1.1.1: Check failed: boom\n") {
		t.Errorf("missing failed rule line:\n%s", out)
	}
	if !strings.Contains(out, "(2 errors, 1 checks failed)") {
		t.Errorf("summary does not mention failed checks:\n%s", out)
	}
}

func TestConsoleSink_TextTargetFailed(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text", nil)
	_ = sink.Write(Event{Type: EventTargetStarted, URL: "https://example.org/"})
	_ = sink.Write(Event{Type: EventTargetFailed, URL: "https://example.org/", Error: "unexpected status 404 Not Found"})

	if want := "[ERROR] https://example.org/: unexpected status 404 Not Found\n"; buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestConsoleSink_SeverityFilter(t *testing.T) {
	run := sampleRun("https://example.org/")
	tests := []struct {
		name   string
		format string
		filter []rules.Severity
		rule   string
		want   bool
	}{
		{"text no filter", "text", nil, "1.1.1", true},
		{"text filter critical drops high", "text", []rules.Severity{rules.SeverityCritical}, "1.1.1", false},
		{"text filter critical keeps critical", "text", []rules.Severity{rules.SeverityCritical}, "1.3.1a", true},
		{"text filter high,critical", "text", []rules.Severity{rules.SeverityHigh, rules.SeverityCritical}, "1.1.1", true},
		{"ndjson filter critical drops high", "ndjson", []rules.Severity{rules.SeverityCritical}, "1.1.1", false},
		{"ndjson filter critical keeps critical", "ndjson", []rules.Severity{rules.SeverityCritical}, "1.3.1a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sink := NewConsoleSink(&buf, tt.format, tt.filter)
			if err := sink.Write(RuleEvent(run.URL, run.PerRule[tt.rule])); err != nil {
				t.Fatalf("Write error: %v", err)
			}
			if wrote := buf.Len() > 0; wrote != tt.want {
				t.Errorf("wrote = %v, want %v (%q)", wrote, tt.want, buf.String())
			}
		})
	}
}

func TestConsoleSink_FilterKeepsSummaries(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text", []rules.Severity{rules.SeverityLow})
	if err := sink.Write(sampleRun("https://example.org/")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "https://example.org/: 50.0%") {
		t.Errorf("summary filtered out: %q", buf.String())
	}
}

func TestConsoleSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "json", nil)
	run := sampleRun("https://example.org/")

	_ = sink.Write(Event{Type: EventAuditStarted})
	_ = sink.Write(RuleEvent(run.URL, run.PerRule["1.1.1"]))
	if buf.Len() != 0 {
		t.Fatalf("json console wrote before Close: %q", buf.String())
	}
	_ = sink.Write(run)
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	var got []report.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0].URL != run.URL || got[0].AccessibilityScore != "50.0%" || got[0].LastUpdated != "17. Oktober 2026" {
		t.Fatalf("records = %+v", got)
	}
}

func TestConsoleSink_UnsupportedFormat(t *testing.T) {
	sink := NewConsoleSink(&bytes.Buffer{}, "xml", nil)
	if err := sink.Write(Event{Type: EventAuditStarted}); err == nil {
		t.Error("Write: expected error")
	}
	if err := sink.Close(); err == nil {
		t.Error("Close: expected error")
	}
}

func TestConsoleSink_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text", nil)
	run := sampleRun("https://example.org/")
	_ = sink.Write(RuleEvent(run.URL, run.PerRule["1.3.1a"]))
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("escape codes written to a non-terminal: %q", buf.String())
	}
}

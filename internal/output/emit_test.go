package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"bitvcheck/internal/report"
)

func TestEmitSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewEmitSink(&buf, "json")
	if err != nil {
		t.Fatalf("NewEmitSink returned error: %v", err)
	}

	a, b := sampleRun("https://example.org/"), sampleRun("https://example.org/contact")
	_ = s.Write(Event{Type: EventAuditStarted})
	_ = s.Write(RuleEvent(a.URL, a.PerRule["1.1.1"]))
	_ = s.Write(a)
	_ = s.Write(b)
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	var got []report.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal json output: %v", err)
	}
	if len(got) != 2 || got[0].URL != a.URL || got[1].URL != b.URL {
		t.Fatalf("records = %+v", got)
	}
	if got[0].DetailedResults["1.3.1a"].Errors[0].Message != "Skipped heading level: H1 to H4" {
		t.Errorf("detailed results = %+v", got[0].DetailedResults)
	}
}

func TestEmitSink_JSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	s, _ := NewEmitSink(&buf, "json")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestEmitSink_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewEmitSink(&buf, "ndjson")
	if err != nil {
		t.Fatalf("NewEmitSink returned error: %v", err)
	}

	run := sampleRun("https://example.org/")
	_ = s.Write(Event{Type: EventTargetStarted, URL: run.URL})
	_ = s.Write(RuleEvent(run.URL, run.PerRule["1.1.1"]))
	_ = s.Write(run)
	_ = s.Write("ignored")
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 ndjson lines, got %d: %q", len(lines), buf.String())
	}
	var events []Event
	for _, line := range lines {
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		events = append(events, e)
	}
	if events[1].Type != EventRuleResult || events[1].Result == nil || events[1].Result.RuleID != "1.1.1" || events[1].URL != run.URL {
		t.Errorf("rule event = %+v", events[1])
	}
	fin := events[2]
	if fin.Type != EventTargetFinished || fin.Score == nil || *fin.Score != 50 || fin.Status != "Partially compliant" || fin.TotalErrors != 2 {
		t.Errorf("finished event = %+v", fin)
	}
}

func TestEvent_ZeroScoreIsEncoded(t *testing.T) {
	run := sampleRun("https://example.org/")
	run.Score = 0
	data, err := json.Marshal(eventFromRunResult(run))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"score":0`) {
		t.Errorf("zero score dropped: %s", data)
	}
}

func TestEmitSink_InvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewEmitSink(&buf, "text"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestEmitSink_NilWriter(t *testing.T) {
	if _, err := NewEmitSink(nil, "json"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestNDJSON_FlushesPerWrite(t *testing.T) {
	for _, tc := range []struct {
		name string
		sink func(w io.Writer) Sink
	}{
		{"emit", func(w io.Writer) Sink { s, _ := NewEmitSink(w, "ndjson"); return s }},
		{"console", func(w io.Writer) Sink { return NewConsoleSink(w, "ndjson", nil) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pr, pw := io.Pipe()
			defer pr.Close()
			defer pw.Close()

			s := tc.sink(bufio.NewWriterSize(pw, 64*1024))

			lineCh := make(chan string, 1)
			errCh := make(chan error, 1)
			go func() {
				line, err := bufio.NewReader(pr).ReadString('\n')
				if err != nil {
					errCh <- err
					return
				}
				lineCh <- line
			}()

			if err := s.Write(Event{Type: EventTargetStarted, URL: "https://example.org/"}); err != nil {
				t.Fatalf("Write returned error: %v", err)
			}

			select {
			case line := <-lineCh:
				if !strings.Contains(line, `"type":"target.started"`) || !strings.Contains(line, `"url":"https://example.org/"`) {
					t.Fatalf("unexpected line %q", line)
				}
			case err := <-errCh:
				t.Fatalf("read error: %v", err)
			case <-time.After(250 * time.Millisecond):
				t.Fatalf("timed out waiting for ndjson line; writer likely not flushing")
			}
		})
	}
}

package notify

import (
	"strings"
	"testing"
	"time"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/rules"
)

func sampleRun(score float64, label string) *audit.RunResult {
	return &audit.RunResult{
		URL:        "https://example.org/",
		FinishedAt: time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC),
		ErrorCountsBySeverity: map[rules.Severity]int{
			rules.SeverityCritical: 1,
			rules.SeverityHigh:     1,
			rules.SeverityMedium:   0,
			rules.SeverityLow:      0,
		},
		TotalErrors:     2,
		Score:           score,
		ComplianceLabel: label,
	}
}

func TestRender_Default(t *testing.T) {
	data := BuildTemplateData(sampleRun(50, audit.LabelPartiallyCompliant), 65)

	got, err := Render("", data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "\U0001f7e0 https://example.org/ scored 50.0% (Partially compliant), below 65%.\n" +
		"2 errors: 1 critical, 1 high, 0 medium, 0 low."
	if got != want {
		t.Errorf("message =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_DefaultListsFailedRules(t *testing.T) {
	res := sampleRun(40, audit.LabelNotCompliant)
	res.FailedRules = []string{"1.4.4", "2.4.7"}

	got, err := Render(DefaultTemplate, BuildTemplateData(res, 65))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(got, "low.\nChecks that could not run: 1.4.4, 2.4.7.") {
		t.Errorf("message = %q", got)
	}
	if !strings.HasPrefix(got, "\U0001f534 ") {
		t.Errorf("emoji missing: %q", got)
	}
}

func TestRender_SprigFunctions(t *testing.T) {
	data := BuildTemplateData(sampleRun(50, audit.LabelPartiallyCompliant), 65)

	tests := []struct {
		tmpl string
		want string
	}{
		{`{{ .Status | upper }}`, "PARTIALLY COMPLIANT"},
		{`{{ .URL | trimPrefix "https://" | trimSuffix "/" }}`, "example.org"},
		{`{{ sub .Threshold .Score }}`, "15"},
		{`{{ .Generated }}`, "2026-10-17 09:30"},
	}
	for _, tt := range tests {
		got, err := Render(tt.tmpl, data)
		if err != nil {
			t.Fatalf("Render(%q): %v", tt.tmpl, err)
		}
		if got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.tmpl, got, tt.want)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := Render("{{ .Score", TemplateData{}); err == nil || !strings.Contains(err.Error(), "parsing template") {
		t.Errorf("parse error = %v", err)
	}
	if _, err := Render("{{ .Missing }}", TemplateData{}); err == nil || !strings.Contains(err.Error(), "executing template") {
		t.Errorf("exec error = %v", err)
	}
}

func TestStatusEmoji(t *testing.T) {
	tests := map[string]string{
		audit.LabelLargelyCompliant:       "\U0001f7e2",
		audit.LabelSubstantiallyCompliant: "\U0001f7e1",
		audit.LabelPartiallyCompliant:     "\U0001f7e0",
		audit.LabelNotCompliant:           "\U0001f534",
		"":                                "❓",
	}
	for label, want := range tests {
		if got := statusEmoji(label); got != want {
			t.Errorf("statusEmoji(%q) = %q, want %q", label, got, want)
		}
	}
}

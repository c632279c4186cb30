// Package report turns audit results into the persisted accessibility
// record and human-readable documents.
package report

import (
	"fmt"
	"time"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/rules"
)

const (
	TestStandard = "BITV 2.0 / EN 301 549"
)

var ConformityWith = []string{"BITV 2.0", "EN 301 549 V3.2.1 (2021-03)"}

// Record is the persisted summary of one audit pass.
type Record struct {
	URL                string                  `json:"url"`
	LastUpdated        string                  `json:"lastUpdated"`
	TestStandard       string                  `json:"testStandard"`
	ConformityWith     []string                `json:"conformityWith"`
	AccessibilityScore string                  `json:"accessibilityScore"`
	ComplianceStatus   string                  `json:"complianceStatus"`
	ErrorSummary       ErrorSummary            `json:"errorSummary"`
	Categories         []CategoryCount         `json:"categories"`
	DetailedResults    map[string]DetailedRule `json:"detailedResults"`
}

type ErrorSummary struct {
	Critical   int    `json:"critical"`
	High       int    `json:"high"`
	Medium     int    `json:"medium"`
	Low        int    `json:"low"`
	Total      int    `json:"total"`
	Deductions string `json:"deductions"`
}

type CategoryCount struct {
	Name   string `json:"name"`
	Errors int    `json:"errors"`
}

type DetailedRule struct {
	Description string              `json:"description"`
	Severity    rules.Severity      `json:"severity"`
	Category    rules.Category      `json:"category"`
	Errors      []rules.ErrorRecord `json:"errors"`
}

// BuildRecord summarizes res. now becomes lastUpdated.
func BuildRecord(res *audit.RunResult, now time.Time) Record {
	rec := Record{
		URL:                res.URL,
		LastUpdated:        GermanDate(now),
		TestStandard:       TestStandard,
		ConformityWith:     append([]string(nil), ConformityWith...),
		AccessibilityScore: fmt.Sprintf("%.1f%%", res.Score),
		ComplianceStatus:   res.ComplianceLabel,
		ErrorSummary: ErrorSummary{
			Critical:   res.ErrorCountsBySeverity[rules.SeverityCritical],
			High:       res.ErrorCountsBySeverity[rules.SeverityHigh],
			Medium:     res.ErrorCountsBySeverity[rules.SeverityMedium],
			Low:        res.ErrorCountsBySeverity[rules.SeverityLow],
			Total:      res.TotalErrors,
			Deductions: fmt.Sprintf("%.1f", float64(res.Deductions)),
		},
		DetailedResults: make(map[string]DetailedRule, len(res.PerRule)),
	}
	for _, c := range rules.Categories() {
		rec.Categories = append(rec.Categories, CategoryCount{Name: string(c), Errors: res.ErrorCountsByCategory[c]})
	}
	for _, r := range res.Rules() {
		errs := r.Errors
		if errs == nil {
			errs = []rules.ErrorRecord{}
		}
		rec.DetailedResults[r.RuleID] = DetailedRule{
			Description: r.Description,
			Severity:    r.Severity,
			Category:    r.Category,
			Errors:      errs,
		}
	}
	return rec
}

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// GermanDate formats t as a German long date with a two-digit day,
// e.g. "05. März 2026".
func GermanDate(t time.Time) string {
	return fmt.Sprintf("%02d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
}

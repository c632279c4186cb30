package audit

import (
	"time"

	"bitvcheck/internal/rules"
)

// RuleResult is the outcome of one rule on one page.
type RuleResult struct {
	RuleID              string              `json:"rule_id"`
	Description         string              `json:"description"`
	Severity            rules.Severity      `json:"severity"`
	Category            rules.Category      `json:"category"`
	FixableByAutomation bool                `json:"fixable_by_automation"`
	FixSuggestion       string              `json:"fix_suggestion,omitempty"`
	Errors              []rules.ErrorRecord `json:"errors"`
	// Failed is set when the rule itself failed and Errors holds the
	// single synthetic record describing that failure.
	Failed   bool          `json:"failed,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// RunResult is one audit pass over one page. It is built once by the
// Runner; consumers must treat it as read-only.
type RunResult struct {
	URL        string    `json:"url"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// RuleOrder lists the rule ids in execution order.
	RuleOrder []string              `json:"rule_order"`
	PerRule   map[string]RuleResult `json:"per_rule"`

	ErrorCountsBySeverity map[rules.Severity]int `json:"error_counts_by_severity"`
	ErrorCountsByCategory map[rules.Category]int `json:"error_counts_by_category"`
	TotalErrors           int                    `json:"total_errors"`
	Deductions            int                    `json:"deductions"`
	Score                 float64                `json:"score"`
	ComplianceLabel       string                 `json:"compliance_label"`
	FailedRules           []string               `json:"failed_rules,omitempty"`
}

// Rules returns the per-rule results in execution order.
func (r *RunResult) Rules() []RuleResult {
	out := make([]RuleResult, 0, len(r.RuleOrder))
	for _, id := range r.RuleOrder {
		out = append(out, r.PerRule[id])
	}
	return out
}

// Partial reports whether any rule failed to execute.
func (r *RunResult) Partial() bool {
	return len(r.FailedRules) > 0
}

// newRunResult aggregates rule results. Counts come from each rule's own
// severity and category.
func newRunResult(url string, started, finished time.Time, results []RuleResult) *RunResult {
	rr := &RunResult{
		URL:                   url,
		StartedAt:             started,
		FinishedAt:            finished,
		PerRule:               make(map[string]RuleResult, len(results)),
		ErrorCountsBySeverity: make(map[rules.Severity]int),
		ErrorCountsByCategory: make(map[rules.Category]int),
	}
	for _, s := range rules.Severities() {
		rr.ErrorCountsBySeverity[s] = 0
	}
	for _, c := range rules.Categories() {
		rr.ErrorCountsByCategory[c] = 0
	}

	for _, res := range results {
		rr.RuleOrder = append(rr.RuleOrder, res.RuleID)
		rr.PerRule[res.RuleID] = res
		n := len(res.Errors)
		rr.ErrorCountsBySeverity[res.Severity] += n
		rr.ErrorCountsByCategory[res.Category] += n
		rr.TotalErrors += n
		if res.Failed {
			rr.FailedRules = append(rr.FailedRules, res.RuleID)
		}
	}

	rr.Deductions = Deductions(rr.ErrorCountsBySeverity)
	rr.Score = Score(rr.ErrorCountsBySeverity)
	rr.ComplianceLabel = ComplianceLabel(rr.Score)
	return rr
}

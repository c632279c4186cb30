package output

import (
	"bitvcheck/internal/audit"
)

// Event types.
const (
	EventAuditStarted   = "audit.started"
	EventTargetStarted  = "target.started"
	EventRuleResult     = "rule.result"
	EventTargetFinished = "target.finished"
	EventTargetFailed   = "target.failed"
	EventAuditFinished  = "audit.finished"
)

// Event is a lifecycle record for NDJSON streaming output.
//
// Sinks receive Event values and, once per audited target, the
// *audit.RunResult itself. Streaming sinks turn the run result into a
// target.finished event; aggregating sinks (json, report, html, issue)
// collect run results and ignore most events.
type Event struct {
	Type   string            `json:"type"`
	URL    string            `json:"url,omitempty"`
	Result *audit.RuleResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`

	Score       *float64 `json:"score,omitempty"`
	Status      string   `json:"compliance_status,omitempty"`
	TotalErrors int      `json:"total_errors,omitempty"`
	FailedRules []string `json:"failed_rules,omitempty"`

	Targets  int `json:"targets,omitempty"`
	Rules    int `json:"rules,omitempty"`
	ExitCode int `json:"exit_code,omitempty"`
}

// RuleEvent wraps one rule outcome on url.
func RuleEvent(url string, r audit.RuleResult) Event {
	return Event{Type: EventRuleResult, URL: url, Result: &r}
}

func eventFromRunResult(res *audit.RunResult) Event {
	score := res.Score
	return Event{
		Type:        EventTargetFinished,
		URL:         res.URL,
		Score:       &score,
		Status:      res.ComplianceLabel,
		TotalErrors: res.TotalErrors,
		FailedRules: res.FailedRules,
	}
}

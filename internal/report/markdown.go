package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/rules"
)

// maxRecordsPerRule caps the records listed per rule and target in the
// Markdown report; the JSON outputs always carry all of them.
const maxRecordsPerRule = 10

// RenderMarkdown renders one report covering every audited target.
// Targets are listed in the order given.
func RenderMarkdown(results []*audit.RunResult, generated time.Time) string {
	var b strings.Builder
	b.WriteString("# Accessibility Audit Report\n\n")
	b.WriteString(fmt.Sprintf("Standard: %s (%s). Generated %s.\n\n", TestStandard, strings.Join(ConformityWith, ", "), GermanDate(generated)))

	// --- Executive Brief ---
	notCompliant, critical, failedRules := 0, 0, 0
	for _, res := range results {
		if res.Score < 50 {
			notCompliant++
		}
		critical += res.ErrorCountsBySeverity[rules.SeverityCritical]
		failedRules += len(res.FailedRules)
	}

	b.WriteString("### Executive Brief\n\n")
	if notCompliant > 0 {
		b.WriteString(fmt.Sprintf("- **%d of %d pages are not compliant.**\n", notCompliant, len(results)))
	}
	if critical > 0 {
		b.WriteString(fmt.Sprintf("- **%d critical barriers block users of assistive technology.**\n", critical))
	}
	if failedRules > 0 {
		b.WriteString(fmt.Sprintf("- **%d checks could not run; affected pages were audited partially.**\n", failedRules))
	}
	if notCompliant == 0 && critical == 0 && failedRules == 0 {
		b.WriteString("- No critical barriers found.\n")
	}
	b.WriteString("\n")

	// --- Per-target status ---
	b.WriteString("## Per-page status\n\n")
	if len(results) == 0 {
		b.WriteString("No pages audited.\n\n")
	} else {
		b.WriteString("| Page | Score | Status | Critical | High | Medium | Low |\n")
		b.WriteString("| --- | ---: | --- | ---: | ---: | ---: | ---: |\n")
		for _, res := range byScore(results) {
			b.WriteString(fmt.Sprintf("| %s | %.1f%% | %s | %d | %d | %d | %d |\n",
				res.URL, res.Score, res.ComplianceLabel,
				res.ErrorCountsBySeverity[rules.SeverityCritical],
				res.ErrorCountsBySeverity[rules.SeverityHigh],
				res.ErrorCountsBySeverity[rules.SeverityMedium],
				res.ErrorCountsBySeverity[rules.SeverityLow]))
		}
		b.WriteString("\n")
	}

	// --- Criteria failing across pages ---
	b.WriteString("## Criteria failing across pages\n\n")
	stats := computeRuleStats(results)
	if len(stats) == 0 {
		b.WriteString("No findings.\n\n")
	} else {
		b.WriteString("| Criterion | Severity | Pages | Errors |\n")
		b.WriteString("| --- | --- | --- | ---: |\n")
		for _, s := range stats {
			b.WriteString(fmt.Sprintf("| **%s** %s | %s | %s | %d |\n", s.RuleID, s.Description, s.Severity, formatTargetList(s.Targets, 3), s.Errors))
		}
		b.WriteString("\n")
	}

	// --- Findings ---
	b.WriteString("## Findings\n\n")
	found := false
	for _, res := range results {
		if res.TotalErrors == 0 {
			continue
		}
		found = true
		b.WriteString(fmt.Sprintf("### %s\n\n", res.URL))
		for _, sev := range rules.Severities() {
			var group []audit.RuleResult
			for _, r := range res.Rules() {
				if r.Severity == sev && len(r.Errors) > 0 && !r.Failed {
					group = append(group, r)
				}
			}
			if len(group) == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("#### %s\n", sev))
			for _, r := range group {
				writeRuleFindings(&b, r)
			}
			b.WriteString("\n")
		}
	}
	if !found {
		b.WriteString("- None\n\n")
	}

	// --- Failed checks ---
	b.WriteString("## Failed checks\n\n")
	failed := make(map[string][]string)
	for _, res := range results {
		for _, id := range res.FailedRules {
			failed[id] = append(failed[id], res.URL)
		}
	}
	if len(failed) == 0 {
		b.WriteString("- None\n\n")
	} else {
		ids := make([]string, 0, len(failed))
		for id := range failed {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return rules.LessID(ids[i], ids[j]) })
		for _, id := range ids {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", id, formatTargetList(failed[id], 5)))
		}
		b.WriteString("\n")
	}

	// --- Rules evaluated ---
	b.WriteString("## Rules evaluated\n")
	seen := make(map[string]bool)
	var ids []string
	for _, res := range results {
		for _, id := range res.RuleOrder {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return rules.LessID(ids[i], ids[j]) })
	if len(ids) == 0 {
		b.WriteString("- None\n")
	}
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("- %s\n", id))
	}
	return b.String()
}

func writeRuleFindings(b *strings.Builder, r audit.RuleResult) {
	b.WriteString(fmt.Sprintf("- **%s %s** (%d)\n", r.RuleID, r.Description, len(r.Errors)))
	for i, rec := range r.Errors {
		if i == maxRecordsPerRule {
			b.WriteString(fmt.Sprintf("  - … %d more\n", len(r.Errors)-maxRecordsPerRule))
			break
		}
		line := rec.Message
		if rec.Selector != "" && rec.Selector != "body" {
			line += fmt.Sprintf(" `%s`", rec.Selector)
		}
		if rec.EvidencePath != "" {
			line += fmt.Sprintf(" ([screenshot](%s))", rec.EvidencePath)
		}
		b.WriteString(fmt.Sprintf("  - %s\n", line))
	}
}

// byScore returns results ordered from worst to best score.
func byScore(results []*audit.RunResult) []*audit.RunResult {
	out := append([]*audit.RunResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].URL < out[j].URL
	})
	return out
}

type ruleStats struct {
	RuleID      string
	Description string
	Severity    rules.Severity
	Errors      int
	Targets     []string
}

// computeRuleStats aggregates violations per rule across targets, most
// severe and most widespread first.
func computeRuleStats(results []*audit.RunResult) []*ruleStats {
	byID := make(map[string]*ruleStats)
	for _, res := range results {
		for _, r := range res.Rules() {
			if r.Failed || len(r.Errors) == 0 {
				continue
			}
			s, ok := byID[r.RuleID]
			if !ok {
				s = &ruleStats{RuleID: r.RuleID, Description: r.Description, Severity: r.Severity}
				byID[r.RuleID] = s
			}
			s.Errors += len(r.Errors)
			s.Targets = append(s.Targets, res.URL)
		}
	}

	out := make([]*ruleStats, 0, len(byID))
	for _, s := range byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := out[i].Severity.Weight(), out[j].Severity.Weight()
		if wi != wj {
			return wi > wj
		}
		if len(out[i].Targets) != len(out[j].Targets) {
			return len(out[i].Targets) > len(out[j].Targets)
		}
		return rules.LessID(out[i].RuleID, out[j].RuleID)
	})
	return out
}

func formatTargetList(targets []string, max int) string {
	if len(targets) == 0 {
		return ""
	}
	if len(targets) <= max {
		return fmt.Sprintf("%d (%s)", len(targets), strings.Join(targets, ", "))
	}
	return fmt.Sprintf("%d (%s, +%d more)", len(targets), strings.Join(targets[:max], ", "), len(targets)-max)
}

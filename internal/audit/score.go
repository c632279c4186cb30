package audit

import "bitvcheck/internal/rules"

// MaxScore is the best attainable score. A page without automated findings
// still needs a manual review.
const MaxScore = 75.0

// Compliance labels, from best to worst.
const (
	LabelLargelyCompliant       = "Largely compliant"
	LabelSubstantiallyCompliant = "Substantially compliant"
	LabelPartiallyCompliant     = "Partially compliant"
	LabelNotCompliant           = "Not compliant"
)

// Deductions sums the severity weight of every error.
func Deductions(counts map[rules.Severity]int) int {
	total := 0
	for sev, n := range counts {
		total += n * sev.Weight()
	}
	return total
}

// Score returns MaxScore minus deductions, clamped to [0, MaxScore].
func Score(counts map[rules.Severity]int) float64 {
	score := MaxScore - float64(Deductions(counts))
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ComplianceLabel maps a score to its label. The 80 cutoff cannot be
// reached while MaxScore is 75; it is kept so labels stay comparable with
// earlier reports.
func ComplianceLabel(score float64) string {
	switch {
	case score >= 80:
		return LabelLargelyCompliant
	case score >= 65:
		return LabelSubstantiallyCompliant
	case score >= 50:
		return LabelPartiallyCompliant
	default:
		return LabelNotCompliant
	}
}

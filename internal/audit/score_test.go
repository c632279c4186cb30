package audit

import (
	"testing"

	"bitvcheck/internal/rules"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		counts map[rules.Severity]int
		want   float64
		label  string
	}{
		{"clean", nil, 75, LabelSubstantiallyCompliant},
		{"one low", map[rules.Severity]int{rules.SeverityLow: 1}, 72, LabelSubstantiallyCompliant},
		{"one high", map[rules.Severity]int{rules.SeverityHigh: 1}, 65, LabelSubstantiallyCompliant},
		{"high and critical", map[rules.Severity]int{rules.SeverityHigh: 1, rules.SeverityCritical: 1}, 50, LabelPartiallyCompliant},
		{"medium twice", map[rules.Severity]int{rules.SeverityMedium: 2, rules.SeverityCritical: 1}, 48, LabelNotCompliant},
		{"clamped", map[rules.Severity]int{rules.SeverityCritical: 10}, 0, LabelNotCompliant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.counts)
			if got != tt.want {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
			if l := ComplianceLabel(got); l != tt.label {
				t.Errorf("ComplianceLabel = %q, want %q", l, tt.label)
			}
		})
	}
}

func TestScore_Monotonic(t *testing.T) {
	for _, sev := range rules.Severities() {
		prev := MaxScore
		for n := 0; n <= 12; n++ {
			s := Score(map[rules.Severity]int{sev: n, rules.SeverityLow: 1})
			if s > prev {
				t.Fatalf("%s: score increased from %v to %v at count %d", sev, prev, s, n)
			}
			if s < 0 || s > MaxScore {
				t.Fatalf("%s: score %v out of range", sev, s)
			}
			prev = s
		}
	}
}

func TestComplianceLabel_Cutoffs(t *testing.T) {
	tests := map[float64]string{
		80:    LabelLargelyCompliant,
		79.9:  LabelSubstantiallyCompliant,
		65:    LabelSubstantiallyCompliant,
		64.99: LabelPartiallyCompliant,
		50:    LabelPartiallyCompliant,
		49.9:  LabelNotCompliant,
		0:     LabelNotCompliant,
	}
	for score, want := range tests {
		if got := ComplianceLabel(score); got != want {
			t.Errorf("ComplianceLabel(%v) = %q, want %q", score, got, want)
		}
	}
}

package rules

import (
	"fmt"
	"strings"
)

// Severity is the impact level of a rule. The set is closed.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities lists every severity from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// Weight is the score deduction per error of this severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 15
	case SeverityHigh:
		return 10
	case SeverityMedium:
		return 6
	case SeverityLow:
		return 3
	}
	return 0
}

func (s Severity) Valid() bool {
	return s.Weight() > 0
}

// ParseSeverity accepts any letter case.
func ParseSeverity(v string) (Severity, error) {
	for _, s := range Severities() {
		if strings.EqualFold(string(s), strings.TrimSpace(v)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", v)
}

// Category is the WCAG principle a rule belongs to. The set is closed.
type Category string

const (
	CategoryPerceivable    Category = "Perceivable"
	CategoryOperable       Category = "Operable"
	CategoryUnderstandable Category = "Understandable"
	CategoryRobust         Category = "Robust"
)

// Categories lists the four principles in WCAG order.
func Categories() []Category {
	return []Category{CategoryPerceivable, CategoryOperable, CategoryUnderstandable, CategoryRobust}
}

func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// EvidenceMode selects how screenshots are captured for a rule's records.
type EvidenceMode string

const (
	// EvidenceNone captures nothing.
	EvidenceNone EvidenceMode = "none"
	// EvidenceElement clips to the element and falls back to the full page.
	EvidenceElement EvidenceMode = "element"
	// EvidenceElementOnly clips to the element and gives up without one.
	EvidenceElementOnly EvidenceMode = "element-only"
	// EvidenceFullPage takes one full-page screenshot per record.
	EvidenceFullPage EvidenceMode = "full-page"
	// EvidenceFirstFullPage takes a full-page screenshot for the first record only.
	EvidenceFirstFullPage EvidenceMode = "first-full-page"
)

func (m EvidenceMode) Valid() bool {
	switch m {
	case EvidenceNone, EvidenceElement, EvidenceElementOnly, EvidenceFullPage, EvidenceFirstFullPage:
		return true
	}
	return false
}

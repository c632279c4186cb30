package rules

import (
	"context"

	"bitvcheck/internal/page"
)

type Rule interface {
	ID() string
	Description() string
	Severity() Severity
	Category() Category
	FixableByAutomation() bool
	FixSuggestion() string

	// Evidence declares how the runner captures screenshots for the
	// records this rule returns.
	Evidence() EvidenceMode

	// Inspect examines the page and returns one record per violation found.
	// Individual offending elements never cause an error; an error aborts
	// only this rule. Rules that change the viewport or inject styles must
	// restore the page before returning.
	Inspect(ctx context.Context, p page.Page) ([]ErrorRecord, error)
}

type Option struct {
	Name        string
	Description string
	Default     string
}

type ConfigurableRule interface {
	Rule
	Options() []Option
	Configure(opts map[string]string) error
}

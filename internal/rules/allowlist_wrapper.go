package rules

import (
	"context"

	"bitvcheck/internal/page"
)

// AllowListWrapper wraps a Rule to provide automatic allowlist functionality.
type AllowListWrapper struct {
	Rule
	allowList AllowList
}

// Inspect calls the inner rule's Inspect and drops allow-listed records.
func (w *AllowListWrapper) Inspect(ctx context.Context, p page.Page) ([]ErrorRecord, error) {
	records, err := w.Rule.Inspect(ctx, p)
	if err != nil {
		return records, err
	}
	return w.allowList.Filter(records), nil
}

// Options returns the combined options of the allowlist and the inner rule (if configurable).
func (w *AllowListWrapper) Options() []Option {
	opts := w.allowList.Options()
	if cr, ok := w.Rule.(ConfigurableRule); ok {
		opts = append(opts, cr.Options()...)
	}
	return opts
}

// Configure configures the allowlist and the inner rule (if configurable).
func (w *AllowListWrapper) Configure(opts map[string]string) error {
	w.allowList.Configure(opts)
	if cr, ok := w.Rule.(ConfigurableRule); ok {
		return cr.Configure(opts)
	}
	return nil
}

// Unwrap returns the wrapped rule.
func (w *AllowListWrapper) Unwrap() Rule {
	return w.Rule
}

// Package audit runs the registered rules against one page and scores the
// outcome.
package audit

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"bitvcheck/internal/evidence"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// Runner executes rules one at a time. Rules may change shared page state
// such as the viewport, so they never run concurrently on one page.
type Runner struct {
	// Evidence captures screenshots; nil disables capture.
	Evidence *evidence.Recorder
	Logger   *zap.SugaredLogger

	// OnRule, if set, is called after each rule completes.
	OnRule func(url string, res RuleResult)

	now func() time.Time
}

// Run inspects p with every rule in order. A failing rule is replaced by a
// single synthetic record and the run continues. Run only returns an error
// when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, p page.Page, selected []rules.Rule) (*RunResult, error) {
	started := r.clock()
	results := make([]RuleResult, 0, len(selected))

	for _, rule := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := r.runRule(ctx, p, rule)
		results = append(results, res)
		if r.OnRule != nil {
			r.OnRule(p.URL(), res)
		}
	}

	return newRunResult(p.URL(), started, r.clock(), results), nil
}

func (r *Runner) runRule(ctx context.Context, p page.Page, rule rules.Rule) RuleResult {
	res := RuleResult{
		RuleID:              rule.ID(),
		Description:         rule.Description(),
		Severity:            rule.Severity(),
		Category:            rule.Category(),
		FixableByAutomation: rule.FixableByAutomation(),
		FixSuggestion:       rule.FixSuggestion(),
	}

	// Rules that change page state capture evidence themselves before
	// restoring it; everything else is captured after Inspect.
	captured := false
	capture := func(ctx context.Context, p page.Page, records []rules.ErrorRecord) []rules.ErrorRecord {
		captured = true
		return r.Evidence.Annotate(ctx, p, rule.ID(), rule.Evidence(), records)
	}

	start := r.clock()
	records, err := r.inspect(rules.WithCapture(ctx, capture), p, rule)
	res.Duration = r.clock().Sub(start)

	if err != nil {
		r.logger().Errorw("rule failed", "rule", rule.ID(), "url", p.URL(), "error", err)
		res.Failed = true
		res.Errors = []rules.ErrorRecord{rules.PageError(fmt.Sprintf("Check failed: %v", err))}
		return res
	}

	if !captured {
		records = r.Evidence.Annotate(ctx, p, rule.ID(), rule.Evidence(), records)
	}
	res.Errors = records
	if res.Errors == nil {
		res.Errors = []rules.ErrorRecord{}
	}
	r.logger().Debugw("rule completed", "rule", rule.ID(), "errors", len(res.Errors), "duration", res.Duration)
	return res
}

// inspect converts a panic inside a rule into an error.
func (r *Runner) inspect(ctx context.Context, p page.Page, rule rules.Rule) (records []rules.ErrorRecord, err error) {
	defer func() {
		if v := recover(); v != nil {
			r.logger().Debugw("rule panicked", "rule", rule.ID(), "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return rule.Inspect(ctx, p)
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/page"
)

// Scheduler audits targets concurrently. Each target gets its own page;
// the rules for one page still run sequentially inside the Runner.
type Scheduler struct {
	source      page.Source
	runner      *audit.Runner
	concurrency int
	timeout     time.Duration

	// onStart, if set, is called once a target's page has loaded.
	onStart func(url string)
}

func NewScheduler(source page.Source, runner *audit.Runner, concurrency int, timeout time.Duration) (*Scheduler, error) {
	if source == nil {
		return nil, errors.New("page source is nil")
	}
	if runner == nil {
		return nil, errors.New("runner is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{source: source, runner: runner, concurrency: concurrency, timeout: timeout}, nil
}

// Execute streams per-target audit results.
//
// Channel semantics:
//   - In the normal (non-canceled) case, exactly one TargetResult is sent per target.
//   - On context cancellation, the scheduler stops promptly; it may emit fewer results.
//   - The results channel and error channel are both closed reliably.
//   - The error channel carries fatal errors and cancellation; a target that
//     cannot be loaded is reported on its TargetResult.
func (s *Scheduler) Execute(ctx context.Context, plan *AuditPlan) (<-chan TargetResult, <-chan error) {
	resultsCh := make(chan TargetResult)
	errCh := make(chan error, 1)

	go func() {
		defer close(resultsCh)
		defer close(errCh)

		trySendErr := func(err error) {
			if err == nil {
				return
			}
			select {
			case errCh <- err:
			default:
			}
		}

		if ctx == nil {
			trySendErr(errors.New("context is nil"))
			return
		}
		if plan == nil {
			trySendErr(errors.New("audit plan is nil"))
			return
		}
		if s == nil {
			trySendErr(errors.New("scheduler is nil"))
			return
		}

		var g errgroup.Group
		g.SetLimit(s.concurrency)

		for _, target := range plan.Targets {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				res := s.auditTarget(ctx, plan, target)
				select {
				case resultsCh <- res:
				case <-ctx.Done():
				}
				return nil
			})
		}

		_ = g.Wait()
		trySendErr(ctx.Err())
	}()

	return resultsCh, errCh
}

func (s *Scheduler) auditTarget(ctx context.Context, plan *AuditPlan, target string) TargetResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	p, err := s.source.Open(ctx, target)
	if err != nil {
		return TargetResult{Target: target, Err: err}
	}
	defer p.Close()

	if s.onStart != nil {
		s.onStart(p.URL())
	}
	res, err := s.runner.Run(ctx, p, plan.Rules)
	if err != nil {
		return TargetResult{Target: target, Err: err}
	}
	return TargetResult{Target: target, Result: res}
}

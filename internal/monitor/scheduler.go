// Package monitor repeats audits on a cron schedule or when local files
// change.
package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bitvcheck/internal/audit"
)

// AuditFunc runs one audit pass and returns the result of every target that
// could be loaded.
type AuditFunc func(ctx context.Context) ([]*audit.RunResult, error)

// Notifier is satisfied by *notify.Notifier.
type Notifier interface {
	Notify(res *audit.RunResult) (bool, error)
}

// Scheduler runs Audit on a cron schedule and hands each result to the
// notifier.
type Scheduler struct {
	Schedule   string
	RunOnStart bool
	Audit      AuditFunc
	Notifier   Notifier
	Logger     *zap.SugaredLogger
}

// ParseSchedule accepts five-field cron expressions and descriptors such as
// "@hourly" or "@every 30m".
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Run blocks until ctx is cancelled. A pass that is still running when the
// next one is due is skipped, not queued.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Audit == nil {
		return errors.New("monitor: no audit function")
	}
	sched, err := ParseSchedule(s.Schedule)
	if err != nil {
		return err
	}
	log := s.logger()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})))
	c.Schedule(sched, cron.FuncJob(func() { s.RunOnce(ctx) }))

	if s.RunOnStart {
		s.RunOnce(ctx)
	}

	c.Start()
	log.Infow("monitor started", "schedule", s.Schedule)
	<-ctx.Done()
	<-c.Stop().Done()
	log.Infow("monitor stopped")
	return nil
}

// RunOnce performs one pass and returns how many notifications were sent.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	log := s.logger()

	results, err := s.Audit(ctx)
	if err != nil {
		log.Errorw("scheduled audit failed", "error", err)
	}
	sent := 0
	for _, res := range results {
		log.Infow("audit finished", "url", res.URL, "score", res.Score, "status", res.ComplianceLabel)
		if s.Notifier == nil {
			continue
		}
		ok, err := s.Notifier.Notify(res)
		if err != nil {
			log.Warnw("notify failed", "url", res.URL, "error", err)
		}
		if ok {
			sent++
		}
	}
	return sent
}

func (s *Scheduler) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

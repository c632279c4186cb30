// Package engine audits every target of a run and routes the results to the
// configured output sinks.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/browser"
	"bitvcheck/internal/config"
	"bitvcheck/internal/evidence"
	"bitvcheck/internal/github"
	"bitvcheck/internal/output"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

func exitCodeForRun(fatal, partial, wrongs bool) int {
	// Exit code contract:
	// 0 = clean run, no violations
	// 1 = violations found
	// 2 = partial failure (some rules failed to run)
	// 3 = fatal error (config error, or a page could not be loaded)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if wrongs {
		return 1
	}
	return 0
}

type Engine struct {
	Logger *zap.SugaredLogger
	Stdout io.Writer
	Stderr io.Writer

	// newSource and newPublisher are test seams. If nil, Engine uses the
	// static source or a browser pool, and the GitHub client.
	newSource    func(ctx context.Context, cfg *config.Config) (page.Source, error)
	newPublisher func(ctx context.Context, cfg *config.Config) (output.IssuePublisher, error)
}

func NewEngine(logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{Logger: logger, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run audits cfg's targets and returns the process exit code.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	_, code := e.Audit(ctx, cfg)
	return code
}

// Audit is Run that also returns the result of every target that loaded,
// in target order.
func (e *Engine) Audit(ctx context.Context, cfg *config.Config) ([]*audit.RunResult, int) {
	targets, err := ResolveTargets(cfg.Targeting.URLs)
	if err != nil {
		fmt.Fprintf(e.stderr(), "Error resolving targets: %v\n", err)
		return nil, exitCodeForRun(true, false, false)
	}

	selectedRules, ok := e.resolveAndConfigureRules(cfg)
	if !ok {
		return nil, exitCodeForRun(true, false, false)
	}

	plan := NewAuditPlan(selectedRules)
	for _, t := range targets {
		if err := plan.AddTarget(t); err != nil {
			fmt.Fprintf(e.stderr(), "Error adding target %q to plan: %v\n", t, err)
			return nil, exitCodeForRun(true, false, false)
		}
	}

	outMgr, err := e.setupOutputManager(ctx, cfg)
	if err != nil {
		fmt.Fprintf(e.stderr(), "Error creating output sinks: %v\n", err)
		return nil, exitCodeForRun(true, false, false)
	}
	defer func() {
		if err := outMgr.Close(); err != nil {
			fmt.Fprintf(e.stderr(), "Error writing output: %v\n", err)
		}
	}()

	source, err := e.openSource(ctx, cfg)
	if err != nil {
		fmt.Fprintf(e.stderr(), "Error starting page source: %v\n", err)
		return nil, exitCodeForRun(true, false, false)
	}
	defer source.Close()

	runner := &audit.Runner{
		Evidence: e.evidenceRecorder(cfg),
		Logger:   e.Logger,
		OnRule: func(url string, res audit.RuleResult) {
			e.write(outMgr, output.RuleEvent(url, res))
		},
	}
	scheduler, err := NewScheduler(source, runner, cfg.Runtime.Concurrency, cfg.Runtime.Timeout)
	if err != nil {
		fmt.Fprintf(e.stderr(), "Error creating scheduler: %v\n", err)
		return nil, exitCodeForRun(true, false, false)
	}
	scheduler.onStart = func(url string) {
		e.write(outMgr, output.Event{Type: output.EventTargetStarted, URL: url})
	}

	e.write(outMgr, output.Event{Type: output.EventAuditStarted, Targets: len(plan.Targets), Rules: len(plan.Rules)})

	resCh, errCh := scheduler.Execute(ctx, plan)
	results, fatal, partial, wrongs := e.collect(cfg, resCh, outMgr)

	// Drain scheduler errors; only whether one occurred matters.
	for err := range errCh {
		if err != nil {
			e.Logger.Warnw("audit interrupted", "error", err)
			fatal = true
		}
	}

	order := make(map[string]int, len(plan.Targets))
	for i, t := range plan.Targets {
		order[t] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		return order[results[i].Target] < order[results[j].Target]
	})
	out := make([]*audit.RunResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.Result)
	}

	code := exitCodeForRun(fatal, partial, wrongs)
	e.write(outMgr, output.Event{Type: output.EventAuditFinished, ExitCode: code})
	return out, code
}

// collect forwards streamed target results to the sinks as they arrive.
func (e *Engine) collect(cfg *config.Config, resCh <-chan TargetResult, outMgr *output.Manager) (results []TargetResult, fatal, partial, wrongs bool) {
	for res := range resCh {
		if res.Err != nil {
			fatal = true
			e.Logger.Errorw("target failed", "target", res.Target, "error", res.Err)
			e.write(outMgr, output.Event{
				Type:  output.EventTargetFailed,
				URL:   res.Target,
				Error: presentLoadError(res.Err, cfg.Runtime.Verbose),
			})
			continue
		}

		r := res.Result
		if r.Partial() {
			partial = true
		}
		// Each failed rule contributes exactly one synthetic record.
		if r.TotalErrors > len(r.FailedRules) {
			wrongs = true
		}
		e.write(outMgr, r)
		results = append(results, res)
	}
	return results, fatal, partial, wrongs
}

func (e *Engine) write(outMgr *output.Manager, v any) {
	if err := outMgr.Write(v); err != nil {
		e.Logger.Warnw("output failed", "error", err)
	}
}

func (e *Engine) setupOutputManager(ctx context.Context, cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	add := func(s output.Sink, err error) error {
		if err != nil {
			outMgr.Close()
			return err
		}
		if err := outMgr.AddSink(s); err != nil {
			outMgr.Close()
			return err
		}
		return nil
	}

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := add(output.NewConsoleSink(e.stdout(), cfg.Output.ConsoleFormat, cfg.Output.Severities()), nil); err != nil {
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		if err := add(output.NewEmitSink(e.stdout(), emit)); err != nil {
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		if err := add(output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)); err != nil {
			return nil, err
		}
	}

	// Markdown report
	if cfg.Output.Report != "" {
		if err := add(output.NewReportSink(cfg.Output.Report)); err != nil {
			return nil, err
		}
	}

	// HTML documents
	if cfg.Output.HTML != "" {
		if err := add(output.NewHTMLSink(cfg.Output.HTML, cfg.Output.NoQRCode)); err != nil {
			return nil, err
		}
	}

	// GitHub issues
	if cfg.Output.GitHubIssue != "" {
		pub, err := e.issuePublisher(ctx, cfg)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := add(output.NewIssueSink(ctx, pub, cfg.Output.GitHubIssue, cfg.Output.IssueLabels)); err != nil {
			return nil, err
		}
	}

	return outMgr, nil
}

func (e *Engine) issuePublisher(ctx context.Context, cfg *config.Config) (output.IssuePublisher, error) {
	if e.newPublisher != nil {
		return e.newPublisher(ctx, cfg)
	}
	token, source, err := github.ResolveAuthToken(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("github auth: %w", err)
	}
	e.Logger.Debugw("github token resolved", "source", source)
	return github.NewClient(ctx, token, github.WithLogger(e.Logger))
}

func (e *Engine) openSource(ctx context.Context, cfg *config.Config) (page.Source, error) {
	if e.newSource != nil {
		return e.newSource(ctx, cfg)
	}
	if cfg.Targeting.Static {
		return &page.StaticSource{}, nil
	}
	vp, err := config.ParseViewport(cfg.Browser.Viewport)
	if err != nil {
		return nil, err
	}
	return browser.NewPool(browser.Options{
		ChromePath:     cfg.Browser.ChromePath,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		Viewport:       vp,
		Logger:         e.Logger,
	}), nil
}

func (e *Engine) evidenceRecorder(cfg *config.Config) *evidence.Recorder {
	if cfg.Rules.NoEvidence || cfg.Targeting.Static {
		return nil
	}
	return &evidence.Recorder{
		Store:  evidence.NewStore(cfg.Rules.EvidenceDir),
		Logger: e.Logger,
	}
}

func (e *Engine) resolveAndConfigureRules(cfg *config.Config) ([]rules.Rule, bool) {
	if !cfg.Output.NoConsole {
		fmt.Fprintln(e.stderr(), "Resolving rules...")
	}
	selectedRules, err := rules.Resolve(cfg.Rules.Selector)
	if err != nil {
		fmt.Fprintf(e.stderr(), "Error resolving rules: %v\n", err)
		return nil, false
	}

	if err := applyRuleOptionsIfAny(cfg); err != nil {
		fmt.Fprintf(e.stderr(), "Error configuring rules: %v\n", err)
		return nil, false
	}

	if !cfg.Output.NoConsole {
		fmt.Fprintf(e.stderr(), "Selected %d rules.\n", len(selectedRules))
	}
	return selectedRules, true
}

// applyRuleOptionsIfAny applies per-rule configuration supplied via repeated
// --set flags.
//
// --set values are parsed as "ruleID:option=value" and routed to the
// matching rule's Configure method. Every registered rule accepts the
// allow-list options; some add their own.
//
// Example:
//
//	bitvcheck audit https://example.org/ --set 2.4.4:phrases=mehr|weiter
func applyRuleOptionsIfAny(cfg *config.Config) error {
	if len(cfg.Rules.Set) == 0 {
		return nil
	}

	assignments, err := config.ParseRuleOptionAssignments(cfg.Rules.Set)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(assignments))
	for id := range assignments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return rules.LessID(ids[i], ids[j]) })

	for _, ruleID := range ids {
		opts := assignments[ruleID]
		r, ok := rules.Get(ruleID)
		if !ok {
			return fmt.Errorf("unknown rule ID %q", ruleID)
		}
		cr, ok := r.(rules.ConfigurableRule)
		if !ok {
			return fmt.Errorf("rule %q does not support options", ruleID)
		}

		allowed := make(map[string]struct{})
		for _, opt := range cr.Options() {
			allowed[opt.Name] = struct{}{}
		}
		for name := range opts {
			if _, ok := allowed[name]; !ok {
				return fmt.Errorf("unknown option %q for rule %q", name, ruleID)
			}
		}

		if err := cr.Configure(opts); err != nil {
			return fmt.Errorf("configure rule %q: %w", ruleID, err)
		}
	}

	return nil
}

func (e *Engine) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Engine) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

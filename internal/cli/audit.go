package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bitvcheck/internal/config"
	"bitvcheck/internal/engine"
	"bitvcheck/internal/flags"
	"bitvcheck/internal/logging"
	"bitvcheck/internal/monitor"
	"bitvcheck/internal/page"
)

const auditLong = `Audit web pages against the BITV 2.0 test procedure and score them.

Targets are http(s) URLs, file:// URLs, local HTML files, directories
(every .html/.htm file below them) or glob patterns. They can be given as
arguments, with --url, or in the config file.

Pages are rendered in a headless Chrome (found automatically or set with
--chrome-path). With --static the raw HTML is parsed instead; rules that
need layout or computed styles then report fewer violations and no
screenshots are taken.

Scoring:
	Every violation deducts its severity weight (critical 15, high 10,
	medium 6, low 3) from 75. The score never drops below 0; a page without
	findings still needs a manual review to reach full compliance.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --no-console: suppress the console sink (use with --emit/--out for machine output)
	- --report: write a Markdown report covering all targets
	- --html: write an HTML document per target ({slug} names the target)
	- --github-issue: publish each target's report as a GitHub issue

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (audit.started, target.started, rule.result, target.finished,
	target.failed, audit.finished).

Configuration file:
	--config reads a YAML file; ${VAR} references are expanded from the
	environment. Flags given on the command line override file values.

Exit codes:
	0 = no violations
	1 = violations found
	2 = partial (one or more rules could not run)
	3 = fatal error (configuration error or a page could not be loaded)

Examples:
  # Audit a live page
  bitvcheck audit https://example.org/

  # Audit a build directory without a browser and write a Markdown report
  bitvcheck audit --static --report audit.md public/

  # Only run selected rules and tune an option
  bitvcheck audit --rules 2.4.4,1.1.1 --set "2.4.4:phrases=hier|mehr" https://example.org/

  # AI Agent: stream machine-readable events to stdout
  bitvcheck audit --no-console --emit ndjson https://example.org/

  # Re-audit local files whenever they change
  bitvcheck audit --static --watch index.html
`

func newAuditCmd(root *rootOptions) *cobra.Command {
	cfg := config.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "audit [target...]",
		Short: "Audit web pages for accessibility",
		Long:  auditLong,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 && cmd.Flags().NFlag() == 0 {
				_ = cmd.Help()
				return
			}
			cfg.Targeting.URLs = append(cfg.Targeting.URLs, args...)
			cfg.Runtime.Verbose = root.verbose

			if configPath != "" {
				f, err := config.LoadFile(configPath)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					exit(3)
					return
				}
				f.ApplyTo(cfg, cmd.Flags().Changed)
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				exit(3)
				return
			}

			logger, err := logging.New(cfg.Runtime.Verbose)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				exit(3)
				return
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signalContext(cmd)
			defer cancel()

			eng := engine.NewEngine(logger)
			eng.Stdout = cmd.OutOrStdout()
			eng.Stderr = cmd.ErrOrStderr()

			code := eng.Run(ctx, cfg)
			if cfg.Runtime.Watch {
				code = watch(ctx, cmd, eng, cfg, logger)
			}
			exit(code)
		},
	}

	// Targeting
	cmd.Flags().StringSliceVar(&cfg.Targeting.URLs, flags.FlagURL, nil, "Page to audit: URL or local path (repeatable; comma-separated accepted)")
	cmd.Flags().BoolVar(&cfg.Targeting.Static, flags.FlagStatic, false, "Parse the raw HTML instead of rendering it in a browser")

	// Rules
	cmd.Flags().StringVar(&cfg.Rules.Selector, flags.FlagRules, "", "Comma-separated rule IDs to run (empty = all rules)")
	cmd.Flags().StringSliceVar(&cfg.Rules.Set, flags.FlagSet, nil, "Per-rule options as ruleID:option=value (repeatable; comma-separated accepted; separate list items with '|')")
	cmd.Flags().StringVar(&cfg.Rules.EvidenceDir, flags.FlagEvidenceDir, cfg.Rules.EvidenceDir, "Directory for violation screenshots")
	cmd.Flags().BoolVar(&cfg.Rules.NoEvidence, flags.FlagNoEvidence, false, "Do not capture screenshots")

	// Browser
	cmd.Flags().StringVar(&cfg.Browser.ChromePath, flags.FlagChromePath, "", "Chrome/Chromium executable (default: found on PATH)")
	cmd.Flags().StringVar(&cfg.Browser.Viewport, flags.FlagViewport, cfg.Browser.Viewport, "Browser window size as WIDTHxHEIGHT")
	cmd.Flags().StringVar(&cfg.Browser.AcceptLanguage, flags.FlagAcceptLanguage, cfg.Browser.AcceptLanguage, "Accept-Language header sent with every request")

	// Output
	cmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, cfg.Output.ConsoleFormat, "Console output format: text|json|ndjson")
	cmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterSeverity, flags.FlagConsoleFilterSeverity, nil, "Only print violations of these severities (critical, high, medium, low). Comma-separated.")
	cmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	cmd.Flags().StringVar(&cfg.Output.HTML, flags.FlagHTML, "", "Write an HTML document per target; {slug} is replaced by the target name")
	cmd.Flags().BoolVar(&cfg.Output.NoQRCode, flags.FlagNoQRCode, false, "Omit the QR code linking to the audited page from HTML documents")
	cmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	cmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	cmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")
	cmd.Flags().StringVar(&cfg.Output.GitHubIssue, flags.FlagGitHubIssue, "", "Publish each target's report as an issue in OWNER/REPO (token from GITHUB_TOKEN or gh)")
	cmd.Flags().StringSliceVar(&cfg.Output.IssueLabels, flags.FlagIssueLabel, cfg.Output.IssueLabels, "Labels for created issues (repeatable; comma-separated accepted)")

	// Runtime
	cmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Pages audited at once")
	cmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Timeout for loading and auditing one page")
	cmd.Flags().BoolVar(&cfg.Runtime.Watch, flags.FlagWatch, false, "Re-run the audit when a local target file changes")
	cmd.Flags().StringVar(&configPath, flags.FlagConfig, "", "YAML configuration file")

	return cmd
}

// watch re-runs the audit on every change to a local target until ctx is
// cancelled. It returns the exit code of the last run.
func watch(ctx context.Context, cmd *cobra.Command, eng *engine.Engine, cfg *config.Config, logger *zap.SugaredLogger) int {
	targets, err := engine.ResolveTargets(cfg.Targeting.URLs)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 3
	}
	var paths []string
	for _, t := range targets {
		if p, ok := page.LocalPath(t); ok {
			paths = append(paths, p)
		}
	}
	w, err := monitor.NewWatcher(paths, monitor.DefaultDebounce, logger)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 3
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d file(s) for changes. Press Ctrl+C to stop.\n", len(paths))
	code := 0
	if err := w.Run(ctx, func(ctx context.Context) {
		code = eng.Run(ctx, cfg)
	}); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 3
	}
	return code
}

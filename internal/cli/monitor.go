package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/config"
	"bitvcheck/internal/engine"
	"bitvcheck/internal/flags"
	"bitvcheck/internal/logging"
	"bitvcheck/internal/monitor"
	"bitvcheck/internal/notify"
)

const monitorLong = `Audit the configured targets on a schedule and send a notification for
every target whose score falls below the threshold.

The config file needs a monitor section:

  targets: ["https://example.org/"]
  monitor:
    schedule: "@every 6h"        # cron expression or descriptor
    threshold: 80                # percent
    runOnStart: true
    notify:
      - "slack://token@channel"  # shoutrrr service URLs
    template: ""                 # optional Go template for the message

All audit settings of the file (rules, output, browser, runtime) apply to
every run. Stop with Ctrl+C.

Examples:
  bitvcheck monitor --config bitvcheck.yaml

  # Run one pass and exit
  bitvcheck monitor --config bitvcheck.yaml --once
`

func newMonitorCmd(root *rootOptions) *cobra.Command {
	var configPath string
	var once bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Audit on a schedule and notify when scores drop",
		Long:  monitorLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return errors.New("--config is required")
			}
			f, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			if f.Monitor == nil {
				return fmt.Errorf("%s: missing monitor section", configPath)
			}

			cfg := config.New()
			f.ApplyTo(cfg, nil)
			cfg.Runtime.Verbose = root.verbose
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(cfg.Runtime.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			notifier, err := notify.NewNotifier(f.Monitor.Notify, f.Monitor.Template, f.Monitor.Threshold, logger)
			if err != nil {
				return err
			}

			eng := engine.NewEngine(logger)
			eng.Stdout = cmd.OutOrStdout()
			eng.Stderr = cmd.ErrOrStderr()

			sched := &monitor.Scheduler{
				Schedule:   f.Monitor.Schedule,
				RunOnStart: f.Monitor.RunOnStart,
				Audit:      auditFunc(eng, cfg),
				Notifier:   notifier,
				Logger:     logger,
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			if once {
				sent := sched.RunOnce(ctx)
				fmt.Fprintf(cmd.ErrOrStderr(), "Sent %d notification(s).\n", sent)
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Monitoring %d target(s) on schedule %q. Press Ctrl+C to stop.\n", len(cfg.Targeting.URLs), f.Monitor.Schedule)
			return sched.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&configPath, flags.FlagConfig, "", "YAML configuration file with a monitor section")
	cmd.Flags().BoolVar(&once, "once", false, "Run a single audit pass and exit")
	return cmd
}

// auditFunc adapts the engine to monitor.AuditFunc. Results of targets that
// loaded are returned even when another target failed.
func auditFunc(eng *engine.Engine, cfg *config.Config) monitor.AuditFunc {
	return func(ctx context.Context) ([]*audit.RunResult, error) {
		results, code := eng.Audit(ctx, cfg)
		if code == 3 {
			return results, errors.New("audit failed; see output above")
		}
		return results, nil
	}
}

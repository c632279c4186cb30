package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bitvcheck/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// exit is replaced in tests.
var exit = os.Exit

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "bitvcheck",
		Short: "Audit web pages against BITV 2.0 / EN 301 549",
		Long: `bitvcheck audits web pages for accessibility barriers following the
BITV 2.0 test procedure (EN 301 549 / WCAG 2.1 AA) and scores them.

Examples:
	# Audit a page in a headless Chrome
	bitvcheck audit https://example.org/

	# Audit local HTML files without a browser
	bitvcheck audit --static site/

	# List rules
	bitvcheck rules list

	# Audit on a schedule and notify when the score drops
	bitvcheck monitor --config bitvcheck.yaml

Output:
	By default, commands write human-readable output to stdout.
	Structured output is available via --emit and --out (see "bitvcheck audit --help").`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.verbose, flags.FlagVerbose, false, "Enable verbose logging (debug output and full error details)")

	cmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(newAuditCmd(opts))
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newMonitorCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

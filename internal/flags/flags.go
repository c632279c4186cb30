// Package flags defines canonical CLI flag names shared by the CLI, the
// config file overlay and the engine.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringSliceVar(&cfg.Targeting.URLs, flags.FlagURL, nil, "...")
//	arg := "--" + flags.FlagURL
package flags

const (
	// Targeting
	FlagURL    = "url"
	FlagStatic = "static"

	// Rules
	FlagRules       = "rules"
	FlagSet         = "set"
	FlagEvidenceDir = "evidence-dir"
	FlagNoEvidence  = "no-evidence"

	// Browser
	FlagChromePath     = "chrome-path"
	FlagViewport       = "viewport"
	FlagAcceptLanguage = "accept-language"

	// Output
	FlagConsoleFormat         = "console-format"
	FlagConsoleFilterSeverity = "console-filter-severity"
	FlagReport                = "report"
	FlagHTML                  = "html"
	FlagNoQRCode              = "no-qrcode"
	FlagOut                   = "out"
	FlagOutFormat             = "out-format"
	FlagEmit                  = "emit"
	FlagNoConsole             = "no-console"
	FlagGitHubIssue           = "github-issue"
	FlagIssueLabel            = "issue-label"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagVerbose     = "verbose"
	FlagWatch       = "watch"
	FlagConfig      = "config"
)

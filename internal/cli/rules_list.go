package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bitvcheck/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List and inspect rules",
		Long: `Inspect the bitvcheck rules.

Each rule corresponds to a BITV 2.0 test step and is identified by its test
step number, e.g. 1.1.1 or 2.4.4. Rules run during audits (see
"bitvcheck audit --help").

Examples:
  # List all available rules
  bitvcheck rules list
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newRulesListCmd())
	cmd.AddCommand(newRulesShowCmd())
	return cmd
}

func newRulesListCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available rules",
		Long: `List all rules registered in this build, sorted by test step number.

Examples:
  bitvcheck rules list
  bitvcheck rules list -q

Output:
  A vertical list of rules:
    ----------------------------------------
    RULE: {ID}
    ----------------------------------------
    {DESCRIPTION}
    Severity: {SEVERITY}  Category: {CATEGORY}
    Fix: {FIX SUGGESTION}
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range rules.List() {
				if quiet {
					fmt.Fprintln(cmd.OutOrStdout(), r.ID())
				} else {
					printRule(cmd.OutOrStdout(), r)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print rule IDs")
	return cmd
}

func newRulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [rule-id]",
		Short: "Show details of a specific rule",
		Long: `Show details of a specific rule by its ID.

Examples:
  bitvcheck rules show 2.4.4
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := rules.Get(args[0])
			if !ok {
				return fmt.Errorf("rule not found: %s", args[0])
			}
			printRule(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func printRule(w io.Writer, r rules.Rule) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "RULE: %s\n", r.ID())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, r.Description())
	fmt.Fprintf(w, "Severity: %s  Category: %s\n", r.Severity(), r.Category())
	if fix := r.FixSuggestion(); fix != "" {
		fmt.Fprintf(w, "Fix: %s\n", fix)
	}
	if r.FixableByAutomation() {
		fmt.Fprintln(w, "Fixable by automation: yes")
	}

	if cr, ok := r.(rules.ConfigurableRule); ok {
		opts := cr.Options()
		if len(opts) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Options:")
			for _, opt := range opts {
				def := opt.Default
				if def == "" {
					def = "\"\""
				}
				fmt.Fprintf(w, "  %s\n", opt.Name)
				fmt.Fprintf(w, "    Description: %s\n", opt.Description)
				fmt.Fprintf(w, "    Default:     %s\n", def)
			}
		}
	}
	fmt.Fprintln(w)
}

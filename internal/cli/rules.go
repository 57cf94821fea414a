package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cohortcheck/internal/check"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rules",
		Short:         "List the checker rules in execution order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			rules := check.Rules()
			disabled := make(map[string]bool)
			for _, name := range rootOpts.config().DisabledRules {
				disabled[name] = true
			}

			return formatter.Respond(CLIResponse{Status: "ok", Data: rules}, func(w io.Writer) {
				for _, r := range rules {
					suffix := ""
					if disabled[r.Name] {
						suffix = " (disabled)"
					}
					fmt.Fprintf(w, "%s %s%s\n", severityLabel(r.Severity), r.Name, suffix)
				}
			})
		},
	}
}

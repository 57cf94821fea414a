package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cohortcheck/internal/sqlrender"
)

// SplitResult is the JSON payload of the split command.
type SplitResult struct {
	Statements []string `json:"statements"`
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "split <sql-file>",
		Short: "Split a SQL script into statements",
		Long: `Split a SQL script at every semicolon outside quotes and comments.

Use - to read from stdin. Text output ends every statement with a semicolon
and separates statements with a blank line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			sql, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return loadFailure(formatter, err)
			}

			statements := sqlrender.Split(sql)
			if statements == nil {
				statements = []string{}
			}
			formatter.VerboseLog("Split %s into %d statement(s)", args[0], len(statements))

			return formatter.Respond(CLIResponse{Status: "ok", Data: SplitResult{Statements: statements}}, func(w io.Writer) {
				for i, stmt := range statements {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "%s;\n", stmt)
				}
			})
		},
	}
}

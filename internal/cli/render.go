package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cohortcheck/internal/sqlrender"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Params []string
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	SQL    string   `json:"sql"`
	Unused []string `json:"unused,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <sql-file>",
		Short: "Render a parameterized SQL template",
		Long: `Substitute @parameters and evaluate {condition}?{then}:{else} blocks.

Declared {DEFAULT @name = value} values apply to parameters that are not
given. Parameters without a value are left in place. Use - to read the
template from stdin.

Example:
  cohortcheck render cohort.sql -p cdm_database_schema=cdm -p target_cohort_id=3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter as name=value (repeatable)")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	params, err := parseParams(opts.Params)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --param", err)
	}

	template, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return loadFailure(formatter, err)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	unused := sqlrender.CheckParameters(template, names)
	for _, name := range unused {
		formatter.VerboseLog("Parameter @%s does not occur in the template", name)
	}

	sql, err := sqlrender.RenderMap(template, params)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRender, "rendering template", err)
	}

	return formatter.Respond(CLIResponse{Status: "ok", Data: RenderResult{SQL: sql, Unused: unused}}, func(w io.Writer) {
		fmt.Fprintln(w, strings.TrimRight(sql, "\n"))
	})
}

// parseParams turns name=value flags into a map. A leading @ on the name is
// dropped.
func parseParams(flags []string) (map[string]string, error) {
	params := make(map[string]string, len(flags))
	for _, flag := range flags {
		name, value, ok := strings.Cut(flag, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if !ok || name == "" {
			return nil, fmt.Errorf("want name=value, got %q", flag)
		}
		params[name] = value
	}
	return params, nil
}

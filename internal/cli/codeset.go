package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cohortcheck/internal/codeset"
	"github.com/roach88/cohortcheck/internal/sqlrender"
)

// CodesetOptions holds flags for the codeset command.
type CodesetOptions struct {
	*RootOptions
	ID               int
	VocabularySchema string
	Dialect          string
	SessionID        string
	TempSchema       string
	Patterns         string

	// SessionIDs allows overriding the session id generator (for testing).
	SessionIDs sqlrender.SessionIDGenerator
}

// NewCodesetCommand creates the codeset command.
func NewCodesetCommand(rootOpts *RootOptions) *cobra.Command {
	return newCodesetCommand(&CodesetOptions{RootOptions: rootOpts})
}

func newCodesetCommand(opts *CodesetOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codeset <expression-file>",
		Short: "Build the #Codesets SQL for the concept sets of an expression",
		Long: `Build the SQL that expands the concept sets of a cohort expression into
the #Codesets temp table, with descendants and mapped concepts resolved
through the vocabulary tables.

Example:
  cohortcheck codeset cohort.json --id 2 --vocabulary-schema vocab --dialect postgresql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodeset(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.ID, "id", 0, "build only the concept set with this id")
	cmd.Flags().StringVar(&opts.VocabularySchema, "vocabulary-schema", "", "value for @vocabulary_database_schema")
	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "translate the SQL to this dialect")
	cmd.Flags().StringVar(&opts.SessionID, "session-id", "", "session id for emulated temp tables (default random)")
	cmd.Flags().StringVar(&opts.TempSchema, "temp-schema", "", "schema for emulated temp tables (default temp)")
	cmd.Flags().StringVar(&opts.Patterns, "patterns", "", "replacement pattern CSV (default built-in table)")

	return cmd
}

func runCodeset(opts *CodesetOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	expr, err := LoadExpression(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	var sql string
	if cmd.Flags().Changed("id") {
		sql, err = codeset.BuildCodesetQuery(expr.ConceptSets, opts.ID)
	} else {
		sql, err = codeset.BuildCodesetsQuery(expr.ConceptSets)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCodeset, "building concept set SQL", err)
	}

	if opts.VocabularySchema != "" {
		sql, err = sqlrender.Render(sql, []string{"vocabulary_database_schema"}, []string{opts.VocabularySchema})
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeRender, "rendering concept set SQL", err)
		}
	}

	settings := resolveSQLSettings(cmd, opts.config(), opts.Dialect, opts.Patterns, opts.SessionID, opts.TempSchema)
	if settings.dialect != "" {
		translator, err := newTranslator(settings.patterns, opts.SessionIDs)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodePatterns, "loading replacement patterns", err)
		}
		sql, err = translator.Translate(sql, settings.dialect, settings.translate)
		if err != nil {
			return translateFailure(formatter, err)
		}
	}
	formatter.VerboseLog("Built concept set SQL for %d set(s) from %s", len(expr.ConceptSets), path)

	result := TranslateResult{Dialect: settings.dialect, SQL: sql}
	return formatter.Respond(CLIResponse{Status: "ok", Data: result}, func(w io.Writer) {
		fmt.Fprintln(w, strings.TrimRight(sql, "\n"))
	})
}

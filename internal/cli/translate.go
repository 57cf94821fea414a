package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cohortcheck/internal/sqlrender"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Dialect    string
	SessionID  string
	TempSchema string
	Patterns   string
	List       bool

	// SessionIDs allows overriding the session id generator (for testing).
	// If nil, the translator generates random ids.
	SessionIDs sqlrender.SessionIDGenerator
}

// TranslateResult is the JSON payload of the translate command.
type TranslateResult struct {
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	return newTranslateCommand(&TranslateOptions{RootOptions: rootOpts})
}

func newTranslateCommand(opts *TranslateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <sql-file>",
		Short: "Translate SQL Server flavored SQL to another dialect",
		Long: `Translate SQL Server flavored SQL into a target dialect.

Statements are rewritten with the replacement pattern table of the dialect,
then with the dialect's structural passes. Temp tables in dialects without
them are emitted under --temp-schema with a per-run session prefix.

Example:
  cohortcheck translate --dialect postgresql cohort.sql
  cohortcheck render cohort.sql -p cdm=main | cohortcheck translate -d sqlite -
  cohortcheck translate --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "target dialect")
	cmd.Flags().StringVar(&opts.SessionID, "session-id", "", "session id for emulated temp tables (default random)")
	cmd.Flags().StringVar(&opts.TempSchema, "temp-schema", "", "schema for emulated temp tables (default temp)")
	cmd.Flags().StringVar(&opts.Patterns, "patterns", "", "replacement pattern CSV (default built-in table)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list the supported dialects")

	return cmd
}

func runTranslate(opts *TranslateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	sqlOpts := opts.resolve(cmd)

	translator, err := newTranslator(sqlOpts.patterns, opts.SessionIDs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodePatterns, "loading replacement patterns", err)
	}

	if opts.List {
		dialects := translator.Dialects()
		return formatter.Respond(CLIResponse{Status: "ok", Data: dialects}, func(w io.Writer) {
			fmt.Fprintln(w, strings.Join(dialects, "\n"))
		})
	}
	if len(args) != 1 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "translate needs a SQL file (or - for stdin)", nil)
	}

	sql, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return loadFailure(formatter, err)
	}

	out, err := translator.Translate(sql, sqlOpts.dialect, sqlOpts.translate)
	if err != nil {
		return translateFailure(formatter, err)
	}

	return formatter.Respond(CLIResponse{Status: "ok", Data: TranslateResult{Dialect: sqlOpts.dialect, SQL: out}}, func(w io.Writer) {
		fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	})
}

// sqlSettings are the translation settings after applying the config file
// under the command line flags.
type sqlSettings struct {
	dialect   string
	patterns  string
	translate sqlrender.TranslateOptions
}

func (o *TranslateOptions) resolve(cmd *cobra.Command) sqlSettings {
	return resolveSQLSettings(cmd, o.config(), o.Dialect, o.Patterns, o.SessionID, o.TempSchema)
}

// resolveSQLSettings merges translation flags over the config file. A flag
// wins when it was given on the command line.
func resolveSQLSettings(cmd *cobra.Command, cfg *Config, dialect, patterns, sessionID, tempSchema string) sqlSettings {
	pick := func(flag, flagValue, cfgValue string) string {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			return flagValue
		}
		return cfgValue
	}
	return sqlSettings{
		dialect:  pick("dialect", dialect, cfg.Dialect),
		patterns: pick("patterns", patterns, cfg.Patterns),
		translate: sqlrender.TranslateOptions{
			SessionID:  pick("session-id", sessionID, cfg.SessionID),
			TempSchema: pick("temp-schema", tempSchema, cfg.TempSchema),
		},
	}
}

// newTranslator builds a translator over the built-in pattern table, or
// over the CSV at path when given.
func newTranslator(path string, sessions sqlrender.SessionIDGenerator) (*sqlrender.Translator, error) {
	var (
		table *sqlrender.PatternTable
		err   error
	)
	if path == "" {
		table, err = sqlrender.DefaultPatterns()
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		table, err = sqlrender.LoadPatterns(f)
	}
	if err != nil {
		return nil, err
	}

	opts := []sqlrender.Option{sqlrender.WithLogger(slog.Default())}
	if sessions != nil {
		opts = append(opts, sqlrender.WithSessionIDs(sessions))
	}
	return sqlrender.NewTranslator(table, opts...), nil
}

// translateFailure reports a translation error, naming the dialect when it
// is unknown.
func translateFailure(f *OutputFormatter, err error) error {
	var rerr *sqlrender.Error
	if errors.As(err, &rerr) && rerr.Code == sqlrender.ErrCodeUnknownDialect {
		return f.Fail(ExitCommandError, ErrCodeTranslate, fmt.Sprintf("unknown dialect %q", rerr.Parameter), err)
	}
	return f.Fail(ExitCommandError, ErrCodeTranslate, "translating SQL", err)
}

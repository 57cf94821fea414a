package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/roach88/cohortcheck/internal/check"
)

// IDGenerator produces run ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 run ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	FailOn   string
	Disabled []string
	Progress bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs IDGenerator
}

// FileReport is the result of checking one expression file.
type FileReport struct {
	Path     string          `json:"path"`
	Warnings []check.Warning `json:"warnings"`
	Errors   []string        `json:"errors,omitempty"`
}

// CheckReport is the JSON payload of the check command.
type CheckReport struct {
	RunID string       `json:"run_id"`
	Files []FileReport `json:"files"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newCheckCommand(&CheckOptions{RootOptions: rootOpts})
}

func newCheckCommand(opts *CheckOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <expression-file>...",
		Short: "Check cohort expressions for design problems",
		Long: `Run the rule catalog over one or more cohort expressions.

Expressions are read from .json, .yaml/.yml or .cue files. Every rule runs
independently; a rule that fails is reported without hiding the findings
of the others.

Example:
  cohortcheck check cohort.json
  cohortcheck check --fail-on warning --format json cohorts/*.json
  cohortcheck check --disable TimePattern,DomainType cohort.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "", "exit 1 on findings at or above this severity: info, warning, critical or none (default critical)")
	cmd.Flags().StringSliceVar(&opts.Disabled, "disable", nil, "rules to skip")
	cmd.Flags().BoolVar(&opts.Progress, "progress", false, "show a progress bar on stderr")

	return cmd
}

func runCheck(opts *CheckOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	cfg := opts.config()

	failOn := cfg.FailOn
	if cmd.Flags().Changed("fail-on") {
		failOn = opts.FailOn
	}
	threshold, failEnabled, err := parseFailOn(failOn)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --fail-on", err)
	}

	disabled := append(append([]string(nil), cfg.DisabledRules...), opts.Disabled...)
	for _, name := range disabled {
		if !check.IsRule(name) {
			return formatter.Fail(ExitCommandError, ErrCodeUnknownRule, fmt.Sprintf("unknown rule %q", name), nil)
		}
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = UUIDv7Generator{}
	}
	runID := runIDs.Generate()
	logger := slog.Default().With("run_id", runID)
	checker := check.New(check.WithLogger(logger), check.WithDisabled(disabled...))

	var progress *mpb.Progress
	var bar *mpb.Bar
	if opts.Progress && len(paths) > 1 {
		progress = mpb.New(mpb.WithOutput(cmd.ErrOrStderr()), mpb.WithWidth(40))
		bar = progress.AddBar(int64(len(paths)),
			mpb.BarRemoveOnComplete(),
			mpb.PrependDecorators(
				decor.Name("check", decor.WC{W: 6}),
				decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	report := CheckReport{RunID: runID, Files: make([]FileReport, 0, len(paths))}
	var loadErrs []error
	for _, path := range paths {
		if err := cmd.Context().Err(); err != nil {
			if bar != nil {
				bar.Abort(false)
				progress.Wait()
			}
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "check cancelled", err)
		}

		formatter.VerboseLog("Checking %s", path)
		fr, err := checkFile(checker, path)
		if err != nil {
			loadErrs = append(loadErrs, err)
		} else {
			report.Files = append(report.Files, fr)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if progress != nil {
		progress.Wait()
	}

	if len(loadErrs) > 0 {
		return loadFailure(formatter, loadErrs[0])
	}

	total, failing, ruleFailures := summarize(report, threshold, failEnabled)
	logger.Debug("check finished", "files", len(report.Files), "warnings", total, "failing", failing)

	if err := formatter.Respond(CLIResponse{Status: "ok", Data: report, TraceID: runID}, func(w io.Writer) {
		writeCheckText(w, report, total)
	}); err != nil {
		return err
	}

	switch {
	case ruleFailures > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d rule failure(s)", ErrCodeRuleFailed, ruleFailures))
	case failing > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%d finding(s) at or above %s", failing, threshold))
	}
	return nil
}

// checkFile loads and checks one expression. Rule failures are reported in
// the FileReport; load failures are returned.
func checkFile(checker *check.Checker, path string) (FileReport, error) {
	expr, err := LoadExpression(path)
	if err != nil {
		return FileReport{}, err
	}

	warnings, err := checker.Check(expr)
	fr := FileReport{Path: path, Warnings: warnings}
	if err != nil {
		for _, e := range unwrapAll(err) {
			fr.Errors = append(fr.Errors, e.Error())
		}
	}
	return fr, nil
}

// unwrapAll flattens an errors.Join tree one level deep.
func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func summarize(report CheckReport, threshold check.Severity, failEnabled bool) (total, failing, ruleFailures int) {
	for _, fr := range report.Files {
		total += len(fr.Warnings)
		ruleFailures += len(fr.Errors)
		if !failEnabled {
			continue
		}
		for _, w := range fr.Warnings {
			if w.Severity >= threshold {
				failing++
			}
		}
	}
	return total, failing, ruleFailures
}

func writeCheckText(w io.Writer, report CheckReport, total int) {
	for _, fr := range report.Files {
		if len(fr.Warnings) == 0 && len(fr.Errors) == 0 {
			fmt.Fprintf(w, "✓ %s\n", fr.Path)
			continue
		}
		fmt.Fprintf(w, "%s\n", fr.Path)
		for _, warning := range fr.Warnings {
			fmt.Fprintf(w, "  %s %s\n", severityLabel(warning.Severity), warning.Message)
		}
		for _, e := range fr.Errors {
			fmt.Fprintf(w, "  %s %s\n", errorLabel.Sprint("FAILED  "), e)
		}
	}
	fmt.Fprintf(w, "\n%d warning(s) in %d file(s)\n", total, len(report.Files))
}

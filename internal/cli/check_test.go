package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohortcheck/internal/check"
	"github.com/roach88/cohortcheck/internal/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const (
	// cleanExpression passes every rule.
	cleanExpression = `{
  "ConceptSets": [{"id": 0, "name": "Diabetes", "expression": {"items": [
    {"concept": {"CONCEPT_ID": 201826, "CONCEPT_CODE": "44054006", "DOMAIN_ID": "Condition", "VOCABULARY_ID": "SNOMED"}}]}}],
  "PrimaryCriteria": {
    "CriteriaList": [{"ConditionOccurrence": {"CodesetId": 0, "ConditionType": [{"CONCEPT_ID": 32020}]}}],
    "ObservationWindow": {"PriorDays": 0, "PostDays": 0},
    "PrimaryCriteriaLimit": {"Type": "First"}
  },
  "QualifiedLimit": {"Type": "First"},
  "ExpressionLimit": {"Type": "First"},
  "EndStrategy": {"DateOffset": {"DateField": "EndDate", "Offset": 0}}
}`

	// emptyExpression has a single CRITICAL finding: no initial event.
	emptyExpression = `{}`

	// orphanExpression yields UnusedConcepts (WARNING), ExitCriteria,
	// InitialEvent and EmptyConceptSet (CRITICAL).
	orphanExpression = `{
  "ConceptSets": [{"id": 7, "name": "Orphan"}],
  "EndStrategy": {"CustomEra": {"GapDays": 30}}
}`
)

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeRoot runs the root command with args and returns stdout, stderr
// and the command error.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type checkResponse struct {
	Status  string      `json:"status"`
	Data    CheckReport `json:"data"`
	Error   *CLIError   `json:"error"`
	TraceID string      `json:"trace_id"`
}

func decodeCheck(t *testing.T, out string) checkResponse {
	t.Helper()
	var resp checkResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestCheck_CleanExpression(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clean.json", cleanExpression)

	out, _, err := executeRoot(t, "check", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+path+"\n\n0 warning(s) in 1 file(s)\n", out)
}

func TestCheck_TextReport(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.json", emptyExpression)

	out, _, err := executeRoot(t, "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t,
		path+"\n  CRITICAL No initial event criteria specified\n\n1 warning(s) in 1 file(s)\n",
		out)
}

func TestCheck_JSONReportWithRunID(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "clean.json", cleanExpression)
	orphan := writeFile(t, dir, "orphan.json", orphanExpression)

	buf := &bytes.Buffer{}
	opts := &CheckOptions{
		RootOptions: &RootOptions{Format: "json"},
		RunIDs:      testutil.NewFixedIDs("run-0001"),
	}
	cmd := newCheckCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{clean, orphan})

	err := cmd.Execute()
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeCheck(t, buf.String())
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-0001", resp.TraceID)
	assert.Equal(t, "run-0001", resp.Data.RunID)
	require.Len(t, resp.Data.Files, 2)

	assert.Equal(t, clean, resp.Data.Files[0].Path)
	assert.Empty(t, resp.Data.Files[0].Warnings)

	warnings := resp.Data.Files[1].Warnings
	require.Len(t, warnings, 4)
	assert.Equal(t, `Concept Set "Orphan" is not used`, warnings[0].Message)
	assert.Equal(t, check.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, check.TypeConceptSet, warnings[0].Type)
	require.NotNil(t, warnings[0].ConceptSet)
	assert.Equal(t, 7, warnings[0].ConceptSet.ID)
	assert.Equal(t, check.SeverityCritical, warnings[1].Severity)
}

func TestCheck_FailOn(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.json", emptyExpression)
	orphan := writeFile(t, dir, "orphan.json", orphanExpression)
	onlyWarning := []string{"--disable", "ExitCriteria,InitialEvent", "--disable", "EmptyConceptSet"}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"default_fails_on_critical", []string{empty}, ExitFailure},
		{"none_never_fails", []string{"--fail-on", "none", empty}, ExitSuccess},
		{"warning_below_default", append(append([]string{}, onlyWarning...), orphan), ExitSuccess},
		{"warning_threshold", append(append([]string{"--fail-on", "warning"}, onlyWarning...), orphan), ExitFailure},
		{"info_threshold_case_insensitive", append(append([]string{"--fail-on", "Info"}, onlyWarning...), orphan), ExitFailure},
		{"invalid_threshold", []string{"--fail-on", "severe", empty}, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeRoot(t, append([]string{"check"}, tt.args...)...)
			assert.Equal(t, tt.want, GetExitCode(err))
		})
	}
}

func TestCheck_DisableUnknownRule(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clean.json", cleanExpression)

	out, _, err := executeRoot(t, "--format", "json", "check", "--disable", "NoSuchRule", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeCheck(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownRule, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "NoSuchRule")
}

func TestCheck_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantCode string
	}{
		{"missing_file", filepath.Join(dir, "missing.json"), ErrCodeNotFound},
		{"unsupported_extension", writeFile(t, dir, "cohort.txt", emptyExpression), ErrCodeUnsupported},
		{"invalid_json", writeFile(t, dir, "broken.json", `{"ConceptSets": [`), ErrCodeDecode},
		{"invalid_cue", writeFile(t, dir, "broken.cue", `expression: {`), ErrCodeLoadFailed},
		{"incomplete_cue", writeFile(t, dir, "open.cue", `expression: QualifiedLimit: Type: string`), ErrCodeBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeRoot(t, "--format", "json", "check", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeCheck(t, out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestCheck_YAMLAndCUE(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "cohort.yaml", "ConceptSets: []\nCensoringCriteria: []\n")
	cuePath := writeFile(t, dir, "cohort.cue", `
_sets: []

expression: {
	ConceptSets: _sets
}
`)

	for _, path := range []string{yamlPath, cuePath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			out, _, err := executeRoot(t, "--format", "json", "check", path)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			resp := decodeCheck(t, out)
			require.Len(t, resp.Data.Files, 1)
			require.Len(t, resp.Data.Files[0].Warnings, 1)
			assert.Equal(t, "No initial event criteria specified", resp.Data.Files[0].Warnings[0].Message)
		})
	}
}

func TestCheck_ConfigDisablesRules(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.json", emptyExpression)
	cfg := writeFile(t, dir, "cohortcheck.yaml", "disabled_rules: [InitialEvent]\n")

	out, _, err := executeRoot(t, "--config", cfg, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 warning(s) in 1 file(s)")
}

func TestCheck_CancelledContext(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clean.json", cleanExpression)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", path})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "check cancelled")
}

func TestCheck_Progress(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", cleanExpression)
	b := writeFile(t, dir, "b.json", cleanExpression)

	out, _, err := executeRoot(t, "check", "--progress", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "0 warning(s) in 2 file(s)")
}

func TestRulesCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cohortcheck.yaml", "disabled_rules: [Text]\n")

	out, _, err := executeRoot(t, "--config", cfg, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING  UnusedConcepts\n")
	assert.Contains(t, out, "WARNING  Text (disabled)\n")
	assert.Contains(t, out, "INFO     FirstTimeInHistory\n")

	out, _, err = executeRoot(t, "--format", "json", "rules")
	require.NoError(t, err)
	var resp struct {
		Data []check.RuleInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, check.Rules(), resp.Data)
}

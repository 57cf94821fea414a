package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohortcheck/internal/check"
)

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cohortcheck.yaml", `
dialect: postgresql
patterns: ./patterns.csv
session_id: abcd1234
temp_schema: scratch
disabled_rules:
  - TimePattern
  - DomainType
fail_on: warning
`)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Dialect:       "postgresql",
		Patterns:      "./patterns.csv",
		SessionID:     "abcd1234",
		TempSchema:    "scratch",
		DisabledRules: []string{"TimePattern", "DomainType"},
		FailOn:        "warning",
	}, cfg)
}

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	_, err = LoadConfig(path, true)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeConfig, loadErr.Code)
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
		wantMsg  string
	}{
		{"unknown_key", "dialect: oracle\nfailOn: warning\n", ErrCodeConfig, "failOn"},
		{"bad_yaml", "dialect: [oracle\n", ErrCodeConfig, "parsing config"},
		{"unknown_rule", "disabled_rules: [NoSuchRule]\n", ErrCodeUnknownRule, "NoSuchRule"},
		{"bad_fail_on", "fail_on: severe\n", ErrCodeConfig, "fail_on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "cohortcheck.yaml", tt.content)
			_, err := LoadConfig(path, true)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.wantCode, loadErr.Code)
			assert.Contains(t, loadErr.Message, tt.wantMsg)
		})
	}
}

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		value       string
		want        check.Severity
		wantEnabled bool
		wantErr     bool
	}{
		{"", check.SeverityCritical, true, false},
		{"none", check.SeverityInfo, false, false},
		{" NONE ", check.SeverityInfo, false, false},
		{"warning", check.SeverityWarning, true, false},
		{"INFO", check.SeverityInfo, true, false},
		{"severe", check.SeverityInfo, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, enabled, err := parseFailOn(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantEnabled, enabled)
		})
	}
}

func TestRootCommand_BadConfigFlag(t *testing.T) {
	out, _, err := executeRoot(t, "--format", "json", "--config", filepath.Join(t.TempDir(), "none.yaml"), "rules")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `"code":"E201"`)
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cohortcheck/internal/check"
)

// Scenario defines a conformance test scenario.
// Scenarios check one cohort expression and assert on the findings and on
// the concept set rows its SQL produces.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Expression is the path of the cohort expression (.json, .yaml or .yml).
	Expression string `yaml:"expression"`

	// DisabledRules are skipped by the checker.
	DisabledRules []string `yaml:"disabled_rules,omitempty"`

	// Vocabulary is a SQL script that creates and fills the vocabulary
	// tables in the scenario database.
	Vocabulary string `yaml:"vocabulary,omitempty"`

	// Codesets builds the #Codesets SQL of the expression and runs it.
	Codesets bool `yaml:"codesets,omitempty"`

	// SessionID is the fixed session id for emulated temp tables.
	// If empty, defaults to "s0".
	SessionID string `yaml:"session_id,omitempty"`

	// Assertions validate the findings and the final database state.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates findings or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "warning_contains": Check a warning with Message was reported
	// - "warning_order": Check Messages appear in order
	// - "warning_count": Check exactly Count warnings were reported
	// - "row_count": Check Table holds exactly Count rows matching Where
	// - "final_state": Query Table and verify expected values
	Type string `yaml:"type"`

	// Message is the exact warning message (used by warning_contains).
	Message string `yaml:"message,omitempty"`

	// Severity narrows warning_contains and warning_count to one severity.
	Severity string `yaml:"severity,omitempty"`

	// Messages is the expected message order (used by warning_order).
	Messages []string `yaml:"messages,omitempty"`

	// Count is the expected number of warnings or rows.
	Count int `yaml:"count,omitempty"`

	// Table is the table name (used by row_count and final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by row_count and final_state).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertWarningContains = "warning_contains"
	AssertWarningOrder    = "warning_order"
	AssertWarningCount    = "warning_count"
	AssertRowCount        = "row_count"
	AssertFinalState      = "final_state"
)

// defaultSessionID is used when a scenario does not name one.
const defaultSessionID = "s0"

// LoadScenario reads and parses a scenario YAML file.
// Paths in the scenario are resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the expression and vocabulary paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve paths relative to base path BEFORE validation
	scenario.Expression = resolvePath(basePath, scenario.Expression)
	scenario.Vocabulary = resolvePath(basePath, scenario.Vocabulary)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func resolvePath(basePath, path string) string {
	if path == "" || filepath.IsAbs(path) || basePath == "" {
		return path
	}
	return filepath.Join(basePath, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Expression == "" {
		return fmt.Errorf("expression is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := os.Stat(s.Expression); os.IsNotExist(err) {
		return fmt.Errorf("expression file not found: %s", s.Expression)
	}

	if s.Vocabulary != "" {
		if _, err := os.Stat(s.Vocabulary); os.IsNotExist(err) {
			return fmt.Errorf("vocabulary file not found: %s", s.Vocabulary)
		}
	}

	if s.Codesets && s.Vocabulary == "" {
		return fmt.Errorf("codesets requires a vocabulary script")
	}

	for _, name := range s.DisabledRules {
		if !check.IsRule(name) {
			return fmt.Errorf("disabled_rules: unknown rule %q", name)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s.Codesets); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
// State assertions need a database, which only codesets scenarios have.
func validateAssertion(index int, a *Assertion, hasDatabase bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Severity != "" {
		if _, err := check.ParseSeverity(a.Severity); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	switch a.Type {
	case AssertWarningContains:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for warning_contains", index)
		}
	case AssertWarningOrder:
		if len(a.Messages) == 0 {
			return fmt.Errorf("assertions[%d]: messages list is required for warning_order", index)
		}
	case AssertWarningCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for warning_count", index)
		}
	case AssertRowCount, AssertFinalState:
		if !hasDatabase {
			return fmt.Errorf("assertions[%d]: %s requires codesets: true", index, a.Type)
		}
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for %s", index, a.Type)
		}
		if a.Type == AssertRowCount && a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
		if a.Type == AssertFinalState && len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

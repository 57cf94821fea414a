package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the observable outcome of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Statements are left out; the rows they produce are kept.
func (s *Snapshot) toCanonicalMap() map[string]any {
	warnings := make([]any, len(s.Result.Warnings))
	for i, w := range s.Result.Warnings {
		warning := map[string]any{
			"type":     string(w.Type),
			"severity": w.Severity.String(),
			"message":  w.Message,
		}
		if w.ConceptSet != nil {
			warning["concept_set_id"] = w.ConceptSet.ID
		}
		warnings[i] = warning
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"warnings":      warnings,
	}
	if len(s.Result.RuleErrors) > 0 {
		ruleErrors := make([]any, len(s.Result.RuleErrors))
		for i, e := range s.Result.RuleErrors {
			ruleErrors[i] = e
		}
		result["rule_errors"] = ruleErrors
	}
	if s.Result.Codesets != nil {
		rows := make([]any, len(s.Result.Codesets))
		for i, row := range s.Result.Codesets {
			rows[i] = map[string]any{
				"codeset_id": row.CodesetID,
				"concept_id": row.ConceptID,
			}
		}
		result["codesets"] = rows
	}
	return result
}

// RunWithGolden executes a scenario and compares its outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can inspect Pass and Errors.
// Test failure (via goldie) occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Result:       result,
	}
	data, err := MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

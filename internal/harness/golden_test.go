package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohortcheck/internal/check"
	"github.com/roach88/cohortcheck/internal/cohort"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := DiscoverScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_CanonicalMap(t *testing.T) {
	result := NewResult()
	result.Warnings = []check.Warning{
		{Type: check.TypeConceptSet, Severity: check.SeverityWarning, Message: "m", ConceptSet: &cohort.ConceptSet{ID: 4}},
		{Type: check.TypeDefault, Severity: check.SeverityInfo, Message: "n"},
	}
	result.RuleErrors = []string{"rule Text: boom"}
	result.Statements = []string{"SELECT 1"}

	snapshot := Snapshot{ScenarioName: "snap", Result: result}
	data, err := MarshalCanonical(snapshot.toCanonicalMap())
	require.NoError(t, err)

	assert.Equal(t,
		`{"rule_errors":["rule Text: boom"],"scenario_name":"snap","warnings":[`+
			`{"concept_set_id":4,"message":"m","severity":"WARNING","type":"ConceptSetWarning"},`+
			`{"message":"n","severity":"INFO","type":"DefaultWarning"}]}`,
		string(data))
}

func TestSnapshot_EmptyCodesets(t *testing.T) {
	result := NewResult()
	result.Codesets = []CodesetRow{}

	data, err := MarshalCanonical((&Snapshot{ScenarioName: "x", Result: result}).toCanonicalMap())
	require.NoError(t, err)
	assert.Equal(t, `{"codesets":[],"scenario_name":"x","warnings":[]}`, string(data))
}

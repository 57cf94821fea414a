package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ruleCase struct {
	name string
	expr string
	want []string
}

func runCases(t *testing.T, rule string, cases []ruleCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := messages(runRule(t, rule, mustParse(t, tc.expr)))
			if len(tc.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnusedConcepts(t *testing.T) {
	runCases(t, "UnusedConcepts", []ruleCase{
		{
			name: "one unreferenced set",
			expr: `{"ConceptSets": [{"id": 0, "name": "A"}, {"id": 1, "name": "B"}],
			  "PrimaryCriteria": {"CriteriaList": [{"ConditionOccurrence": {"CodesetId": 0}}]}}`,
			want: []string{`Concept Set "B" is not used`},
		},
		{
			name: "referenced from exit strategy and nested criteria",
			expr: `{"ConceptSets": [{"id": 0, "name": "A"}, {"id": 1, "name": "B"}, {"id": 2, "name": "C"}],
			  "PrimaryCriteria": {"CriteriaList": [{"VisitOccurrence": {"CorrelatedCriteria": {"Type": "ALL",
			    "CriteriaList": [{"Criteria": {"Observation": {"CodesetId": 0}}}]}}}]},
			  "CensoringCriteria": [{"ConditionOccurrence": {"ConditionSourceConcept": 2}}],
			  "EndStrategy": {"CustomEra": {"DrugCodesetId": 1, "GapDays": 30}}}`,
		},
		{
			name: "referenced by visit detail selection",
			expr: `{"ConceptSets": [{"id": 4, "name": "Inpatient"}],
			  "PrimaryCriteria": {"CriteriaList": [{"VisitDetail": {"VisitDetailTypeCS": {"CodesetId": 4}}}]}}`,
		},
	})

	warnings := runRule(t, "UnusedConcepts", mustParse(t, `{"ConceptSets": [{"id": 3, "name": "X"}]}`))
	require.Len(t, warnings, 1)
	assert.Equal(t, TypeConceptSet, warnings[0].Type)
	assert.Equal(t, "X", warnings[0].ConceptSet.Name)
}

func TestExitCriteria(t *testing.T) {
	runCases(t, "ExitCriteria", []ruleCase{
		{
			name: "custom era without drug set",
			expr: `{"EndStrategy": {"CustomEra": {"GapDays": 0}}}`,
			want: []string{"Drug concept set must be selected at Exit Criteria."},
		},
		{name: "custom era with drug set", expr: `{"EndStrategy": {"CustomEra": {"DrugCodesetId": 0}}}`},
		{name: "no end strategy", expr: `{}`},
	})
}

func TestExitCriteriaDaysOffset(t *testing.T) {
	runCases(t, "ExitCriteriaDaysOffset", []ruleCase{
		{
			name: "zero offset from start",
			expr: `{"EndStrategy": {"DateOffset": {"DateField": "StartDate", "Offset": 0}}}`,
			want: []string{"Cohort Exit criteria: Days offset from start date should be greater than 0"},
		},
		{name: "positive offset", expr: `{"EndStrategy": {"DateOffset": {"DateField": "StartDate", "Offset": 7}}}`},
		{name: "zero offset from end", expr: `{"EndStrategy": {"DateOffset": {"DateField": "EndDate", "Offset": 0}}}`},
	})
}

func TestRange(t *testing.T) {
	primary := func(criteria string) string {
		return `{"PrimaryCriteria": {"CriteriaList": [` + criteria + `]}}`
	}
	runCases(t, "Range", []ruleCase{
		{
			name: "between without extent",
			expr: primary(`{"ConditionOccurrence": {"Age": {"Op": "bt", "Value": 10}}}`),
			want: []string{"Primary criteria in the condition occurrence has empty age end value"},
		},
		{
			name: "between reversed",
			expr: primary(`{"ConditionOccurrence": {"Age": {"Op": "bt", "Value": 30, "Extent": 10}}}`),
			want: []string{"Primary criteria in the condition occurrence has start value greater than end in age"},
		},
		{
			name: "negative value",
			expr: primary(`{"ConditionOccurrence": {"Age": {"Op": "gt", "Value": -1}}}`),
			want: []string{"Primary criteria in the condition occurrence start value is negative at age"},
		},
		{
			name: "missing value",
			expr: primary(`{"ConditionOccurrence": {"Age": {"Op": "gt"}}}`),
			want: []string{"Primary criteria in the condition occurrence has empty age start value"},
		},
		{
			name: "invalid date",
			expr: primary(`{"ConditionOccurrence": {"OccurrenceStartDate": {"Op": "gt", "Value": "2020-13-01"}}}`),
			want: []string{"Primary criteria in the condition occurrence has invalid date value at occurrence start date"},
		},
		{
			name: "reversed dates",
			expr: primary(`{"ConditionOccurrence": {"OccurrenceStartDate": {"Op": "bt", "Value": "2021-01-01", "Extent": "2020-01-01"}}}`),
			want: []string{"Primary criteria in the condition occurrence has start value greater than end in occurrence start date"},
		},
		{
			name: "valid ranges",
			expr: primary(`{"ConditionOccurrence": {"Age": {"Op": "bt", "Value": 18, "Extent": 65},
			  "OccurrenceStartDate": {"Op": "bt", "Value": "2020-01-01", "Extent": "2021-01-01"}}}`),
		},
		{
			name: "censor window",
			expr: `{"CensorWindow": {"StartDate": "2021-01-01", "EndDate": "2020-01-01"}}`,
			want: []string{"Primary criteria in the cohort has start value greater than end in censor window"},
		},
		{
			name: "negative observation window",
			expr: `{"PrimaryCriteria": {"CriteriaList": [], "ObservationWindow": {"PriorDays": -1, "PostDays": 0}}}`,
			want: []string{`Time window in criteria "observation window" has negative value -1 at prior days`},
		},
		{
			name: "negative inclusion window",
			expr: `{"InclusionRules": [{"name": "r1", "expression": {"Type": "ALL", "CriteriaList": [
			  {"Criteria": {"DrugExposure": {"CodesetId": 0}}, "StartWindow": {"Start": {"Days": -5, "Coeff": -1}}}]}}]}`,
			want: []string{`Time window in criteria "r1" has negative value -5 at start`},
		},
		{
			name: "demographic in inclusion rule",
			expr: `{"InclusionRules": [{"name": "r1", "expression": {"Type": "ALL",
			  "DemographicCriteriaList": [{"Age": {"Op": "bt", "Value": 5}}]}}]}`,
			want: []string{`Inclusion criteria "r1" in the demographic has empty age end value`},
		},
		{
			name: "nested correlated criteria keep the outer group",
			expr: `{"CensoringCriteria": [{"VisitOccurrence": {"CorrelatedCriteria": {"Type": "ALL", "CriteriaList": [
			  {"Criteria": {"Measurement": {"ValueAsNumber": {"Op": "bt", "Value": 9, "Extent": 1}}}}]}}}]}`,
			want: []string{"Censoring events in the measurement has start value greater than end in value as number"},
		},
	})
}

func TestConcept(t *testing.T) {
	runCases(t, "Concept", []ruleCase{
		{
			name: "empty concept arrays",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"ConditionOccurrence": {"CodesetId": 0, "ConditionType": [], "VisitType": []}}]}}`,
			want: []string{
				"Primary criteria in the condition occurrence has empty condition type value",
				"Primary criteria in the condition occurrence has empty visit value",
			},
		},
		{
			name: "absent arrays",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"ConditionOccurrence": {"CodesetId": 0}}]}}`,
		},
		{
			name: "demographic",
			expr: `{"AdditionalCriteria": {"Type": "ALL", "DemographicCriteriaList": [{"Race": []}]}}`,
			want: []string{"Additional criteria in the demographic has empty race value"},
		},
	})
}

func TestConceptSetSelection(t *testing.T) {
	runCases(t, "ConceptSetSelection", []ruleCase{
		{
			name: "selection without codeset",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"VisitDetail": {"CodesetId": 0, "GenderCS": {"IsExclusion": true}}}]}}`,
			want: []string{"Primary criteria in the visit detail has empty gender value"},
		},
		{
			name: "selection with codeset",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"VisitDetail": {"GenderCS": {"CodesetId": 2}}}]}}`,
		},
	})
}

func TestEmptyDemographic(t *testing.T) {
	expr := `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "DemographicCriteriaList": [{}, {"Gender": [{"CONCEPT_ID": 8507}]}]}}]}`
	want := `Inclusion criteria "r" in the demographic does not have attributes`

	attribute := runRule(t, "Attribute", mustParse(t, expr))
	require.Len(t, attribute, 1)
	assert.Equal(t, want, attribute[0].Message)
	assert.Equal(t, SeverityCritical, attribute[0].Severity)

	demographic := runRule(t, "EmptyDemographic", mustParse(t, expr))
	require.Len(t, demographic, 1)
	assert.Equal(t, want, demographic[0].Message)
	assert.Equal(t, SeverityWarning, demographic[0].Severity)
}

func TestText(t *testing.T) {
	runCases(t, "Text", []ruleCase{
		{
			name: "filter without text",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"DrugExposure": {"CodesetId": 0, "StopReason": {"Op": "contains"}}}]}}`,
			want: []string{"Primary criteria in the drug exposure has empty stop reason value"},
		},
		{
			name: "filter with text",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"DrugExposure": {"CodesetId": 0, "StopReason": {"Op": "contains", "Text": "x"}}}]}}`,
		},
	})
}

func TestIncompleteRule(t *testing.T) {
	runCases(t, "IncompleteRule", []ruleCase{{
		name: "empty and missing expressions",
		expr: `{"InclusionRules": [
		  {"name": "empty", "expression": {"Type": "ALL", "CriteriaList": [], "DemographicCriteriaList": [], "Groups": []}},
		  {"name": "missing"},
		  {"name": "ok", "expression": {"Type": "ALL", "DemographicCriteriaList": [{"Age": {"Op": "gt", "Value": 18}}]}}
		]}`,
		want: []string{
			"At least one criteria in inclusion rule empty should be selected",
			"At least one criteria in inclusion rule missing should be selected",
		},
	}})
}

func TestInitialEvent(t *testing.T) {
	runCases(t, "InitialEvent", []ruleCase{
		{name: "no primary criteria", expr: `{}`, want: []string{"No initial event criteria specified"}},
		{name: "empty list", expr: `{"PrimaryCriteria": {"CriteriaList": []}}`, want: []string{"No initial event criteria specified"}},
		{name: "present", expr: `{"PrimaryCriteria": {"CriteriaList": [{"Death": {}}]}}`},
	})
}

func TestNoExitCriteria(t *testing.T) {
	const want = `"all events" are selected and cohort exit criteria has not been specified`
	runCases(t, "NoExitCriteria", []ruleCase{
		{
			name: "all events without exit",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"Death": {}}], "PrimaryCriteriaLimit": {"Type": "All"}},
			  "ExpressionLimit": {"Type": "All"}}`,
			want: []string{want},
		},
		{
			name: "exit strategy present",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"Death": {}}], "PrimaryCriteriaLimit": {"Type": "All"}},
			  "ExpressionLimit": {"Type": "All"}, "EndStrategy": {"DateOffset": {"DateField": "EndDate", "Offset": 1}}}`,
		},
		{
			name: "earliest event",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"Death": {}}], "PrimaryCriteriaLimit": {"Type": "First"}},
			  "ExpressionLimit": {"Type": "All"}}`,
		},
		{
			name: "additional criteria limited",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"Death": {}}], "PrimaryCriteriaLimit": {"Type": "All"}},
			  "AdditionalCriteria": {"Type": "ALL", "CriteriaList": []},
			  "QualifiedLimit": {"Type": "First"}, "ExpressionLimit": {"Type": "All"}}`,
		},
		{
			name: "additional criteria with all events",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"Death": {}}], "PrimaryCriteriaLimit": {"Type": "All"}},
			  "AdditionalCriteria": {"Type": "ALL", "CriteriaList": []},
			  "QualifiedLimit": {"Type": "All"}, "ExpressionLimit": {"Type": "All"}}`,
			want: []string{want},
		},
	})
}

func TestConceptSetCriteria(t *testing.T) {
	runCases(t, "ConceptSetCriteria", []ruleCase{
		{
			name: "no codeset",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"ConditionOccurrence": {}}]}}`,
			want: []string{"No concept set specified as part of a criteria at initial event in condition occurrence criteria"},
		},
		{
			name: "source concept counts",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"ConditionOccurrence": {"ConditionSourceConcept": 3}}]}}`,
		},
		{
			name: "kinds without codeset are skipped",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"ObservationPeriod": {}}, {"PayerPlanPeriod": {}}]}}`,
		},
		{
			name: "inclusion rule",
			expr: `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [{"Criteria": {"Death": {}}}]}}]}`,
			want: []string{"No concept set specified as part of a criteria at inclusion rule r in death criteria"},
		},
	})
}

func TestDrugEra(t *testing.T) {
	runCases(t, "DrugEra", []ruleCase{
		{
			name: "open windows",
			expr: `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [{"Criteria": {"DrugEra": {"CodesetId": 1}}}]}}]}`,
			want: []string{"Using drug era at inclusion rule r criteria on medical claims (e.g., biologics) may not be accurate due to missing days supply information"},
		},
		{
			name: "bounded start window",
			expr: `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
			  {"Criteria": {"DrugEra": {"CodesetId": 1}}, "StartWindow": {"Start": {"Days": 30, "Coeff": -1}}}]}}]}`,
		},
	})
}

func TestOccurrence(t *testing.T) {
	runCases(t, "Occurrence", []ruleCase{
		{
			name: "at least zero",
			expr: `{"AdditionalCriteria": {"Type": "ALL", "CriteriaList": [{"Criteria": {"Death": {}}, "Occurrence": {"Type": 1, "Count": 0}}]}}`,
			want: []string{"'at least 0' occurrence is not a real constraint, probably meant 'exactly 0' or 'at least 1'"},
		},
		{
			name: "exactly zero",
			expr: `{"AdditionalCriteria": {"Type": "ALL", "CriteriaList": [{"Criteria": {"Death": {}}, "Occurrence": {"Type": 0, "Count": 0}}]}}`,
		},
	})
}

func TestDuplicatesCriteria(t *testing.T) {
	runCases(t, "DuplicatesCriteria", []ruleCase{
		{
			name: "one warning per duplicate group",
			expr: `{"PrimaryCriteria": {"CriteriaList": [
			    {"ConditionOccurrence": {"CodesetId": 0}}, {"ConditionOccurrence": {"CodesetId": 0}}, {"DrugExposure": {"CodesetId": 0}}]},
			  "InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
			    {"Criteria": {"ConditionOccurrence": {"CodesetId": 0}}}]}}]}`,
			want: []string{"Probably condition occurrence criteria in initial event duplicates " +
				"condition occurrence criteria in initial event, condition occurrence criteria in inclusion rule r"},
		},
		{
			name: "different codesets",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"ConditionOccurrence": {"CodesetId": 0}}, {"ConditionOccurrence": {"CodesetId": 1}}]}}`,
		},
		{
			name: "different source concepts",
			expr: `{"PrimaryCriteria": {"CriteriaList": [
			  {"ConditionOccurrence": {"CodesetId": 0, "ConditionSourceConcept": 1}}, {"ConditionOccurrence": {"CodesetId": 0}}]}}`,
		},
		{
			name: "observation periods compare ranges",
			expr: `{"PrimaryCriteria": {"CriteriaList": [
			  {"ObservationPeriod": {"PeriodLength": {"Op": "gt", "Value": 365}}},
			  {"ObservationPeriod": {"PeriodLength": {"Op": "gt", "Value": 365}}}]}}`,
			want: []string{"Probably observation period criteria in initial event duplicates observation period criteria in initial event"},
		},
	})
}

func TestDuplicatesConceptSet(t *testing.T) {
	item := `{"items": [{"concept": {"CONCEPT_ID": 1, "CONCEPT_CODE": "E11", "VOCABULARY_ID": "ICD10CM"}},
	  {"concept": {"CONCEPT_ID": 2, "CONCEPT_CODE": "E10", "VOCABULARY_ID": "ICD10CM"}, "includeDescendants": true}]}`
	expr := mustParse(t, `{"ConceptSets": [
	  {"id": 0, "name": "A", "expression": `+item+`},
	  {"id": 1, "name": "B", "expression": `+item+`},
	  {"id": 2, "name": "C", "expression": `+item+`},
	  {"id": 3, "name": "D", "expression": {"items": [
	    {"concept": {"CONCEPT_ID": 1, "CONCEPT_CODE": "E11", "VOCABULARY_ID": "ICD10CM"}},
	    {"concept": {"CONCEPT_ID": 3, "CONCEPT_CODE": "E13", "VOCABULARY_ID": "ICD10CM"}}]}}
	]}`)

	warnings := runRule(t, "DuplicatesConceptSet", expr)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Concept set A contains the same concepts like B, C", warnings[0].Message)
	assert.Equal(t, TypeConceptSet, warnings[0].Type)
	assert.Equal(t, 0, warnings[0].ConceptSet.ID)
}

func TestEmptyConceptSet(t *testing.T) {
	runCases(t, "EmptyConceptSet", []ruleCase{{
		name: "no items",
		expr: `{"ConceptSets": [{"id": 0, "name": "Empty"}, {"id": 1, "name": "Full", "expression": {"items": [{"concept": {"CONCEPT_ID": 1}}]}}]}`,
		want: []string{"Concept set Empty contains no concepts"},
	}})
}

func TestDrugDomain(t *testing.T) {
	const sets = `"ConceptSets": [
	  {"id": 0, "name": "Statins", "expression": {"items": [{"concept": {"CONCEPT_ID": 1, "DOMAIN_ID": "Drug"}}]}},
	  {"id": 1, "name": "Insulin", "expression": {"items": [{"concept": {"CONCEPT_ID": 2, "DOMAIN_ID": "drug"}}]}},
	  {"id": 2, "name": "Diabetes", "expression": {"items": [{"concept": {"CONCEPT_ID": 3, "DOMAIN_ID": "Condition"}}]}}
	]`
	runCases(t, "DrugDomain", []ruleCase{
		{
			name: "drug set not used for exit",
			expr: `{` + sets + `, "PrimaryCriteria": {"CriteriaList": [{"DrugExposure": {"CodesetId": 0}}]}}`,
			want: []string{"Concept set Statins used in initial event and not used for cohort exit criteria"},
		},
		{
			name: "several drug sets",
			expr: `{` + sets + `, "PrimaryCriteria": {"CriteriaList": [{"DrugExposure": {"CodesetId": 0}}, {"DrugEra": {"CodesetId": 1}}]}}`,
			want: []string{"Concept sets Statins, Insulin used in initial event and not used for cohort exit criteria"},
		},
		{
			name: "drug set drives exit",
			expr: `{` + sets + `, "PrimaryCriteria": {"CriteriaList": [{"DrugExposure": {"CodesetId": 0}}]},
			  "EndStrategy": {"CustomEra": {"DrugCodesetId": 0}}}`,
		},
		{
			name: "non-drug set under drug criteria",
			expr: `{` + sets + `, "InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
			  {"Criteria": {"DrugExposure": {"CodesetId": 2}}}]}}]}`,
			want: []string{"Concept set Diabetes referenced by drug exposure criteria in inclusion rule r is not drawn from the Drug domain"},
		},
	})
}

func TestEventsProgression(t *testing.T) {
	runCases(t, "EventsProgression", []ruleCase{
		{
			name: "earliest then all",
			expr: `{"PrimaryCriteria": {"CriteriaList": [], "PrimaryCriteriaLimit": {"Type": "First"}}, "QualifiedLimit": {"Type": "All"}}`,
			want: []string{"Cohort of initial events limit may not have intended effect since it breaks all/latest/earliest progression"},
		},
		{
			name: "qualifying widens",
			expr: `{"PrimaryCriteria": {"CriteriaList": [], "PrimaryCriteriaLimit": {"Type": "All"}},
			  "AdditionalCriteria": {"Type": "ALL"}, "QualifiedLimit": {"Type": "Last"}, "ExpressionLimit": {"Type": "All"}}`,
			want: []string{"Qualifying cohort limit may not have intended effect since it breaks all/latest/earliest progression"},
		},
		{
			name: "consistent",
			expr: `{"PrimaryCriteria": {"CriteriaList": [], "PrimaryCriteriaLimit": {"Type": "All"}},
			  "AdditionalCriteria": {"Type": "ALL"}, "QualifiedLimit": {"Type": "All"}, "ExpressionLimit": {"Type": "First"}}`,
		},
		{
			name: "exactly zero occurrence",
			expr: `{"InclusionRules": [{"name": "", "expression": {"Type": "ALL", "CriteriaList": [
			  {"Criteria": {"Death": {}}, "Occurrence": {"Type": 0, "Count": 0}}]}}]}`,
			want: []string{"Criteria in 'unnamed rule' has an occurrence requirement of exactly 0, which may lead to 0 records"},
		},
	})
}

func TestTimeWindow(t *testing.T) {
	rule := func(priorDays string) string {
		return `{"PrimaryCriteria": {"CriteriaList": [], "ObservationWindow": {"PriorDays": ` + priorDays + `, "PostDays": 0}},
		  "InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
		    {"Criteria": {"DrugExposure": {"CodesetId": 0}},
		     "StartWindow": {"Start": {"Days": 365, "Coeff": -1}, "End": {"Days": 0, "Coeff": 1}}}]}}]}`
	}
	runCases(t, "TimeWindow", []ruleCase{
		{
			name: "window longer than observation",
			expr: rule("30"),
			want: []string{"inclusion rule r drug exposure criteria have time window range that is longer than required time for initial event"},
		},
		{name: "window covered", expr: rule("365")},
	})
}

func TestTimePattern(t *testing.T) {
	const before = `"StartWindow": {"Start": {"Days": 30, "Coeff": -1}, "End": {"Days": 0, "Coeff": 1}}`
	expr := `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
	  {"Criteria": {"ConditionOccurrence": {"CodesetId": 0}}, "StartWindow": {"Start": {"Days": 10, "Coeff": 1}, "End": {"Days": 20, "Coeff": 1}}},
	  {"Criteria": {"DrugExposure": {"CodesetId": 1}}, ` + before + `},
	  {"Criteria": {"Measurement": {"CodesetId": 2}}, ` + before + `}
	]}}]}`

	runCases(t, "TimePattern", []ruleCase{{
		name: "minority and reversed windows",
		expr: expr,
		want: []string{
			"condition occurrence criteria at inclusion rule r time window differs from most common pattern prior " +
				"'30 days before and 0 days after', shouldn't that be a valid pattern?",
			"condition occurrence criteria at inclusion rule r and drug exposure criteria at inclusion rule r " +
				"have potentially contradictory time windows: the first happens after the second",
			"condition occurrence criteria at inclusion rule r and measurement criteria at inclusion rule r " +
				"have potentially contradictory time windows: the first happens after the second",
		},
	}})
}

func TestCriteriaContradictions(t *testing.T) {
	rule := func(first, second string) string {
		return `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
		  {"Criteria": {"ConditionOccurrence": {"CodesetId": 0}}, "Occurrence": ` + first + `},
		  {"Criteria": {"ConditionOccurrence": {"CodesetId": 0}}, "Occurrence": ` + second + `}]}}]}`
	}
	runCases(t, "CriteriaContradictions", []ruleCase{
		{
			name: "exactly 0 and at least 1",
			expr: rule(`{"Type": 0, "Count": 0}`, `{"Type": 1, "Count": 1}`),
			want: []string{"inclusion rule r condition occurrence might be contradicted with " +
				"inclusion rule r condition occurrence and possibly will lead to 0 records"},
		},
		{name: "two exactly 0", expr: rule(`{"Type": 0, "Count": 0}`, `{"Type": 0, "Count": 0}`)},
		{name: "at most 2 and at least 1", expr: rule(`{"Type": 2, "Count": 2}`, `{"Type": 1, "Count": 1}`)},
		{
			name: "at most 1 and exactly 3",
			expr: rule(`{"Type": 2, "Count": 1}`, `{"Type": 0, "Count": 3}`),
			want: []string{"inclusion rule r condition occurrence might be contradicted with " +
				"inclusion rule r condition occurrence and possibly will lead to 0 records"},
		},
	})
}

func TestDeathTimeWindow(t *testing.T) {
	rule := func(end string) string {
		return `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
		  {"Criteria": {"Death": {}}, "StartWindow": {"Start": {"Days": 30, "Coeff": -1}, "End": ` + end + `}}]}}]}`
	}
	runCases(t, "DeathTimeWindow", []ruleCase{
		{
			name: "window ends at index",
			expr: rule(`{"Days": 0, "Coeff": 1}`),
			want: []string{"inclusion rule r death attempts to identify death event prior to index event. Events post-death may not be available"},
		},
		{name: "window spans index", expr: rule(`{"Days": 30, "Coeff": 1}`)},
		{
			name: "nested under initial event",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"VisitOccurrence": {"CorrelatedCriteria": {"Type": "ALL", "CriteriaList": [
			  {"Criteria": {"Death": {}}, "StartWindow": {"Start": {"Coeff": -1}, "End": {"Days": 1, "Coeff": -1}}}]}}}]}}`,
			want: []string{},
		},
	})
}

func TestFirstTimeInHistory(t *testing.T) {
	rule := func(criteria string) string {
		return `{"InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [
		  {"Criteria": ` + criteria + `, "StartWindow": {"Start": {"Days": 30, "Coeff": -1}, "End": {"Days": 0, "Coeff": 1}}}]}}]}`
	}
	runCases(t, "FirstTimeInHistory", []ruleCase{
		{
			name: "first not set",
			expr: rule(`{"ConditionOccurrence": {"CodesetId": 0}}`),
			want: []string{"condition occurrence at inclusion rule r didn't specify that it must be first time in patient's history"},
		},
		{name: "first set", expr: rule(`{"ConditionOccurrence": {"CodesetId": 0, "First": true}}`)},
		{name: "death has no first", expr: rule(`{"Death": {"CodesetId": 0}}`)},
	})
}

func TestDomainType(t *testing.T) {
	runCases(t, "DomainType", []ruleCase{
		{
			name: "aggregated over groups",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"ConditionOccurrence": {"CodesetId": 0}},
			    {"DrugExposure": {"CodesetId": 1, "DrugType": [{"CONCEPT_ID": 38000177}]}}]},
			  "InclusionRules": [{"name": "r", "expression": {"Type": "ALL", "CriteriaList": [{"Criteria": {"Death": {"CodesetId": 1}}}]}}]}`,
			want: []string{"It's not specified what type of records to look for in condition occurrence at initial event, death at inclusion rule r"},
		},
		{
			name: "kinds without type filter",
			expr: `{"PrimaryCriteria": {"CriteriaList": [{"DrugEra": {"CodesetId": 1}}, {"ObservationPeriod": {}}]}}`,
		},
	})
}

// Package harness runs conformance scenarios for cohort expressions.
//
// A scenario checks one cohort expression with the rule catalog and,
// optionally, builds its #Codesets SQL, translates it to SQLite and runs it
// against an in-memory vocabulary. Assertions then verify the findings and
// the rows the SQL produced.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	expression: expressions/cohort.json
//	disabled_rules: [TimePattern]
//	vocabulary: sql/vocabulary.sql
//	codesets: true
//	session_id: s1
//	assertions:
//	  - type: warning_contains
//	    message: "No initial event criteria specified"
//	    severity: CRITICAL
//	  - type: final_state
//	    table: Codesets
//	    where: { codeset_id: 0, concept_id: 201826 }
//
// Paths are relative to the scenario file. Expressions may be JSON or YAML.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - warning_contains: A warning with the message (and severity, if given) was reported
//   - warning_order: Messages appear in the given order
//   - warning_count: Exactly N warnings were reported, optionally of one severity
//   - row_count: A table holds exactly N rows matching where
//   - final_state: Exactly one row matches where, with the expected values
//
// # Deterministic Testing
//
// Every scenario runs with a fixed session id and a fresh in-memory SQLite
// database, so the warnings and the #Codesets rows are identical across
// runs and can be compared against golden snapshots.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/diabetes_codesets.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness

package harness

import "github.com/roach88/cohortcheck/internal/check"

// CodesetRow is one row of the #Codesets table.
type CodesetRow struct {
	CodesetID int64 `json:"codeset_id"`
	ConceptID int64 `json:"concept_id"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if no rule failed and all assertions hold.
	Pass bool `json:"pass"`

	// Warnings are the checker findings in rule order.
	Warnings []check.Warning `json:"warnings"`

	// RuleErrors holds one message per failed rule.
	RuleErrors []string `json:"rule_errors,omitempty"`

	// Statements are the SQLite statements executed for #Codesets.
	Statements []string `json:"statements,omitempty"`

	// Codesets are the #Codesets rows ordered by codeset and concept id.
	Codesets []CodesetRow `json:"codesets,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Warnings: []check.Warning{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

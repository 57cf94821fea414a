package check

import (
	"errors"
	"fmt"
)

// RuleError reports a rule that failed while checking an expression.
// Warnings of the failed rule are discarded; other rules are unaffected.
type RuleError struct {
	// Rule is the registered rule name.
	Rule string

	// Cause is the recovered panic value as an error.
	Cause error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed: %v", e.Rule, e.Cause)
}

// Unwrap returns the cause.
func (e *RuleError) Unwrap() error {
	return e.Cause
}

// IsRuleError returns true if err contains a RuleError for the named rule.
// An empty name matches any rule. Uses errors.As to handle wrapped and
// joined errors.
func IsRuleError(err error, rule string) bool {
	var re *RuleError
	if !errors.As(err, &re) {
		return false
	}
	if rule == "" || re.Rule == rule {
		return true
	}
	// errors.As stops at the first match; look at the rest of a join.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if IsRuleError(e, rule) {
				return true
			}
		}
	}
	return false
}

// ErrNilExpression is returned when Check is called without an expression.
var ErrNilExpression = errors.New("check: nil cohort expression")

package check

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/cohortcheck/internal/cohort"
)

// rule is one registered check. run reports through r and must not retain
// the expression.
type rule struct {
	name     string
	severity Severity
	run      func(expr *cohort.CohortExpression, r *reporter)
}

// registry is the ordered rule list. Output order follows this order.
var registry = []rule{
	{"UnusedConcepts", SeverityWarning, checkUnusedConcepts},
	{"ExitCriteria", SeverityCritical, checkExitCriteria},
	{"ExitCriteriaDaysOffset", SeverityWarning, checkExitCriteriaDaysOffset},
	{"Range", SeverityCritical, checkRange},
	{"Concept", SeverityCritical, checkConcept},
	{"ConceptSetSelection", SeverityCritical, checkConceptSetSelection},
	{"Attribute", SeverityCritical, checkAttribute},
	{"Text", SeverityWarning, checkText},
	{"IncompleteRule", SeverityCritical, checkIncompleteRule},
	{"InitialEvent", SeverityCritical, checkInitialEvent},
	{"NoExitCriteria", SeverityWarning, checkNoExitCriteria},
	{"ConceptSetCriteria", SeverityWarning, checkConceptSetCriteria},
	{"DrugEra", SeverityInfo, checkDrugEra},
	{"Occurrence", SeverityWarning, checkOccurrence},
	{"DuplicatesCriteria", SeverityWarning, checkDuplicatesCriteria},
	{"DuplicatesConceptSet", SeverityWarning, checkDuplicatesConceptSet},
	{"DrugDomain", SeverityInfo, checkDrugDomain},
	{"EmptyConceptSet", SeverityCritical, checkEmptyConceptSet},
	{"EventsProgression", SeverityWarning, checkEventsProgression},
	{"TimeWindow", SeverityInfo, checkTimeWindow},
	{"TimePattern", SeverityInfo, checkTimePattern},
	{"DomainType", SeverityInfo, checkDomainType},
	{"CriteriaContradictions", SeverityWarning, checkCriteriaContradictions},
	{"DeathTimeWindow", SeverityWarning, checkDeathTimeWindow},
	{"EmptyDemographic", SeverityWarning, checkEmptyDemographic},
	{"FirstTimeInHistory", SeverityInfo, checkFirstTimeInHistory},
}

// RuleInfo describes a registered rule.
type RuleInfo struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
}

// Rules lists the registered rules in execution order.
func Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(registry))
	for _, r := range registry {
		out = append(out, RuleInfo{Name: r.name, Severity: r.severity})
	}
	return out
}

// IsRule reports whether name is a registered rule.
func IsRule(name string) bool {
	for _, r := range registry {
		if r.name == name {
			return true
		}
	}
	return false
}

// Checker runs the registered rules over cohort expressions.
// A Checker is immutable after New and safe for concurrent use.
type Checker struct {
	logger *slog.Logger
	rules  []rule
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger used for rule failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDisabled skips the named rules. Unknown names are ignored.
func WithDisabled(names ...string) Option {
	return func(c *Checker) {
		skip := make(map[string]bool, len(names))
		for _, n := range names {
			skip[n] = true
		}
		kept := c.rules[:0:0]
		for _, r := range c.rules {
			if !skip[r.name] {
				kept = append(kept, r)
			}
		}
		c.rules = kept
	}
}

// New creates a Checker running every registered rule.
func New(opts ...Option) *Checker {
	c := &Checker{
		logger: slog.Default(),
		rules:  registry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs every enabled rule over expr and returns the warnings.
//
// A rule that panics contributes a *RuleError to the returned error; the
// warnings of all other rules are still returned. The error is nil when
// every rule ran to completion.
func (c *Checker) Check(expr *cohort.CohortExpression) ([]Warning, error) {
	if expr == nil {
		return nil, ErrNilExpression
	}

	warnings := []Warning{}
	var errs []error
	for _, r := range c.rules {
		found, err := c.runRule(r, expr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		warnings = append(warnings, found...)
	}
	return warnings, errors.Join(errs...)
}

// runRule runs one rule into its own slice so a failure discards only that
// rule's partial output.
func (c *Checker) runRule(r rule, expr *cohort.CohortExpression) (found []Warning, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cause, ok := rec.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", rec)
			}
			err = &RuleError{Rule: r.name, Cause: cause}
			found = nil
			c.logger.Error("rule failed", "rule", r.name, "error", cause)
		}
	}()

	rep := &reporter{severity: r.severity, out: &found}
	r.run(expr, rep)
	return found, nil
}

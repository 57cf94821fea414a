// Package check validates cohort expressions.
//
// A Checker runs an ordered list of independent rules over a
// cohort.CohortExpression. Each rule walks the expression in one of four
// ways and reports findings as Warning values:
//
// Whole-expression rules look at the expression as a single object
// (concept sets, exit strategy, result limits).
//
// Leaf rules visit every criteria reachable from the initial event and the
// inclusion rules, tagged with "initial event" or "inclusion rule <name>".
//
// Correlated rules visit every CorrelatedCriteria node (windows and
// occurrence counts) in inclusion rules, additional criteria and the
// correlated groups nested under initial and censoring events.
//
// Value rules visit every criteria and demographic criteria and inspect
// its attribute values (ranges, concept arrays, text filters).
//
// WARNING SEMANTICS:
//
// Warnings are data. An empty result means the expression is clean. The
// order of warnings is rule registration order, then traversal order
// inside a rule.
//
// Rule failures are isolated: a rule that panics is reported as a
// *RuleError and does not suppress the warnings of other rules.
//
// Checkers never mutate the expression and hold no per-call state, so one
// Checker may be shared across goroutines.
package check

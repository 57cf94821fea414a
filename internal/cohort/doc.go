// Package cohort defines the cohort expression AST and its wire decoding.
//
// A cohort expression is the root of a patient-selection query: primary
// (entry) criteria, optional additional criteria, inclusion rules, an exit
// strategy and censoring criteria. Criteria reference concept sets by id.
//
// This package contains types and decoding only. The checker, the SQL
// renderer and the CLI import cohort; cohort imports nothing internal.
//
// Key constraints:
//   - Criteria is a closed union. Each variant is a struct implementing the
//     sealed Criteria interface; Kind is the discriminant and matches the
//     circe wire name ("ConditionOccurrence", "DrugEra", ...).
//   - On the wire a criteria is a single-key object {"<Kind>": {...}}.
//     DemographicCriteriaList items are the only unwrapped criteria.
//   - Nil and empty slices are distinct: nil means "not specified", an empty
//     concept array means "specified with no values".
//   - The AST is immutable after Parse. Nothing downstream mutates it.
package cohort

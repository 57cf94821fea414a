package check

import "github.com/roach88/cohortcheck/internal/cohort"

const (
	warnDrugCodesetMissing = "Drug concept set must be selected at Exit Criteria."
	warnZeroDaysOffset     = "Cohort Exit criteria: Days offset from start date should be greater than 0"
	warnIncompleteRule     = "At least one criteria in inclusion rule %s should be selected"
	warnNoInitialEvent     = "No initial event criteria specified"
	warnNoExitCriteria     = "\"all events\" are selected and cohort exit criteria has not been specified"
	warnBrokenProgression  = "%s limit may not have intended effect since it breaks all/latest/earliest progression"
	warnExactlyZero        = "Criteria in '%s' has an occurrence requirement of exactly 0, which may lead to 0 records"
)

func checkExitCriteria(expr *cohort.CohortExpression, r *reporter) {
	if era, ok := expr.EndStrategy.(*cohort.CustomEraStrategy); ok && era.DrugCodesetID == nil {
		r.add(warnDrugCodesetMissing)
	}
}

func checkExitCriteriaDaysOffset(expr *cohort.CohortExpression, r *reporter) {
	s, ok := expr.EndStrategy.(*cohort.DateOffsetStrategy)
	if ok && s.DateField == cohort.DateFieldStart && s.Offset == 0 {
		r.add(warnZeroDaysOffset)
	}
}

func checkIncompleteRule(expr *cohort.CohortExpression, r *reporter) {
	for _, rule := range expr.InclusionRules {
		if rule != nil && rule.Expression.IsEmpty() {
			r.add(warnIncompleteRule, rule.Name)
		}
	}
}

func checkInitialEvent(expr *cohort.CohortExpression, r *reporter) {
	if expr.PrimaryCriteria == nil || len(expr.PrimaryCriteria.CriteriaList) == 0 {
		r.add(warnNoInitialEvent)
	}
}

func checkNoExitCriteria(expr *cohort.CohortExpression, r *reporter) {
	if expr.PrimaryCriteria == nil || !expr.PrimaryLimit().IsAll() {
		return
	}
	if expr.EndStrategy != nil || !expr.ExpressionLimit.IsAll() {
		return
	}
	if expr.AdditionalCriteria == nil || expr.QualifiedLimit.IsAll() {
		r.add(warnNoExitCriteria)
	}
}

// limitWeight orders limits by how many events they keep: earliest or none,
// then latest, then all.
func limitWeight(l *cohort.ResultLimit) int {
	switch l.TypeOf() {
	case cohort.LimitLast:
		return 1
	case cohort.LimitAll:
		return 2
	default:
		return 0
	}
}

func checkEventsProgression(expr *cohort.CohortExpression, r *reporter) {
	initial := limitWeight(expr.PrimaryLimit())
	cohortInitial := limitWeight(expr.QualifiedLimit)
	qualifying := 0
	if expr.AdditionalCriteria != nil {
		qualifying = limitWeight(expr.ExpressionLimit)
	}

	if initial < cohortInitial {
		r.add(warnBrokenProgression, "Cohort of initial events")
	}
	if cohortInitial < qualifying || initial < qualifying {
		r.add(warnBrokenProgression, "Qualifying cohort")
	}

	for _, rule := range expr.InclusionRules {
		if rule == nil || rule.Expression == nil {
			continue
		}
		name := rule.Name
		if name == "" {
			name = "unnamed rule"
		}
		for _, cc := range rule.Expression.CriteriaList {
			if cc != nil && cc.Occurrence != nil &&
				cc.Occurrence.Type == cohort.OccurrenceExactly && cc.Occurrence.Count == 0 {
				r.add(warnExactlyZero, name)
			}
		}
	}
}

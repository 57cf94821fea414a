package check

import (
	"fmt"

	"github.com/roach88/cohortcheck/internal/cohort"
)

// Group names used by the leaf and correlated traversals.
const (
	groupInitialEvent   = "initial event"
	groupInclusionRule  = "inclusion rule "
	groupAdditionalRule = "additional rule"
	groupCensoringEvent = "censoring event"
)

// Group names used by the value traversal.
const (
	valuePrimary    = "Primary criteria"
	valueAdditional = "Additional criteria"
	valueInclusion  = "Inclusion criteria "
	valueCensoring  = "Censoring events"
)

func inclusionGroup(rule *cohort.InclusionRule) string {
	return groupInclusionRule + rule.Name
}

// walkLeaves visits every criteria of the initial event and the inclusion
// rules, then every criteria nested below them through correlated groups.
func walkLeaves(expr *cohort.CohortExpression, visit func(c cohort.Criteria, group string)) {
	if expr.PrimaryCriteria != nil {
		for _, c := range expr.PrimaryCriteria.CriteriaList {
			leaf(c, groupInitialEvent, visit)
		}
	}
	for _, rule := range expr.InclusionRules {
		if rule == nil {
			continue
		}
		leafGroup(rule.Expression, inclusionGroup(rule), visit)
	}
}

func leaf(c cohort.Criteria, group string, visit func(cohort.Criteria, string)) {
	if c == nil {
		return
	}
	visit(c, group)
	leafGroup(c.Correlated(), group, visit)
}

func leafGroup(g *cohort.CriteriaGroup, group string, visit func(cohort.Criteria, string)) {
	if g == nil {
		return
	}
	for _, cc := range g.CriteriaList {
		if cc != nil {
			leaf(cc.Criteria, group, visit)
		}
	}
	for _, sub := range g.Groups {
		leafGroup(sub, group, visit)
	}
}

// walkCorrelated visits every CorrelatedCriteria node in inclusion rules,
// additional criteria and the correlated groups nested under initial and
// censoring events.
func walkCorrelated(expr *cohort.CohortExpression, visit func(cc *cohort.CorrelatedCriteria, group string)) {
	for _, rule := range expr.InclusionRules {
		if rule == nil {
			continue
		}
		correlatedGroup(rule.Expression, inclusionGroup(rule), visit)
	}
	correlatedGroup(expr.AdditionalCriteria, groupAdditionalRule, visit)
	if expr.PrimaryCriteria != nil {
		for _, c := range expr.PrimaryCriteria.CriteriaList {
			if c != nil {
				correlatedGroup(c.Correlated(), groupInitialEvent, visit)
			}
		}
	}
	for _, c := range expr.CensoringCriteria {
		if c != nil {
			correlatedGroup(c.Correlated(), groupCensoringEvent, visit)
		}
	}
}

func correlatedGroup(g *cohort.CriteriaGroup, group string, visit func(*cohort.CorrelatedCriteria, string)) {
	if g == nil {
		return
	}
	for _, cc := range g.CriteriaList {
		if cc == nil {
			continue
		}
		visit(cc, group)
		if cc.Criteria != nil {
			correlatedGroup(cc.Criteria.Correlated(), group, visit)
		}
	}
	for _, sub := range g.Groups {
		correlatedGroup(sub, group, visit)
	}
}

// walkValues visits every criteria and demographic criteria of the primary
// criteria, additional criteria, inclusion rules and censoring events.
func walkValues(expr *cohort.CohortExpression, visit func(c cohort.Criteria, group string)) {
	if expr.PrimaryCriteria != nil {
		for _, c := range expr.PrimaryCriteria.CriteriaList {
			value(c, valuePrimary, visit)
		}
	}
	valueGroup(expr.AdditionalCriteria, valueAdditional, visit)
	for _, rule := range expr.InclusionRules {
		if rule == nil {
			continue
		}
		valueGroup(rule.Expression, valueInclusion+`"`+rule.Name+`"`, visit)
	}
	for _, c := range expr.CensoringCriteria {
		value(c, valueCensoring, visit)
	}
}

func value(c cohort.Criteria, group string, visit func(cohort.Criteria, string)) {
	if c == nil {
		return
	}
	visit(c, group)
	valueGroup(c.Correlated(), group, visit)
}

func valueGroup(g *cohort.CriteriaGroup, group string, visit func(cohort.Criteria, string)) {
	if g == nil {
		return
	}
	for _, cc := range g.CriteriaList {
		if cc != nil {
			value(cc.Criteria, group, visit)
		}
	}
	for _, d := range g.DemographicCriteriaList {
		if d != nil {
			visit(d, group)
		}
	}
	for _, sub := range g.Groups {
		valueGroup(sub, group, visit)
	}
}

// criteriaName is the display name of the criteria of cc, or "unknown"
// when the node carries no criteria.
func criteriaName(cc *cohort.CorrelatedCriteria) string {
	if cc.Criteria == nil {
		return "unknown"
	}
	return cc.Criteria.Kind().DisplayName()
}

// panicUnhandled is the default arm of per-kind dispatch. The checker turns
// the panic into a RuleError.
func panicUnhandled(c cohort.Criteria) {
	panic(fmt.Sprintf("check: unhandled criteria type %T", c))
}

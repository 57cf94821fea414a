package check

import (
	"reflect"
	"strings"

	"github.com/roach88/cohortcheck/internal/cohort"
)

const (
	warnNoConceptSet     = "No concept set specified as part of a criteria at %s in %s criteria"
	warnDuplicate        = "Probably %s duplicates %s"
	warnMissingTypeAttrs = "It's not specified what type of records to look for in %s"
)

func checkConceptSetCriteria(expr *cohort.CohortExpression, r *reporter) {
	walkLeaves(expr, func(c cohort.Criteria, group string) {
		switch c.(type) {
		case *cohort.ObservationPeriod, *cohort.PayerPlanPeriod, *cohort.LocationRegion, *cohort.DemographicCriteria:
			return
		}
		if cohort.CodesetID(c) == nil && cohort.SourceConcept(c) == nil {
			r.add(warnNoConceptSet, group, c.Kind().DisplayName())
		}
	})
}

type namedCriteria struct {
	name     string
	criteria cohort.Criteria
}

// checkDuplicatesCriteria reports structurally equal criteria. Each group of
// duplicates is reported once, anchored on its first member.
func checkDuplicatesCriteria(expr *cohort.CohortExpression, r *reporter) {
	var list []namedCriteria
	walkLeaves(expr, func(c cohort.Criteria, group string) {
		list = append(list, namedCriteria{
			name:     c.Kind().DisplayName() + " criteria in " + group,
			criteria: c,
		})
	})

	reported := make([]bool, len(list))
	for i := 0; i < len(list)-1; i++ {
		if reported[i] {
			continue
		}
		var names []string
		for j := i + 1; j < len(list); j++ {
			if sameCriteria(list[i].criteria, list[j].criteria) {
				names = append(names, list[j].name)
				reported[j] = true
			}
		}
		if len(names) > 0 {
			r.add(warnDuplicate, list[i].name, strings.Join(names, ", "))
		}
	}
}

func equalID(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// sameCriteria compares the fields that identify what a criteria selects.
func sameCriteria(a, b cohort.Criteria) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *cohort.ConditionOccurrence:
		y := b.(*cohort.ConditionOccurrence)
		return equalID(x.CodesetID, y.CodesetID) && equalID(x.ConditionSourceConcept, y.ConditionSourceConcept)
	case *cohort.ObservationPeriod:
		y := b.(*cohort.ObservationPeriod)
		return reflect.DeepEqual(x.PeriodStartDate, y.PeriodStartDate) &&
			reflect.DeepEqual(x.PeriodEndDate, y.PeriodEndDate) &&
			reflect.DeepEqual(x.PeriodLength, y.PeriodLength)
	case *cohort.PayerPlanPeriod:
		y := b.(*cohort.PayerPlanPeriod)
		return equalID(x.PayerConcept, y.PayerConcept) &&
			equalID(x.PlanConcept, y.PlanConcept) &&
			equalID(x.SponsorConcept, y.SponsorConcept) &&
			equalID(x.StopReasonConcept, y.StopReasonConcept) &&
			equalID(x.PayerSourceConcept, y.PayerSourceConcept) &&
			equalID(x.PlanSourceConcept, y.PlanSourceConcept) &&
			equalID(x.SponsorSourceConcept, y.SponsorSourceConcept) &&
			equalID(x.StopReasonSourceConcept, y.StopReasonSourceConcept)
	case *cohort.DemographicCriteria:
		return false
	default:
		return equalID(cohort.CodesetID(a), cohort.CodesetID(b))
	}
}

// missingType reports whether c leaves its record-type filter unset. Kinds
// without one never miss it.
func missingType(c cohort.Criteria) bool {
	switch x := c.(type) {
	case *cohort.ConditionOccurrence:
		return x.ConditionType == nil
	case *cohort.Death:
		return x.DeathType == nil
	case *cohort.DeviceExposure:
		return x.DeviceType == nil
	case *cohort.DrugExposure:
		return x.DrugType == nil
	case *cohort.Measurement:
		return x.MeasurementType == nil
	case *cohort.Observation:
		return x.ObservationType == nil
	case *cohort.ProcedureOccurrence:
		return x.ProcedureType == nil
	case *cohort.Specimen:
		return x.SpecimenType == nil
	case *cohort.VisitOccurrence:
		return x.VisitType == nil
	case *cohort.VisitDetail:
		return x.VisitDetailTypeCS == nil
	case *cohort.ConditionEra, *cohort.DoseEra, *cohort.DrugEra, *cohort.ObservationPeriod,
		*cohort.PayerPlanPeriod, *cohort.LocationRegion, *cohort.DemographicCriteria:
		return false
	default:
		panicUnhandled(c)
		return false
	}
}

func checkDomainType(expr *cohort.CohortExpression, r *reporter) {
	var names []string
	walkLeaves(expr, func(c cohort.Criteria, group string) {
		if missingType(c) {
			names = append(names, c.Kind().DisplayName()+" at "+group)
		}
	})
	if len(names) > 0 {
		r.add(warnMissingTypeAttrs, strings.Join(names, ", "))
	}
}

package check

import (
	"time"

	"github.com/roach88/cohortcheck/internal/cohort"
)

const (
	warnEmptyStartValue     = "%s in the %s has empty %s start value"
	warnEmptyEndValue       = "%s in the %s has empty %s end value"
	warnStartGreaterThanEnd = "%s in the %s has start value greater than end in %s"
	warnStartIsNegative     = "%s in the %s start value is negative at %s"
	warnDateIsInvalid       = "%s in the %s has invalid date value at %s"
	warnEmptyValue          = "%s in the %s has empty %s value"
	warnNoAttributes        = "%s in the %s does not have attributes"
	warnNegativeWindowValue = "Time window in criteria \"%s\" has negative value %d at %s"
)

const (
	criteriaCohort            = "cohort"
	criteriaObservationWindow = "observation window"
)

const dateLayout = "2006-01-02"

// valueCheck reports value findings for one criteria within one group.
type valueCheck struct {
	r        *reporter
	group    string
	criteria string
}

func newValueCheck(r *reporter, group string, c cohort.Criteria) valueCheck {
	return valueCheck{r: r, group: group, criteria: c.Kind().DisplayName()}
}

func (v valueCheck) warn(template, attr string) {
	v.r.add(template, v.group, v.criteria, attr)
}

func (v valueCheck) numeric(nr *cohort.NumericRange, attr string) {
	if nr == nil {
		return
	}
	if nr.IsBetween() {
		switch {
		case nr.Value == nil:
			v.warn(warnEmptyStartValue, attr)
		case nr.Extent == nil:
			v.warn(warnEmptyEndValue, attr)
		case *nr.Value > *nr.Extent:
			v.warn(warnStartGreaterThanEnd, attr)
		}
		return
	}
	switch {
	case nr.Value != nil && *nr.Value < 0:
		v.warn(warnStartIsNegative, attr)
	case nr.Value == nil:
		v.warn(warnEmptyStartValue, attr)
	}
}

func (v valueCheck) date(dr *cohort.DateRange, attr string) {
	if dr == nil {
		return
	}
	if dr.Value != nil && !validDate(*dr.Value) {
		v.warn(warnDateIsInvalid, attr)
		return
	}
	if dr.IsBetween() {
		switch {
		case dr.Value == nil:
			v.warn(warnEmptyStartValue, attr)
		case dr.Extent == nil:
			v.warn(warnEmptyEndValue, attr)
		case !validDate(*dr.Extent):
			v.warn(warnDateIsInvalid, attr)
		case dateAfter(*dr.Value, *dr.Extent):
			v.warn(warnStartGreaterThanEnd, attr)
		}
		return
	}
	if dr.Value == nil {
		v.warn(warnEmptyStartValue, attr)
	}
}

func (v valueCheck) period(p *cohort.Period, attr string) {
	if p == nil {
		return
	}
	switch {
	case p.StartDate != nil && !validDate(*p.StartDate):
		v.warn(warnDateIsInvalid, attr)
	case p.EndDate != nil && !validDate(*p.EndDate):
		v.warn(warnDateIsInvalid, attr)
	case p.StartDate != nil && p.EndDate != nil && dateAfter(*p.StartDate, *p.EndDate):
		v.warn(warnStartGreaterThanEnd, attr)
	}
}

// concepts flags a concept array that is present but empty.
func (v valueCheck) concepts(list []cohort.Concept, attr string) {
	if list != nil && len(list) == 0 {
		v.warn(warnEmptyValue, attr)
	}
}

func (v valueCheck) selection(cs *cohort.ConceptSetSelection, attr string) {
	if cs != nil && cs.CodesetID == nil {
		v.warn(warnEmptyValue, attr)
	}
}

func (v valueCheck) text(tf *cohort.TextFilter, attr string) {
	if tf != nil && tf.Text == nil {
		v.warn(warnEmptyValue, attr)
	}
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// dateAfter reports whether a is strictly after b. Both must be valid.
func dateAfter(a, b string) bool {
	ta, errA := time.Parse(dateLayout, a)
	tb, errB := time.Parse(dateLayout, b)
	return errA == nil && errB == nil && ta.After(tb)
}

func checkRange(expr *cohort.CohortExpression, r *reporter) {
	walkValues(expr, func(c cohort.Criteria, group string) {
		rangeValues(newValueCheck(r, group, c), c)
	})

	censor := valueCheck{r: r, group: valuePrimary, criteria: criteriaCohort}
	censor.period(expr.CensorWindow, attrCensorWindow)

	if pc := expr.PrimaryCriteria; pc != nil && pc.ObservationWindow != nil {
		if d := pc.ObservationWindow.PriorDays; d < 0 {
			r.add(warnNegativeWindowValue, criteriaObservationWindow, d, "prior days")
		}
		if d := pc.ObservationWindow.PostDays; d < 0 {
			r.add(warnNegativeWindowValue, criteriaObservationWindow, d, "post days")
		}
	}

	for _, rule := range expr.InclusionRules {
		if rule == nil || rule.Expression == nil {
			continue
		}
		for _, cc := range rule.Expression.CriteriaList {
			if cc == nil {
				continue
			}
			negativeWindow(r, rule.Name, cc.StartWindow)
			negativeWindow(r, rule.Name, cc.EndWindow)
		}
	}
}

func negativeWindow(r *reporter, name string, w *cohort.Window) {
	if w == nil {
		return
	}
	if d, ok := w.Start.Magnitude(); ok && d < 0 {
		r.add(warnNegativeWindowValue, name, d, "start")
	}
	if d, ok := w.End.Magnitude(); ok && d < 0 {
		r.add(warnNegativeWindowValue, name, d, "end")
	}
}

func rangeValues(v valueCheck, c cohort.Criteria) {
	switch x := c.(type) {
	case *cohort.ConditionEra:
		v.numeric(x.AgeAtStart, attrAgeAtEraStart)
		v.numeric(x.AgeAtEnd, attrAgeAtEraEnd)
		v.numeric(x.EraLength, attrEraLength)
		v.numeric(x.OccurrenceCount, attrOccurrenceCount)
		v.date(x.EraStartDate, attrEraStartDate)
		v.date(x.EraEndDate, attrEraEndDate)
	case *cohort.ConditionOccurrence:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.date(x.OccurrenceEndDate, attrOccurrenceEndDate)
		v.numeric(x.Age, attrAge)
	case *cohort.Death:
		v.numeric(x.Age, attrAge)
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
	case *cohort.DeviceExposure:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.date(x.OccurrenceEndDate, attrOccurrenceEndDate)
		v.numeric(x.Quantity, attrQuantity)
		v.numeric(x.Age, attrAge)
	case *cohort.DoseEra:
		v.date(x.EraStartDate, attrEraStartDate)
		v.date(x.EraEndDate, attrEraEndDate)
		v.numeric(x.DoseValue, attrDoseValue)
		v.numeric(x.EraLength, attrEraLength)
		v.numeric(x.AgeAtStart, attrAgeAtStart)
		v.numeric(x.AgeAtEnd, attrAgeAtEnd)
	case *cohort.DrugEra:
		v.date(x.EraStartDate, attrEraStartDate)
		v.date(x.EraEndDate, attrEraEndDate)
		v.numeric(x.OccurrenceCount, attrOccurrenceCount)
		v.numeric(x.GapDays, attrGapDays)
		v.numeric(x.EraLength, attrEraLength)
		v.numeric(x.AgeAtStart, attrAgeAtStart)
		v.numeric(x.AgeAtEnd, attrAgeAtEnd)
	case *cohort.DrugExposure:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.date(x.OccurrenceEndDate, attrOccurrenceEndDate)
		v.numeric(x.Refills, attrRefills)
		v.numeric(x.Quantity, attrQuantity)
		v.numeric(x.DaysSupply, attrDaysSupply)
		v.numeric(x.EffectiveDrugDose, attrEffectiveDrugDose)
		v.numeric(x.Age, attrAge)
	case *cohort.Measurement:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.numeric(x.ValueAsNumber, attrValueAsNumber)
		v.numeric(x.RangeLow, attrRangeLow)
		v.numeric(x.RangeHigh, attrRangeHigh)
		v.numeric(x.RangeLowRatio, attrRangeLowRatio)
		v.numeric(x.RangeHighRatio, attrRangeHighRatio)
		v.numeric(x.Age, attrAge)
	case *cohort.Observation:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.numeric(x.ValueAsNumber, attrValueAsNumber)
		v.numeric(x.Age, attrAge)
	case *cohort.ObservationPeriod:
		v.date(x.PeriodStartDate, attrPeriodStartDate)
		v.date(x.PeriodEndDate, attrPeriodEndDate)
		v.period(x.UserDefinedPeriod, attrUserDefinedPeriod)
		v.numeric(x.PeriodLength, attrPeriodLength)
		v.numeric(x.AgeAtStart, attrAgeAtStart)
		v.numeric(x.AgeAtEnd, attrAgeAtEnd)
	case *cohort.PayerPlanPeriod:
		v.date(x.PeriodStartDate, attrPeriodStartDate)
		v.date(x.PeriodEndDate, attrPeriodEndDate)
		v.period(x.UserDefinedPeriod, attrUserDefinedPeriod)
		v.numeric(x.PeriodLength, attrPeriodLength)
		v.numeric(x.AgeAtStart, attrAgeAtStart)
		v.numeric(x.AgeAtEnd, attrAgeAtEnd)
	case *cohort.ProcedureOccurrence:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.numeric(x.Quantity, attrQuantity)
		v.numeric(x.Age, attrAge)
	case *cohort.Specimen:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.numeric(x.Quantity, attrQuantity)
		v.numeric(x.Age, attrAge)
	case *cohort.VisitOccurrence:
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.date(x.OccurrenceEndDate, attrOccurrenceEndDate)
		v.numeric(x.VisitLength, attrVisitLength)
		v.numeric(x.Age, attrAge)
	case *cohort.VisitDetail:
		v.date(x.VisitDetailStartDate, attrVisitDetailStartDate)
		v.date(x.VisitDetailEndDate, attrVisitDetailEndDate)
		v.numeric(x.VisitDetailLength, attrVisitDetailLength)
		v.numeric(x.Age, attrAge)
	case *cohort.LocationRegion:
		v.date(x.StartDate, attrLocationRegionStart)
		v.date(x.EndDate, attrLocationRegionEnd)
	case *cohort.DemographicCriteria:
		v.date(x.OccurrenceEndDate, attrOccurrenceEndDate)
		v.date(x.OccurrenceStartDate, attrOccurrenceStartDate)
		v.numeric(x.Age, attrAge)
	default:
		panicUnhandled(c)
	}
}

func checkConcept(expr *cohort.CohortExpression, r *reporter) {
	walkValues(expr, func(c cohort.Criteria, group string) {
		conceptValues(newValueCheck(r, group, c), c)
	})
}

func conceptValues(v valueCheck, c cohort.Criteria) {
	switch x := c.(type) {
	case *cohort.ConditionEra:
		v.concepts(x.Gender, attrGender)
	case *cohort.ConditionOccurrence:
		v.concepts(x.ConditionType, attrConditionType)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.ProviderSpecialty, attrProviderSpecialty)
		v.concepts(x.VisitType, attrVisitType)
	case *cohort.Death:
		v.concepts(x.DeathType, attrDeathType)
		v.concepts(x.Gender, attrGender)
	case *cohort.DeviceExposure:
		v.concepts(x.DeviceType, attrDeviceType)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.ProviderSpecialty, attrProviderSpecialty)
		v.concepts(x.VisitType, attrVisitType)
	case *cohort.DoseEra:
		v.concepts(x.Unit, attrUnit)
		v.concepts(x.Gender, attrGender)
	case *cohort.DrugEra:
		v.concepts(x.Gender, attrGender)
	case *cohort.DrugExposure:
		v.concepts(x.DrugType, attrDrugType)
		v.concepts(x.RouteConcept, attrRouteConcept)
		v.concepts(x.DoseUnit, attrDoseUnit)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.ProviderSpecialty, attrProviderSpecialty)
		v.concepts(x.VisitType, attrVisitType)
	case *cohort.Measurement:
		v.concepts(x.MeasurementType, attrMeasurementType)
		v.concepts(x.Operator, attrOperator)
		v.concepts(x.ValueAsConcept, attrValueAsConcept)
		v.concepts(x.Unit, attrUnit)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.ProviderSpecialty, attrProviderSpecialty)
		v.concepts(x.VisitType, attrVisitType)
	case *cohort.Observation:
		v.concepts(x.ObservationType, attrObservationType)
		v.concepts(x.ValueAsConcept, attrValueAsConcept)
		v.concepts(x.Qualifier, attrQualifier)
		v.concepts(x.Unit, attrUnit)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.ProviderSpecialty, attrProviderSpecialty)
		v.concepts(x.VisitType, attrVisitType)
	case *cohort.ObservationPeriod:
		v.concepts(x.PeriodType, attrPeriodType)
	case *cohort.PayerPlanPeriod:
		v.concepts(x.Gender, attrGender)
	case *cohort.ProcedureOccurrence:
		v.concepts(x.ProcedureType, attrProcedureType)
		v.concepts(x.Modifier, attrModifier)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.ProviderSpecialty, attrProviderSpecialty)
		v.concepts(x.VisitType, attrVisitType)
	case *cohort.Specimen:
		v.concepts(x.SpecimenType, attrSpecimenType)
		v.concepts(x.Unit, attrUnit)
		v.concepts(x.AnatomicSite, attrAnatomicSite)
		v.concepts(x.DiseaseStatus, attrDiseaseStatus)
		v.concepts(x.Gender, attrGender)
	case *cohort.VisitOccurrence:
		v.concepts(x.VisitType, attrVisitType)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.ProviderSpecialty, attrProviderSpecialty)
		v.concepts(x.PlaceOfService, attrPlaceOfService)
	case *cohort.DemographicCriteria:
		v.concepts(x.Ethnicity, attrEthnicity)
		v.concepts(x.Gender, attrGender)
		v.concepts(x.Race, attrRace)
	case *cohort.VisitDetail, *cohort.LocationRegion:
		// Concept filters of these kinds are concept-set selections.
	default:
		panicUnhandled(c)
	}
}

func checkConceptSetSelection(expr *cohort.CohortExpression, r *reporter) {
	walkValues(expr, func(c cohort.Criteria, group string) {
		vd, ok := c.(*cohort.VisitDetail)
		if !ok {
			return
		}
		v := newValueCheck(r, group, c)
		v.selection(vd.VisitDetailTypeCS, attrVisitDetailType)
		v.selection(vd.GenderCS, attrGender)
		v.selection(vd.ProviderSpecialtyCS, attrProviderSpecialty)
		v.selection(vd.PlaceOfServiceCS, attrPlaceOfService)
	})
}

func checkAttribute(expr *cohort.CohortExpression, r *reporter) {
	emptyDemographics(expr, r)
}

func checkEmptyDemographic(expr *cohort.CohortExpression, r *reporter) {
	emptyDemographics(expr, r)
}

func emptyDemographics(expr *cohort.CohortExpression, r *reporter) {
	walkValues(expr, func(c cohort.Criteria, group string) {
		if d, ok := c.(*cohort.DemographicCriteria); ok && d.IsEmpty() {
			r.add(warnNoAttributes, group, cohort.KindDemographic.DisplayName())
		}
	})
}

func checkText(expr *cohort.CohortExpression, r *reporter) {
	walkValues(expr, func(c cohort.Criteria, group string) {
		v := newValueCheck(r, group, c)
		switch x := c.(type) {
		case *cohort.ConditionOccurrence:
			v.text(x.StopReason, attrStopReason)
		case *cohort.DeviceExposure:
			v.text(x.UniqueDeviceID, attrUniqueDeviceID)
		case *cohort.DrugExposure:
			v.text(x.StopReason, attrStopReason)
			v.text(x.LotNumber, attrLotNumber)
		case *cohort.Observation:
			v.text(x.ValueAsString, attrValueAsString)
		case *cohort.Specimen:
			v.text(x.SourceID, attrSourceID)
		}
	})
}

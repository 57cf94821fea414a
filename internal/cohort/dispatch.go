package cohort

import "fmt"

// CodesetID returns the concept set referenced by c, or nil.
func CodesetID(c Criteria) *int {
	switch v := c.(type) {
	case *ConditionEra:
		return v.CodesetID
	case *ConditionOccurrence:
		return v.CodesetID
	case *Death:
		return v.CodesetID
	case *DeviceExposure:
		return v.CodesetID
	case *DoseEra:
		return v.CodesetID
	case *DrugEra:
		return v.CodesetID
	case *DrugExposure:
		return v.CodesetID
	case *Measurement:
		return v.CodesetID
	case *Observation:
		return v.CodesetID
	case *ProcedureOccurrence:
		return v.CodesetID
	case *Specimen:
		return v.CodesetID
	case *VisitOccurrence:
		return v.CodesetID
	case *VisitDetail:
		return v.CodesetID
	case *LocationRegion:
		return v.CodesetID
	case *ObservationPeriod, *PayerPlanPeriod, *DemographicCriteria:
		return nil
	default:
		panic(fmt.Sprintf("cohort: unhandled criteria type %T", c))
	}
}

// SourceConcept returns the domain source-concept reference of c, or nil
// when the domain has none or it is unset. The value is a concept set id.
func SourceConcept(c Criteria) *int {
	switch v := c.(type) {
	case *ConditionOccurrence:
		return v.ConditionSourceConcept
	case *Death:
		return v.DeathSourceConcept
	case *DeviceExposure:
		return v.DeviceSourceConcept
	case *DrugExposure:
		return v.DrugSourceConcept
	case *Measurement:
		return v.MeasurementSourceConcept
	case *Observation:
		return v.ObservationSourceConcept
	case *ProcedureOccurrence:
		return v.ProcedureSourceConcept
	case *Specimen:
		return v.SpecimenSourceConcept
	case *VisitOccurrence:
		return v.VisitSourceConcept
	case *VisitDetail:
		return v.VisitDetailSourceConcept
	case *ConditionEra, *DoseEra, *DrugEra, *ObservationPeriod, *PayerPlanPeriod,
		*LocationRegion, *DemographicCriteria:
		return nil
	default:
		panic(fmt.Sprintf("cohort: unhandled criteria type %T", c))
	}
}

// HasSourceConcept reports whether the domain of c defines a source-concept
// field at all.
func HasSourceConcept(kind Kind) bool {
	switch kind {
	case KindConditionOccurrence, KindDeath, KindDeviceExposure, KindDrugExposure,
		KindMeasurement, KindObservation, KindProcedureOccurrence, KindSpecimen,
		KindVisitOccurrence, KindVisitDetail:
		return true
	default:
		return false
	}
}

// First returns the "first time in history" flag of c, or nil.
func First(c Criteria) *bool {
	switch v := c.(type) {
	case *ConditionEra:
		return v.First
	case *ConditionOccurrence:
		return v.First
	case *DeviceExposure:
		return v.First
	case *DoseEra:
		return v.First
	case *DrugEra:
		return v.First
	case *DrugExposure:
		return v.First
	case *Measurement:
		return v.First
	case *Observation:
		return v.First
	case *ObservationPeriod:
		return v.First
	case *PayerPlanPeriod:
		return v.First
	case *ProcedureOccurrence:
		return v.First
	case *Specimen:
		return v.First
	case *VisitOccurrence:
		return v.First
	case *VisitDetail:
		return v.First
	case *Death, *LocationRegion, *DemographicCriteria:
		return nil
	default:
		panic(fmt.Sprintf("cohort: unhandled criteria type %T", c))
	}
}

// IsDrug reports whether c selects drug records.
func IsDrug(c Criteria) bool {
	switch c.(type) {
	case *DrugExposure, *DrugEra, *DoseEra:
		return true
	default:
		return false
	}
}

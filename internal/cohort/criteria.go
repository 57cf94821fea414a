package cohort

// Kind identifies a criteria variant. Values equal the wire names.
type Kind string

const (
	KindConditionEra        Kind = "ConditionEra"
	KindConditionOccurrence Kind = "ConditionOccurrence"
	KindDeath               Kind = "Death"
	KindDeviceExposure      Kind = "DeviceExposure"
	KindDoseEra             Kind = "DoseEra"
	KindDrugEra             Kind = "DrugEra"
	KindDrugExposure        Kind = "DrugExposure"
	KindMeasurement         Kind = "Measurement"
	KindObservation         Kind = "Observation"
	KindObservationPeriod   Kind = "ObservationPeriod"
	KindPayerPlanPeriod     Kind = "PayerPlanPeriod"
	KindProcedureOccurrence Kind = "ProcedureOccurrence"
	KindSpecimen            Kind = "Specimen"
	KindVisitOccurrence     Kind = "VisitOccurrence"
	KindVisitDetail         Kind = "VisitDetail"
	KindLocationRegion      Kind = "LocationRegion"
	KindDemographic         Kind = "DemographicCriteria"
)

// AllKinds lists every criteria variant in declaration order.
var AllKinds = []Kind{
	KindConditionEra,
	KindConditionOccurrence,
	KindDeath,
	KindDeviceExposure,
	KindDoseEra,
	KindDrugEra,
	KindDrugExposure,
	KindMeasurement,
	KindObservation,
	KindObservationPeriod,
	KindPayerPlanPeriod,
	KindProcedureOccurrence,
	KindSpecimen,
	KindVisitOccurrence,
	KindVisitDetail,
	KindLocationRegion,
	KindDemographic,
}

// DisplayName returns the lower-case name used in warning messages.
func (k Kind) DisplayName() string {
	switch k {
	case KindConditionEra:
		return "condition era"
	case KindConditionOccurrence:
		return "condition occurrence"
	case KindDeath:
		return "death"
	case KindDeviceExposure:
		return "device exposure"
	case KindDoseEra:
		return "dose era"
	case KindDrugEra:
		return "drug era"
	case KindDrugExposure:
		return "drug exposure"
	case KindMeasurement:
		return "measurement"
	case KindObservation:
		return "observation"
	case KindObservationPeriod:
		return "observation period"
	case KindPayerPlanPeriod:
		return "payer plan period"
	case KindProcedureOccurrence:
		return "procedure occurrence"
	case KindSpecimen:
		return "specimen"
	case KindVisitOccurrence:
		return "visit occurrence"
	case KindVisitDetail:
		return "visit detail"
	case KindLocationRegion:
		return "location region"
	case KindDemographic:
		return "demographic"
	default:
		return string(k)
	}
}

// Criteria is a clinical event filter. The set of implementations is
// closed; dispatch with a type switch.
type Criteria interface {
	Kind() Kind
	// Correlated returns the nested correlated criteria group, if any.
	Correlated() *CriteriaGroup
	isCriteria()
}

// CriteriaBase holds the fields every event criteria carries.
type CriteriaBase struct {
	CorrelatedCriteria *CriteriaGroup `json:"CorrelatedCriteria,omitempty"`
}

// Correlated implements Criteria.
func (b *CriteriaBase) Correlated() *CriteriaGroup { return b.CorrelatedCriteria }

func (*CriteriaBase) isCriteria() {}

type ConditionEra struct {
	CriteriaBase
	CodesetID       *int          `json:"CodesetId,omitempty"`
	First           *bool         `json:"First,omitempty"`
	EraStartDate    *DateRange    `json:"EraStartDate,omitempty"`
	EraEndDate      *DateRange    `json:"EraEndDate,omitempty"`
	OccurrenceCount *NumericRange `json:"OccurrenceCount,omitempty"`
	EraLength       *NumericRange `json:"EraLength,omitempty"`
	AgeAtStart      *NumericRange `json:"AgeAtStart,omitempty"`
	AgeAtEnd        *NumericRange `json:"AgeAtEnd,omitempty"`
	Gender          []Concept     `json:"Gender"`
}

type ConditionOccurrence struct {
	CriteriaBase
	CodesetID              *int          `json:"CodesetId,omitempty"`
	First                  *bool         `json:"First,omitempty"`
	OccurrenceStartDate    *DateRange    `json:"OccurrenceStartDate,omitempty"`
	OccurrenceEndDate      *DateRange    `json:"OccurrenceEndDate,omitempty"`
	ConditionType          []Concept     `json:"ConditionType"`
	ConditionTypeExclude   bool          `json:"ConditionTypeExclude,omitempty"`
	StopReason             *TextFilter   `json:"StopReason,omitempty"`
	ConditionSourceConcept *int          `json:"ConditionSourceConcept,omitempty"`
	ConditionStatus        []Concept     `json:"ConditionStatus"`
	Age                    *NumericRange `json:"Age,omitempty"`
	Gender                 []Concept     `json:"Gender"`
	ProviderSpecialty      []Concept     `json:"ProviderSpecialty"`
	VisitType              []Concept     `json:"VisitType"`
}

type Death struct {
	CriteriaBase
	CodesetID           *int          `json:"CodesetId,omitempty"`
	OccurrenceStartDate *DateRange    `json:"OccurrenceStartDate,omitempty"`
	DeathType           []Concept     `json:"DeathType"`
	DeathTypeExclude    bool          `json:"DeathTypeExclude,omitempty"`
	DeathSourceConcept  *int          `json:"DeathSourceConcept,omitempty"`
	Age                 *NumericRange `json:"Age,omitempty"`
	Gender              []Concept     `json:"Gender"`
}

type DeviceExposure struct {
	CriteriaBase
	CodesetID           *int          `json:"CodesetId,omitempty"`
	First               *bool         `json:"First,omitempty"`
	OccurrenceStartDate *DateRange    `json:"OccurrenceStartDate,omitempty"`
	OccurrenceEndDate   *DateRange    `json:"OccurrenceEndDate,omitempty"`
	DeviceType          []Concept     `json:"DeviceType"`
	DeviceTypeExclude   bool          `json:"DeviceTypeExclude,omitempty"`
	UniqueDeviceID      *TextFilter   `json:"UniqueDeviceId,omitempty"`
	Quantity            *NumericRange `json:"Quantity,omitempty"`
	DeviceSourceConcept *int          `json:"DeviceSourceConcept,omitempty"`
	Age                 *NumericRange `json:"Age,omitempty"`
	Gender              []Concept     `json:"Gender"`
	ProviderSpecialty   []Concept     `json:"ProviderSpecialty"`
	VisitType           []Concept     `json:"VisitType"`
}

type DoseEra struct {
	CriteriaBase
	CodesetID    *int          `json:"CodesetId,omitempty"`
	First        *bool         `json:"First,omitempty"`
	EraStartDate *DateRange    `json:"EraStartDate,omitempty"`
	EraEndDate   *DateRange    `json:"EraEndDate,omitempty"`
	Unit         []Concept     `json:"Unit"`
	DoseValue    *NumericRange `json:"DoseValue,omitempty"`
	EraLength    *NumericRange `json:"EraLength,omitempty"`
	AgeAtStart   *NumericRange `json:"AgeAtStart,omitempty"`
	AgeAtEnd     *NumericRange `json:"AgeAtEnd,omitempty"`
	Gender       []Concept     `json:"Gender"`
}

type DrugEra struct {
	CriteriaBase
	CodesetID       *int          `json:"CodesetId,omitempty"`
	First           *bool         `json:"First,omitempty"`
	EraStartDate    *DateRange    `json:"EraStartDate,omitempty"`
	EraEndDate      *DateRange    `json:"EraEndDate,omitempty"`
	OccurrenceCount *NumericRange `json:"OccurrenceCount,omitempty"`
	GapDays         *NumericRange `json:"GapDays,omitempty"`
	EraLength       *NumericRange `json:"EraLength,omitempty"`
	AgeAtStart      *NumericRange `json:"AgeAtStart,omitempty"`
	AgeAtEnd        *NumericRange `json:"AgeAtEnd,omitempty"`
	Gender          []Concept     `json:"Gender"`
}

type DrugExposure struct {
	CriteriaBase
	CodesetID           *int          `json:"CodesetId,omitempty"`
	First               *bool         `json:"First,omitempty"`
	OccurrenceStartDate *DateRange    `json:"OccurrenceStartDate,omitempty"`
	OccurrenceEndDate   *DateRange    `json:"OccurrenceEndDate,omitempty"`
	DrugType            []Concept     `json:"DrugType"`
	DrugTypeExclude     bool          `json:"DrugTypeExclude,omitempty"`
	StopReason          *TextFilter   `json:"StopReason,omitempty"`
	Refills             *NumericRange `json:"Refills,omitempty"`
	Quantity            *NumericRange `json:"Quantity,omitempty"`
	DaysSupply          *NumericRange `json:"DaysSupply,omitempty"`
	RouteConcept        []Concept     `json:"RouteConcept"`
	EffectiveDrugDose   *NumericRange `json:"EffectiveDrugDose,omitempty"`
	DoseUnit            []Concept     `json:"DoseUnit"`
	LotNumber           *TextFilter   `json:"LotNumber,omitempty"`
	DrugSourceConcept   *int          `json:"DrugSourceConcept,omitempty"`
	Age                 *NumericRange `json:"Age,omitempty"`
	Gender              []Concept     `json:"Gender"`
	ProviderSpecialty   []Concept     `json:"ProviderSpecialty"`
	VisitType           []Concept     `json:"VisitType"`
}

type Measurement struct {
	CriteriaBase
	CodesetID                *int          `json:"CodesetId,omitempty"`
	First                    *bool         `json:"First,omitempty"`
	OccurrenceStartDate      *DateRange    `json:"OccurrenceStartDate,omitempty"`
	MeasurementType          []Concept     `json:"MeasurementType"`
	MeasurementTypeExclude   bool          `json:"MeasurementTypeExclude,omitempty"`
	Operator                 []Concept     `json:"Operator"`
	ValueAsNumber            *NumericRange `json:"ValueAsNumber,omitempty"`
	ValueAsConcept           []Concept     `json:"ValueAsConcept"`
	Unit                     []Concept     `json:"Unit"`
	RangeLow                 *NumericRange `json:"RangeLow,omitempty"`
	RangeHigh                *NumericRange `json:"RangeHigh,omitempty"`
	RangeLowRatio            *NumericRange `json:"RangeLowRatio,omitempty"`
	RangeHighRatio           *NumericRange `json:"RangeHighRatio,omitempty"`
	Abnormal                 *bool         `json:"Abnormal,omitempty"`
	MeasurementSourceConcept *int          `json:"MeasurementSourceConcept,omitempty"`
	Age                      *NumericRange `json:"Age,omitempty"`
	Gender                   []Concept     `json:"Gender"`
	ProviderSpecialty        []Concept     `json:"ProviderSpecialty"`
	VisitType                []Concept     `json:"VisitType"`
}

type Observation struct {
	CriteriaBase
	CodesetID                *int          `json:"CodesetId,omitempty"`
	First                    *bool         `json:"First,omitempty"`
	OccurrenceStartDate      *DateRange    `json:"OccurrenceStartDate,omitempty"`
	ObservationType          []Concept     `json:"ObservationType"`
	ObservationTypeExclude   bool          `json:"ObservationTypeExclude,omitempty"`
	ValueAsNumber            *NumericRange `json:"ValueAsNumber,omitempty"`
	ValueAsString            *TextFilter   `json:"ValueAsString,omitempty"`
	ValueAsConcept           []Concept     `json:"ValueAsConcept"`
	Qualifier                []Concept     `json:"Qualifier"`
	Unit                     []Concept     `json:"Unit"`
	ObservationSourceConcept *int          `json:"ObservationSourceConcept,omitempty"`
	Age                      *NumericRange `json:"Age,omitempty"`
	Gender                   []Concept     `json:"Gender"`
	ProviderSpecialty        []Concept     `json:"ProviderSpecialty"`
	VisitType                []Concept     `json:"VisitType"`
}

type ObservationPeriod struct {
	CriteriaBase
	First             *bool         `json:"First,omitempty"`
	PeriodStartDate   *DateRange    `json:"PeriodStartDate,omitempty"`
	PeriodEndDate     *DateRange    `json:"PeriodEndDate,omitempty"`
	UserDefinedPeriod *Period       `json:"UserDefinedPeriod,omitempty"`
	PeriodType        []Concept     `json:"PeriodType"`
	PeriodLength      *NumericRange `json:"PeriodLength,omitempty"`
	AgeAtStart        *NumericRange `json:"AgeAtStart,omitempty"`
	AgeAtEnd          *NumericRange `json:"AgeAtEnd,omitempty"`
}

type PayerPlanPeriod struct {
	CriteriaBase
	First                   *bool         `json:"First,omitempty"`
	PeriodStartDate         *DateRange    `json:"PeriodStartDate,omitempty"`
	PeriodEndDate           *DateRange    `json:"PeriodEndDate,omitempty"`
	UserDefinedPeriod       *Period       `json:"UserDefinedPeriod,omitempty"`
	PeriodLength            *NumericRange `json:"PeriodLength,omitempty"`
	AgeAtStart              *NumericRange `json:"AgeAtStart,omitempty"`
	AgeAtEnd                *NumericRange `json:"AgeAtEnd,omitempty"`
	Gender                  []Concept     `json:"Gender"`
	PayerConcept            *int          `json:"PayerConcept,omitempty"`
	PlanConcept             *int          `json:"PlanConcept,omitempty"`
	SponsorConcept          *int          `json:"SponsorConcept,omitempty"`
	StopReasonConcept       *int          `json:"StopReasonConcept,omitempty"`
	PayerSourceConcept      *int          `json:"PayerSourceConcept,omitempty"`
	PlanSourceConcept       *int          `json:"PlanSourceConcept,omitempty"`
	SponsorSourceConcept    *int          `json:"SponsorSourceConcept,omitempty"`
	StopReasonSourceConcept *int          `json:"StopReasonSourceConcept,omitempty"`
}

type ProcedureOccurrence struct {
	CriteriaBase
	CodesetID              *int          `json:"CodesetId,omitempty"`
	First                  *bool         `json:"First,omitempty"`
	OccurrenceStartDate    *DateRange    `json:"OccurrenceStartDate,omitempty"`
	ProcedureType          []Concept     `json:"ProcedureType"`
	ProcedureTypeExclude   bool          `json:"ProcedureTypeExclude,omitempty"`
	Modifier               []Concept     `json:"Modifier"`
	Quantity               *NumericRange `json:"Quantity,omitempty"`
	ProcedureSourceConcept *int          `json:"ProcedureSourceConcept,omitempty"`
	Age                    *NumericRange `json:"Age,omitempty"`
	Gender                 []Concept     `json:"Gender"`
	ProviderSpecialty      []Concept     `json:"ProviderSpecialty"`
	VisitType              []Concept     `json:"VisitType"`
}

type Specimen struct {
	CriteriaBase
	CodesetID             *int          `json:"CodesetId,omitempty"`
	First                 *bool         `json:"First,omitempty"`
	OccurrenceStartDate   *DateRange    `json:"OccurrenceStartDate,omitempty"`
	SpecimenType          []Concept     `json:"SpecimenType"`
	SpecimenTypeExclude   bool          `json:"SpecimenTypeExclude,omitempty"`
	Quantity              *NumericRange `json:"Quantity,omitempty"`
	Unit                  []Concept     `json:"Unit"`
	AnatomicSite          []Concept     `json:"AnatomicSite"`
	DiseaseStatus         []Concept     `json:"DiseaseStatus"`
	SourceID              *TextFilter   `json:"SourceId,omitempty"`
	SpecimenSourceConcept *int          `json:"SpecimenSourceConcept,omitempty"`
	Age                   *NumericRange `json:"Age,omitempty"`
	Gender                []Concept     `json:"Gender"`
}

type VisitOccurrence struct {
	CriteriaBase
	CodesetID           *int          `json:"CodesetId,omitempty"`
	First               *bool         `json:"First,omitempty"`
	OccurrenceStartDate *DateRange    `json:"OccurrenceStartDate,omitempty"`
	OccurrenceEndDate   *DateRange    `json:"OccurrenceEndDate,omitempty"`
	VisitType           []Concept     `json:"VisitType"`
	VisitTypeExclude    bool          `json:"VisitTypeExclude,omitempty"`
	VisitSourceConcept  *int          `json:"VisitSourceConcept,omitempty"`
	VisitLength         *NumericRange `json:"VisitLength,omitempty"`
	Age                 *NumericRange `json:"Age,omitempty"`
	Gender              []Concept     `json:"Gender"`
	ProviderSpecialty   []Concept     `json:"ProviderSpecialty"`
	PlaceOfService      []Concept     `json:"PlaceOfService"`
}

type VisitDetail struct {
	CriteriaBase
	CodesetID                *int                 `json:"CodesetId,omitempty"`
	First                    *bool                `json:"First,omitempty"`
	VisitDetailStartDate     *DateRange           `json:"VisitDetailStartDate,omitempty"`
	VisitDetailEndDate       *DateRange           `json:"VisitDetailEndDate,omitempty"`
	VisitDetailTypeCS        *ConceptSetSelection `json:"VisitDetailTypeCS,omitempty"`
	VisitDetailSourceConcept *int                 `json:"VisitDetailSourceConcept,omitempty"`
	VisitDetailLength        *NumericRange        `json:"VisitDetailLength,omitempty"`
	Age                      *NumericRange        `json:"Age,omitempty"`
	GenderCS                 *ConceptSetSelection `json:"GenderCS,omitempty"`
	ProviderSpecialtyCS      *ConceptSetSelection `json:"ProviderSpecialtyCS,omitempty"`
	PlaceOfServiceCS         *ConceptSetSelection `json:"PlaceOfServiceCS,omitempty"`
	PlaceOfServiceLocation   *int                 `json:"PlaceOfServiceLocation,omitempty"`
}

type LocationRegion struct {
	CriteriaBase
	CodesetID *int       `json:"CodesetId,omitempty"`
	StartDate *DateRange `json:"StartDate,omitempty"`
	EndDate   *DateRange `json:"EndDate,omitempty"`
}

// DemographicCriteria filters on person attributes. It carries no codeset
// and no nested correlated criteria.
type DemographicCriteria struct {
	Age                 *NumericRange `json:"Age,omitempty"`
	Gender              []Concept     `json:"Gender"`
	Race                []Concept     `json:"Race"`
	Ethnicity           []Concept     `json:"Ethnicity"`
	OccurrenceStartDate *DateRange    `json:"OccurrenceStartDate,omitempty"`
	OccurrenceEndDate   *DateRange    `json:"OccurrenceEndDate,omitempty"`
}

// IsEmpty reports whether no demographic attribute is set.
func (d *DemographicCriteria) IsEmpty() bool {
	return d.Age == nil && d.Gender == nil && d.Race == nil && d.Ethnicity == nil &&
		d.OccurrenceStartDate == nil && d.OccurrenceEndDate == nil
}

func (*ConditionEra) Kind() Kind        { return KindConditionEra }
func (*ConditionOccurrence) Kind() Kind { return KindConditionOccurrence }
func (*Death) Kind() Kind               { return KindDeath }
func (*DeviceExposure) Kind() Kind      { return KindDeviceExposure }
func (*DoseEra) Kind() Kind             { return KindDoseEra }
func (*DrugEra) Kind() Kind             { return KindDrugEra }
func (*DrugExposure) Kind() Kind        { return KindDrugExposure }
func (*Measurement) Kind() Kind         { return KindMeasurement }
func (*Observation) Kind() Kind         { return KindObservation }
func (*ObservationPeriod) Kind() Kind   { return KindObservationPeriod }
func (*PayerPlanPeriod) Kind() Kind     { return KindPayerPlanPeriod }
func (*ProcedureOccurrence) Kind() Kind { return KindProcedureOccurrence }
func (*Specimen) Kind() Kind            { return KindSpecimen }
func (*VisitOccurrence) Kind() Kind     { return KindVisitOccurrence }
func (*VisitDetail) Kind() Kind         { return KindVisitDetail }
func (*LocationRegion) Kind() Kind      { return KindLocationRegion }
func (*DemographicCriteria) Kind() Kind { return KindDemographic }

// Correlated implements Criteria. Demographic criteria never nest.
func (*DemographicCriteria) Correlated() *CriteriaGroup { return nil }

func (*DemographicCriteria) isCriteria() {}

// newCriteria allocates the zero value for kind, or nil if kind is unknown.
func newCriteria(kind Kind) Criteria {
	switch kind {
	case KindConditionEra:
		return &ConditionEra{}
	case KindConditionOccurrence:
		return &ConditionOccurrence{}
	case KindDeath:
		return &Death{}
	case KindDeviceExposure:
		return &DeviceExposure{}
	case KindDoseEra:
		return &DoseEra{}
	case KindDrugEra:
		return &DrugEra{}
	case KindDrugExposure:
		return &DrugExposure{}
	case KindMeasurement:
		return &Measurement{}
	case KindObservation:
		return &Observation{}
	case KindObservationPeriod:
		return &ObservationPeriod{}
	case KindPayerPlanPeriod:
		return &PayerPlanPeriod{}
	case KindProcedureOccurrence:
		return &ProcedureOccurrence{}
	case KindSpecimen:
		return &Specimen{}
	case KindVisitOccurrence:
		return &VisitOccurrence{}
	case KindVisitDetail:
		return &VisitDetail{}
	case KindLocationRegion:
		return &LocationRegion{}
	case KindDemographic:
		return &DemographicCriteria{}
	default:
		return nil
	}
}

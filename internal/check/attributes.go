package check

// Attribute names used in value warnings.
const (
	attrAge                  = "age"
	attrQuantity             = "quantity"
	attrOccurrenceStartDate  = "occurrence start date"
	attrOccurrenceEndDate    = "occurrence end date"
	attrEraStartDate         = "era start date"
	attrEraEndDate           = "era end date"
	attrDoseValue            = "dose value"
	attrEraLength            = "era length"
	attrAgeAtStart           = "age at start"
	attrAgeAtEnd             = "age at end"
	attrOccurrenceCount      = "occurrence count"
	attrGapDays              = "gap days"
	attrAgeAtEraStart        = "age at era start"
	attrAgeAtEraEnd          = "age at era end"
	attrRefills              = "refills"
	attrDaysSupply           = "days supply"
	attrEffectiveDrugDose    = "effective drug dose"
	attrValueAsNumber        = "value as number"
	attrRangeLow             = "range low"
	attrRangeHigh            = "range high"
	attrRangeLowRatio        = "range low ratio"
	attrRangeHighRatio       = "range high ratio"
	attrPeriodStartDate      = "period start date"
	attrPeriodEndDate        = "period end date"
	attrPeriodLength         = "period length"
	attrUserDefinedPeriod    = "user defined period"
	attrVisitLength          = "visit length"
	attrCensorWindow         = "censor window"
	attrGender               = "gender"
	attrRace                 = "race"
	attrEthnicity            = "ethnicity"
	attrVisitType            = "visit"
	attrProviderSpecialty    = "provider speciality"
	attrConditionType        = "condition type"
	attrDeathType            = "death type"
	attrDeviceType           = "device type"
	attrUnit                 = "unit"
	attrDrugType             = "drug type"
	attrRouteConcept         = "route concept"
	attrDoseUnit             = "dose unit"
	attrMeasurementType      = "measurement type"
	attrOperator             = "operator"
	attrValueAsConcept       = "value as concept"
	attrObservationType      = "observation type"
	attrQualifier            = "qualifier"
	attrPeriodType           = "period type"
	attrProcedureType        = "procedure type"
	attrModifier             = "modifier"
	attrSpecimenType         = "specimen type"
	attrAnatomicSite         = "anatomic site"
	attrDiseaseStatus        = "disease status"
	attrPlaceOfService       = "place of service"
	attrLocationRegionStart  = "location region start date"
	attrLocationRegionEnd    = "location region end date"
	attrStopReason           = "stop reason"
	attrUniqueDeviceID       = "unique device id"
	attrLotNumber            = "lot number"
	attrValueAsString        = "value as string"
	attrSourceID             = "source id"
	attrVisitDetailStartDate = "visit detail start date"
	attrVisitDetailEndDate   = "visit detail end date"
	attrVisitDetailLength    = "visit detail length"
	attrVisitDetailType      = "visit detail type"
)

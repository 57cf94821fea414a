package cohort

// CohortExpression is the root of the AST.
type CohortExpression struct {
	Title              string            `json:"Title,omitempty"`
	CDMVersionRange    string            `json:"cdmVersionRange,omitempty"`
	ConceptSets        []*ConceptSet     `json:"ConceptSets"`
	PrimaryCriteria    *PrimaryCriteria  `json:"PrimaryCriteria,omitempty"`
	AdditionalCriteria *CriteriaGroup    `json:"AdditionalCriteria,omitempty"`
	QualifiedLimit     *ResultLimit      `json:"QualifiedLimit,omitempty"`
	ExpressionLimit    *ResultLimit      `json:"ExpressionLimit,omitempty"`
	InclusionRules     []*InclusionRule  `json:"InclusionRules"`
	EndStrategy        EndStrategy       `json:"EndStrategy,omitempty"`
	CensoringCriteria  CriteriaList      `json:"CensoringCriteria"`
	CollapseSettings   *CollapseSettings `json:"CollapseSettings,omitempty"`
	CensorWindow       *Period           `json:"CensorWindow,omitempty"`
}

// ConceptSet returns the concept set with the given id, or nil.
func (e *CohortExpression) ConceptSet(id int) *ConceptSet {
	for _, cs := range e.ConceptSets {
		if cs != nil && cs.ID == id {
			return cs
		}
	}
	return nil
}

// PrimaryLimit returns the primary criteria limit, nil-safe.
func (e *CohortExpression) PrimaryLimit() *ResultLimit {
	if e.PrimaryCriteria == nil {
		return nil
	}
	return e.PrimaryCriteria.PrimaryCriteriaLimit
}

// PrimaryCriteria selects the index events.
type PrimaryCriteria struct {
	CriteriaList         CriteriaList       `json:"CriteriaList"`
	ObservationWindow    *ObservationWindow `json:"ObservationWindow,omitempty"`
	PrimaryCriteriaLimit *ResultLimit       `json:"PrimaryCriteriaLimit,omitempty"`
}

// ObservationWindow is the continuous observation required around the
// index event.
type ObservationWindow struct {
	PriorDays int `json:"PriorDays"`
	PostDays  int `json:"PostDays"`
}

// CollapseSettings controls how cohort eras are collapsed.
type CollapseSettings struct {
	CollapseType string `json:"CollapseType,omitempty"`
	EraPad       int    `json:"EraPad"`
}

// Group types.
const (
	GroupAll     = "ALL"
	GroupAny     = "ANY"
	GroupAtLeast = "AT_LEAST"
	GroupAtMost  = "AT_MOST"
)

// CriteriaGroup is a boolean combination of correlated criteria,
// demographic criteria and sub-groups. Groups form a tree.
type CriteriaGroup struct {
	Type                    string                 `json:"Type"`
	Count                   *int                   `json:"Count,omitempty"`
	CriteriaList            []*CorrelatedCriteria  `json:"CriteriaList"`
	DemographicCriteriaList []*DemographicCriteria `json:"DemographicCriteriaList"`
	Groups                  []*CriteriaGroup       `json:"Groups"`
}

// IsEmpty reports whether the group has nothing to evaluate.
func (g *CriteriaGroup) IsEmpty() bool {
	return g == nil || (len(g.CriteriaList) == 0 && len(g.DemographicCriteriaList) == 0 && len(g.Groups) == 0)
}

// CorrelatedCriteria is an event required or forbidden within a window of
// the index event. A nil Occurrence is a plain windowed criteria.
type CorrelatedCriteria struct {
	Criteria                Criteria    `json:"Criteria"`
	StartWindow             *Window     `json:"StartWindow,omitempty"`
	EndWindow               *Window     `json:"EndWindow,omitempty"`
	Occurrence              *Occurrence `json:"Occurrence,omitempty"`
	RestrictVisit           bool        `json:"RestrictVisit,omitempty"`
	IgnoreObservationPeriod bool        `json:"IgnoreObservationPeriod,omitempty"`
}

// InclusionRule is a named criteria group every cohort member must satisfy.
type InclusionRule struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Expression  *CriteriaGroup `json:"expression"`
}

// EndStrategy decides when a cohort era ends. Implementations are
// *DateOffsetStrategy and *CustomEraStrategy.
type EndStrategy interface {
	strategyName() string
}

// Date fields of a DateOffsetStrategy.
const (
	DateFieldStart = "StartDate"
	DateFieldEnd   = "EndDate"
)

// DateOffsetStrategy ends the era a fixed number of days after a date
// field of the index event.
type DateOffsetStrategy struct {
	DateField string `json:"DateField"`
	Offset    int    `json:"Offset"`
}

// CustomEraStrategy ends the era when continuous drug exposure ends.
type CustomEraStrategy struct {
	DrugCodesetID      *int `json:"DrugCodesetId,omitempty"`
	GapDays            int  `json:"GapDays"`
	Offset             int  `json:"Offset"`
	DaysSupplyOverride *int `json:"DaysSupplyOverride,omitempty"`
}

func (*DateOffsetStrategy) strategyName() string { return "DateOffset" }
func (*CustomEraStrategy) strategyName() string  { return "CustomEra" }

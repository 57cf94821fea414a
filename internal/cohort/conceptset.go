package cohort

// Concept is a vocabulary concept. Field names follow the OMOP CONCEPT
// table columns used on the wire.
type Concept struct {
	ConceptID       int64  `json:"CONCEPT_ID"`
	ConceptName     string `json:"CONCEPT_NAME,omitempty"`
	StandardConcept string `json:"STANDARD_CONCEPT,omitempty"`
	InvalidReason   string `json:"INVALID_REASON,omitempty"`
	ConceptCode     string `json:"CONCEPT_CODE,omitempty"`
	DomainID        string `json:"DOMAIN_ID,omitempty"`
	VocabularyID    string `json:"VOCABULARY_ID,omitempty"`
	ConceptClassID  string `json:"CONCEPT_CLASS_ID,omitempty"`
}

// SameCode reports whether two concepts share code, domain and vocabulary.
func (c Concept) SameCode(o Concept) bool {
	return c.ConceptCode == o.ConceptCode && c.DomainID == o.DomainID && c.VocabularyID == o.VocabularyID
}

// ConceptSetItem is one concept plus its expansion flags.
type ConceptSetItem struct {
	Concept            Concept `json:"concept"`
	IsExcluded         bool    `json:"isExcluded"`
	IncludeDescendants bool    `json:"includeDescendants"`
	IncludeMapped      bool    `json:"includeMapped"`
}

// ConceptSetExpression is the item list of a concept set.
type ConceptSetExpression struct {
	Items []ConceptSetItem `json:"items"`
}

// ConceptSet is a named, reusable collection of concepts referenced by id
// from criteria.
type ConceptSet struct {
	ID         int                   `json:"id"`
	Name       string                `json:"name"`
	Expression *ConceptSetExpression `json:"expression,omitempty"`
}

// Items returns the set's items, nil-safe.
func (cs *ConceptSet) Items() []ConceptSetItem {
	if cs == nil || cs.Expression == nil {
		return nil
	}
	return cs.Expression.Items
}

// SameConcepts reports whether both sets hold the same number of items and
// every item of cs matches some concept of o by code, domain and vocabulary.
func (cs *ConceptSet) SameConcepts(o *ConceptSet) bool {
	if cs.Expression == o.Expression {
		return true
	}
	a, b := cs.Items(), o.Items()
	if cs.Expression == nil || o.Expression == nil || len(a) != len(b) {
		return false
	}
	for _, item := range a {
		found := false
		for _, other := range b {
			if item.Concept.SameCode(other.Concept) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

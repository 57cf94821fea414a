package check

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/cohortcheck/internal/cohort"
)

const (
	warnUnusedConceptSet    = "Concept Set \"%s\" is not used"
	warnDuplicateConceptSet = "Concept set %s contains the same concepts like %s"
	warnEmptyConceptSet     = "Concept set %s contains no concepts"
	warnDrugNotForExit      = "%s %s used in initial event and not used for cohort exit criteria"
	warnNotDrugDomain       = "Concept set %s referenced by %s criteria in %s is not drawn from the Drug domain"
)

const drugDomain = "Drug"

// conceptSetRefs returns the ids of every concept set referenced anywhere in
// the expression.
func conceptSetRefs(expr *cohort.CohortExpression) map[int]bool {
	refs := make(map[int]bool)
	mark := func(id *int) {
		if id != nil {
			refs[*id] = true
		}
	}
	walkValues(expr, func(c cohort.Criteria, _ string) {
		mark(cohort.CodesetID(c))
		mark(cohort.SourceConcept(c))
		if vd, ok := c.(*cohort.VisitDetail); ok {
			for _, sel := range []*cohort.ConceptSetSelection{
				vd.VisitDetailTypeCS, vd.GenderCS, vd.ProviderSpecialtyCS, vd.PlaceOfServiceCS,
			} {
				if sel != nil {
					mark(sel.CodesetID)
				}
			}
		}
	})
	if era, ok := expr.EndStrategy.(*cohort.CustomEraStrategy); ok {
		mark(era.DrugCodesetID)
	}
	return refs
}

func checkUnusedConcepts(expr *cohort.CohortExpression, r *reporter) {
	refs := conceptSetRefs(expr)
	for _, cs := range expr.ConceptSets {
		if cs != nil && !refs[cs.ID] {
			r.addConceptSet(cs, warnUnusedConceptSet, cs.Name)
		}
	}
}

func checkEmptyConceptSet(expr *cohort.CohortExpression, r *reporter) {
	for _, cs := range expr.ConceptSets {
		if cs != nil && len(cs.Items()) == 0 {
			r.addConceptSet(cs, warnEmptyConceptSet, cs.Name)
		}
	}
}

// checkDuplicatesConceptSet reports each group of concept sets with equal
// concepts once, anchored on its first member.
func checkDuplicatesConceptSet(expr *cohort.CohortExpression, r *reporter) {
	sets := make([]*cohort.ConceptSet, 0, len(expr.ConceptSets))
	for _, cs := range expr.ConceptSets {
		if cs != nil {
			sets = append(sets, cs)
		}
	}

	reported := make([]bool, len(sets))
	for i := 0; i < len(sets)-1; i++ {
		if reported[i] {
			continue
		}
		var names []string
		for j := i + 1; j < len(sets); j++ {
			if sets[i].SameConcepts(sets[j]) {
				names = append(names, sets[j].Name)
				reported[j] = true
			}
		}
		if len(names) > 0 {
			r.addConceptSet(sets[i], warnDuplicateConceptSet, sets[i].Name, strings.Join(names, ", "))
		}
	}
}

// inDrugDomain reports whether any item of cs is a Drug-domain concept.
func inDrugDomain(cs *cohort.ConceptSet) bool {
	fold := cases.Fold()
	want := fold.String(drugDomain)
	for _, item := range cs.Items() {
		if fold.String(item.Concept.DomainID) == want {
			return true
		}
	}
	return false
}

// checkDrugDomain reports drug concept sets of the initial event that the
// exit strategy does not follow, and non-drug concept sets used by drug
// criteria.
func checkDrugDomain(expr *cohort.CohortExpression, r *reporter) {
	var exitID *int
	if era, ok := expr.EndStrategy.(*cohort.CustomEraStrategy); ok {
		exitID = era.DrugCodesetID
	}

	if expr.PrimaryCriteria != nil {
		seen := make(map[int]bool)
		var names []string
		for _, c := range expr.PrimaryCriteria.CriteriaList {
			if c == nil || !cohort.IsDrug(c) {
				continue
			}
			id := cohort.CodesetID(c)
			if id == nil || seen[*id] || (exitID != nil && *exitID == *id) {
				continue
			}
			seen[*id] = true
			if cs := expr.ConceptSet(*id); cs != nil && inDrugDomain(cs) {
				names = append(names, cs.Name)
			}
		}
		if len(names) > 0 {
			title := "Concept set"
			if len(names) > 1 {
				title = "Concept sets"
			}
			r.add(warnDrugNotForExit, title, strings.Join(names, ", "))
		}
	}

	walkLeaves(expr, func(c cohort.Criteria, group string) {
		if !cohort.IsDrug(c) {
			return
		}
		id := cohort.CodesetID(c)
		if id == nil {
			return
		}
		cs := expr.ConceptSet(*id)
		if cs == nil || len(cs.Items()) == 0 || inDrugDomain(cs) {
			return
		}
		r.add(warnNotDrugDomain, cs.Name, c.Kind().DisplayName(), group)
	})
}

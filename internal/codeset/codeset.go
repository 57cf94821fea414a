// Package codeset builds the SQL that expands concept sets into concept ids.
//
// A concept set item contributes its concept, optionally its descendants
// through CONCEPT_ANCESTOR and optionally the non-standard concepts that map
// to it through CONCEPT_RELATIONSHIP. Excluded items are built the same way
// and removed with an anti-join. The generated SQL uses the SQL Server
// flavored dialect and leaves @vocabulary_database_schema unbound, so it can
// be passed to sqlrender.Render and then sqlrender.Translator.
package codeset

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/cohortcheck/internal/cohort"
	"github.com/roach88/cohortcheck/internal/sqlrender"
)

// MaxInLength is the largest IN list Oracle accepts.
const MaxInLength = 1000

// emptyQuery selects nothing. It stands in for an include list with no
// concepts so the surrounding SQL stays valid.
const emptyQuery = "select concept_id from @vocabulary_database_schema.CONCEPT where 0=1"

var (
	//go:embed sql/conceptSetQuery.sql
	conceptSetQuery string
	//go:embed sql/conceptSetDescendants.sql
	conceptSetDescendants string
	//go:embed sql/conceptSetMapped.sql
	conceptSetMapped string
	//go:embed sql/conceptSetInclude.sql
	conceptSetInclude string
	//go:embed sql/conceptSetExclude.sql
	conceptSetExclude string
	//go:embed sql/codesets.sql
	codesetsTemplate string
)

// ErrNoConcepts is returned by BuildDescendantQuery for an empty id list.
var ErrNoConcepts = errors.New("must specify at least one concept")

// ErrUnknownConceptSet is returned when a requested concept set id does not
// exist in the expression.
var ErrUnknownConceptSet = errors.New("unknown concept set")

// selection is the concepts of one side (include or exclude) of a concept
// set, partitioned by expansion.
type selection struct {
	concepts          []int64
	descendants       []int64
	mapped            []int64
	mappedDescendants []int64
}

func (s *selection) add(item cohort.ConceptSetItem) {
	id := item.Concept.ConceptID
	s.concepts = append(s.concepts, id)
	if item.IncludeDescendants {
		s.descendants = append(s.descendants, id)
	}
	if item.IncludeMapped {
		s.mapped = append(s.mapped, id)
		if item.IncludeDescendants {
			s.mappedDescendants = append(s.mappedDescendants, id)
		}
	}
}

// BuildExpressionQuery returns a query selecting the concept ids of expr.
// An expression with no items yields "".
func BuildExpressionQuery(expr *cohort.ConceptSetExpression) (string, error) {
	if expr == nil || len(expr.Items) == 0 {
		return "", nil
	}

	var include, exclude selection
	for _, item := range expr.Items {
		if item.IsExcluded {
			exclude.add(item)
		} else {
			include.add(item)
		}
	}

	includeQuery, err := buildQuery(include)
	if err != nil {
		return "", err
	}
	query, err := sqlrender.Render(conceptSetInclude, []string{"includeQuery"}, []string{includeQuery})
	if err != nil {
		return "", fmt.Errorf("render include query: %w", err)
	}

	if len(exclude.concepts) > 0 {
		excludeQuery, err := buildQuery(exclude)
		if err != nil {
			return "", err
		}
		clause, err := sqlrender.Render(conceptSetExclude, []string{"excludeQuery"}, []string{excludeQuery})
		if err != nil {
			return "", fmt.Errorf("render exclude query: %w", err)
		}
		query += clause
	}
	return query, nil
}

// BuildDescendantQuery returns a query selecting every descendant of ids.
func BuildDescendantQuery(ids []int64) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoConcepts
	}
	return buildSubQuery(nil, ids)
}

// BuildCodesetsQuery returns a script that creates the #Codesets temp table
// and fills it with the concept ids of every set, tagged with the set id.
// Sets without items are skipped.
func BuildCodesetsQuery(sets []*cohort.ConceptSet) (string, error) {
	var inserts []string
	for _, cs := range sets {
		if cs == nil {
			continue
		}
		query, err := BuildExpressionQuery(cs.Expression)
		if err != nil {
			return "", fmt.Errorf("concept set %d: %w", cs.ID, err)
		}
		if query == "" {
			continue
		}
		inserts = append(inserts, fmt.Sprintf("SELECT %d as codeset_id, c.concept_id FROM (%s) C", cs.ID, strings.TrimSpace(query)))
	}

	return sqlrender.Render(codesetsTemplate,
		[]string{"has_codesets", "codeset_inserts"},
		[]string{strconv.FormatBool(len(inserts) > 0), strings.Join(inserts, "\nUNION ALL\n")})
}

// BuildCodesetQuery is BuildCodesetsQuery for the single concept set of
// sets with the given id.
func BuildCodesetQuery(sets []*cohort.ConceptSet, id int) (string, error) {
	i := slices.IndexFunc(sets, func(cs *cohort.ConceptSet) bool { return cs != nil && cs.ID == id })
	if i < 0 {
		return "", fmt.Errorf("%w: %d", ErrUnknownConceptSet, id)
	}
	return BuildCodesetsQuery(sets[i : i+1])
}

// SplitInClause returns "field in (...)" for ids, split into OR-joined
// chunks of at most maxSize ids. Several chunks are parenthesized so the
// result can be and-ed safely. An empty list yields a false condition.
func SplitInClause(field string, ids []int64, maxSize int) string {
	if len(ids) == 0 {
		return "0 = 1"
	}
	var clauses []string
	for chunk := range slices.Chunk(ids, max(maxSize, 1)) {
		strs := make([]string, len(chunk))
		for i, id := range chunk {
			strs[i] = strconv.FormatInt(id, 10)
		}
		clauses = append(clauses, fmt.Sprintf("%s in (%s)", field, strings.Join(strs, ",")))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

func buildQuery(s selection) (string, error) {
	if len(s.concepts) == 0 {
		return emptyQuery, nil
	}
	query, err := buildSubQuery(s.concepts, s.descendants)
	if err != nil {
		return "", err
	}
	if len(s.mapped) == 0 && len(s.mappedDescendants) == 0 {
		return query, nil
	}

	mapped, err := buildSubQuery(s.mapped, s.mappedDescendants)
	if err != nil {
		return "", err
	}
	mappedQuery, err := sqlrender.Render(conceptSetMapped, []string{"conceptsetQuery"}, []string{mapped})
	if err != nil {
		return "", fmt.Errorf("render mapped query: %w", err)
	}
	return query + "\nUNION\n" + strings.TrimSpace(mappedQuery), nil
}

// buildSubQuery unions the direct concepts with the descendants query.
func buildSubQuery(concepts, descendants []int64) (string, error) {
	var queries []string
	if len(concepts) > 0 {
		q, err := sqlrender.Render(conceptSetQuery,
			[]string{"conceptIdIn"},
			[]string{SplitInClause("concept_id", concepts, MaxInLength)})
		if err != nil {
			return "", fmt.Errorf("render concept query: %w", err)
		}
		queries = append(queries, strings.TrimSpace(q))
	}
	if len(descendants) > 0 {
		q, err := sqlrender.Render(conceptSetDescendants,
			[]string{"conceptIdIn"},
			[]string{SplitInClause("ca.ancestor_concept_id", descendants, MaxInLength)})
		if err != nil {
			return "", fmt.Errorf("render descendant query: %w", err)
		}
		queries = append(queries, strings.TrimSpace(q))
	}
	return strings.Join(queries, "\nUNION\n"), nil
}

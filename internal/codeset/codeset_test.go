package codeset

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohortcheck/internal/cohort"
	"github.com/roach88/cohortcheck/internal/sqlrender"
	"github.com/roach88/cohortcheck/internal/testutil"
)

func item(id int64, excluded, descendants, mapped bool) cohort.ConceptSetItem {
	return cohort.ConceptSetItem{
		Concept:            cohort.Concept{ConceptID: id},
		IsExcluded:         excluded,
		IncludeDescendants: descendants,
		IncludeMapped:      mapped,
	}
}

// mappedWithExclusion includes concept 1 with descendants and mapped
// concepts, and excludes concept 3.
func mappedWithExclusion() *cohort.ConceptSetExpression {
	return &cohort.ConceptSetExpression{Items: []cohort.ConceptSetItem{
		item(1, false, true, true),
		item(3, true, false, false),
	}}
}

func TestSplitInClause(t *testing.T) {
	assert.Equal(t, "0 = 1", SplitInClause("concept_id", nil, MaxInLength))
	assert.Equal(t, "concept_id in (1,2,3)", SplitInClause("concept_id", []int64{1, 2, 3}, MaxInLength))
	assert.Equal(t,
		"(c.id in (1,2) OR c.id in (3,4) OR c.id in (5))",
		SplitInClause("c.id", []int64{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, "x in (7)", SplitInClause("x", []int64{7}, 0))
}

func TestSplitInClause_OracleLimit(t *testing.T) {
	ids := make([]int64, 2500)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	clause := SplitInClause("concept_id", ids, MaxInLength)
	assert.Equal(t, 2, strings.Count(clause, " OR "))
	assert.True(t, strings.HasPrefix(clause, "(concept_id in (1,2,"))
	assert.Contains(t, clause, ",1000) OR concept_id in (1001,")
}

func TestBuildDescendantQuery(t *testing.T) {
	_, err := BuildDescendantQuery(nil)
	assert.ErrorIs(t, err, ErrNoConcepts)
	assert.EqualError(t, err, "must specify at least one concept")

	got, err := BuildDescendantQuery([]int64{123, 456})
	require.NoError(t, err)
	assert.Contains(t, got, "ca.ancestor_concept_id in (123,456)")
	assert.NotContains(t, got, "UNION")
}

func TestBuildExpressionQuery_Empty(t *testing.T) {
	got, err := BuildExpressionQuery(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = BuildExpressionQuery(&cohort.ConceptSetExpression{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildExpressionQuery_IncludeOnly(t *testing.T) {
	got, err := BuildExpressionQuery(&cohort.ConceptSetExpression{Items: []cohort.ConceptSetItem{
		item(10, false, false, false),
		item(20, false, false, false),
	}})
	require.NoError(t, err)

	assert.Contains(t, got, "where concept_id in (10,20)")
	assert.NotContains(t, got, "CONCEPT_ANCESTOR")
	assert.NotContains(t, got, "concept_relationship")
	assert.NotContains(t, got, "LEFT JOIN")
}

func TestBuildExpressionQuery_OnlyExclusions(t *testing.T) {
	got, err := BuildExpressionQuery(&cohort.ConceptSetExpression{Items: []cohort.ConceptSetItem{
		item(5, true, true, false),
	}})
	require.NoError(t, err)

	assert.Contains(t, got, emptyQuery)
	assert.Contains(t, got, "LEFT JOIN")
	assert.Contains(t, got, "ca.ancestor_concept_id in (5)")
}

func TestBuildExpressionQuery_Golden(t *testing.T) {
	got, err := BuildExpressionQuery(mappedWithExclusion())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "expression_query", []byte(got))
}

func TestBuildCodesetsQuery(t *testing.T) {
	sets := []*cohort.ConceptSet{
		{ID: 0, Name: "A", Expression: &cohort.ConceptSetExpression{Items: []cohort.ConceptSetItem{item(1, false, false, false)}}},
		{ID: 1, Name: "empty"},
		{ID: 2, Name: "B", Expression: &cohort.ConceptSetExpression{Items: []cohort.ConceptSetItem{item(2, false, false, false)}}},
	}

	got, err := BuildCodesetsQuery(sets)
	require.NoError(t, err)
	assert.Contains(t, got, "CREATE TABLE #Codesets")
	assert.Contains(t, got, "INSERT INTO #Codesets (codeset_id, concept_id)")
	assert.Contains(t, got, "SELECT 0 as codeset_id")
	assert.Contains(t, got, "SELECT 2 as codeset_id")
	assert.NotContains(t, got, "SELECT 1 as codeset_id")
	assert.Equal(t, 1, strings.Count(got, "UNION ALL"))
	assert.Contains(t, got, ") C\nUNION ALL\nSELECT 2 as codeset_id")
	assert.Len(t, sqlrender.Split(got), 2)
}

func TestBuildCodesetsQuery_NoSets(t *testing.T) {
	got, err := BuildCodesetsQuery(nil)
	require.NoError(t, err)
	assert.Contains(t, got, "CREATE TABLE #Codesets")
	assert.NotContains(t, got, "INSERT")
	assert.Len(t, sqlrender.Split(got), 1)
}

func TestBuildCodesetQuery(t *testing.T) {
	sets := []*cohort.ConceptSet{
		{ID: 4, Expression: mappedWithExclusion()},
		{ID: 5, Expression: &cohort.ConceptSetExpression{Items: []cohort.ConceptSetItem{item(9, false, false, false)}}},
	}

	got, err := BuildCodesetQuery(sets, 5)
	require.NoError(t, err)
	assert.Contains(t, got, "SELECT 5 as codeset_id")
	assert.NotContains(t, got, "SELECT 4 as codeset_id")

	_, err = BuildCodesetQuery(sets, 99)
	assert.ErrorIs(t, err, ErrUnknownConceptSet)
	assert.ErrorContains(t, err, "99")
}

// TestBuildCodesetsQuery_SQLite expands a concept set against a small
// vocabulary in SQLite.
func TestBuildCodesetsQuery_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	vocabulary := []string{
		"CREATE TABLE concept (concept_id INTEGER, invalid_reason TEXT)",
		"INSERT INTO concept VALUES (1, NULL), (2, NULL), (3, NULL), (4, NULL), (10, NULL)",
		"CREATE TABLE concept_ancestor (ancestor_concept_id INTEGER, descendant_concept_id INTEGER)",
		"INSERT INTO concept_ancestor VALUES (1, 1), (1, 2), (1, 3), (4, 4)",
		"CREATE TABLE concept_relationship (concept_id_1 INTEGER, concept_id_2 INTEGER, relationship_id TEXT, invalid_reason TEXT)",
		"INSERT INTO concept_relationship VALUES (10, 1, 'Maps to', NULL), (11, 4, 'Maps to', NULL)",
	}
	for _, stmt := range vocabulary {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	script, err := BuildCodesetsQuery([]*cohort.ConceptSet{{ID: 7, Expression: mappedWithExclusion()}})
	require.NoError(t, err)
	script, err = sqlrender.Render(script, []string{"vocabulary_database_schema"}, []string{"main"})
	require.NoError(t, err)

	table, err := sqlrender.DefaultPatterns()
	require.NoError(t, err)
	tr := sqlrender.NewTranslator(table, sqlrender.WithSessionIDs(testutil.NewFixedIDs("s1")))
	script, err = tr.Translate(script, "sqlite", sqlrender.TranslateOptions{})
	require.NoError(t, err)

	for _, stmt := range sqlrender.Split(script) {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	rows, err := db.Query("SELECT codeset_id, concept_id FROM temp.Codesets ORDER BY concept_id")
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var codesetID, conceptID int64
		require.NoError(t, rows.Scan(&codesetID, &conceptID))
		got = append(got, fmt.Sprintf("%d:%d", codesetID, conceptID))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"7:1", "7:2", "7:10"}, got)
}

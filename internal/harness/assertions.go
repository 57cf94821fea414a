package harness

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/cohortcheck/internal/check"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Warnings []check.Warning // All findings for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Warnings) > 0 {
		fmt.Fprintf(&buf, "\nAll warnings:\n")
		for i, w := range e.Warnings {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", i+1, w.Severity, w.Message)
		}
	}

	return buf.String()
}

// severityFilter returns a predicate for the assertion's severity, or nil
// when the assertion has none. Severities are validated at load time.
func severityFilter(assertion Assertion) func(check.Warning) bool {
	if assertion.Severity == "" {
		return nil
	}
	want, err := check.ParseSeverity(assertion.Severity)
	if err != nil {
		return func(check.Warning) bool { return false }
	}
	return func(w check.Warning) bool { return w.Severity == want }
}

// assertWarningContains checks that a warning with the exact message (and
// severity, if given) was reported.
func assertWarningContains(warnings []check.Warning, assertion Assertion) error {
	match := severityFilter(assertion)
	for _, w := range warnings {
		if w.Message == assertion.Message && (match == nil || match(w)) {
			return nil
		}
	}

	expected := fmt.Sprintf("warning %q", assertion.Message)
	if assertion.Severity != "" {
		expected += " with severity " + strings.ToUpper(assertion.Severity)
	}
	return &AssertionError{
		Type:     AssertWarningContains,
		Expected: expected,
		Actual:   "not reported",
		Warnings: warnings,
	}
}

// assertWarningOrder checks if messages appear in the specified order.
// Messages don't need to be consecutive (intervening warnings are allowed).
func assertWarningOrder(warnings []check.Warning, assertion Assertion) error {
	// Step 1: Find first position of each expected message
	positions := make(map[string]int)
	for i, w := range warnings {
		if _, seen := positions[w.Message]; !seen {
			positions[w.Message] = i + 1 // 1-indexed for readability
		}
	}

	// Step 2: Verify all messages found
	for _, msg := range assertion.Messages {
		if positions[msg] == 0 {
			return &AssertionError{
				Type:     AssertWarningOrder,
				Expected: fmt.Sprintf("all messages present: %q", assertion.Messages),
				Actual:   fmt.Sprintf("missing message: %q", msg),
				Warnings: warnings,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Messages); i++ {
		prev := assertion.Messages[i-1]
		curr := assertion.Messages[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertWarningOrder,
				Expected: fmt.Sprintf("messages in order: %q", assertion.Messages),
				Actual: fmt.Sprintf("%q (pos %d) should be before %q (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Warnings: warnings,
			}
		}
	}

	return nil
}

// assertWarningCount checks that exactly Count warnings were reported.
func assertWarningCount(warnings []check.Warning, assertion Assertion) error {
	match := severityFilter(assertion)
	count := 0
	for _, w := range warnings {
		if match == nil || match(w) {
			count++
		}
	}

	if count != assertion.Count {
		what := "warnings"
		if assertion.Severity != "" {
			what = strings.ToUpper(assertion.Severity) + " warnings"
		}
		return &AssertionError{
			Type:     AssertWarningCount,
			Expected: fmt.Sprintf("%d %s", assertion.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
			Warnings: warnings,
		}
	}

	return nil
}

// queryRows runs a SELECT over the assertion's table and where clause.
//
// Security: Table and column names are validated against a whitelist pattern
// to prevent SQL injection via identifier interpolation.
func queryRows(ctx context.Context, db *sql.DB, assertion Assertion, columns string) (*sql.Rows, error) {
	if !validIdentifier.MatchString(assertion.Table) {
		return nil, fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", columns, assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	return db.QueryContext(ctx, query, whereArgs...)
}

// assertRowCount checks that Table holds exactly Count rows matching Where.
func assertRowCount(ctx context.Context, db *sql.DB, assertion Assertion) error {
	rows, err := queryRows(ctx, db, assertion, "COUNT(*)")
	if err != nil {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	var count int
	if !rows.Next() {
		return fmt.Errorf("count rows: %w", rows.Err())
	}
	if err := rows.Scan(&count); err != nil {
		return fmt.Errorf("scan count: %w", err)
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s where %s", assertion.Count, assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   fmt.Sprintf("%d rows", count),
		}
	}
	return nil
}

// assertFinalState checks if the final state table contains expected values.
// Exactly one row must match Where; Expect is checked with subset semantics.
func assertFinalState(ctx context.Context, db *sql.DB, assertion Assertion) error {
	rows, err := queryRows(ctx, db, assertion, "*")
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	whereDesc := formatWhereClause(assertion.Where)
	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, whereDesc),
			Actual:   "row not found",
		}
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	// Check for multiple matching rows (would indicate ambiguous assertion)
	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, whereDesc),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := make(map[string]any, len(columns))
	for i, col := range columns {
		actualRow[col] = values[i]
	}

	for _, key := range sortedKeys(assertion.Expect) {
		expectedValue := assertion.Expect[key]
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}

		if !stateValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expectedValue, expectedValue),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}

	return nil
}

// buildWhereClause constructs parameterized WHERE clause from assertion.Where.
// Returns SQL fragment, arguments slice, and error. Keys are sorted for determinism.
//
// Security: Column names are validated against a whitelist pattern to prevent
// SQL injection via identifier interpolation.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML scalar to a SQL-compatible value.
func toSQLValue(v any) any {
	switch val := v.(type) {
	case string, int, int64, bool, float64:
		return val
	default:
		// For other types, convert to string
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stateValuesEqual compares expected and actual values from state tables.
// Handles type coercion for SQLite values which may be returned as different types.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	switch exp := expected.(type) {
	case string:
		switch act := actual.(type) {
		case string:
			return exp == act
		case []byte:
			return exp == string(act)
		}
		return false
	case int:
		if actualInt, ok := actual.(int64); ok {
			return int64(exp) == actualInt
		}
		if actualInt, ok := actual.(int); ok {
			return exp == actualInt
		}
		return false
	case int64:
		if actualInt, ok := actual.(int64); ok {
			return exp == actualInt
		}
		return false
	case bool:
		if actualBool, ok := actual.(bool); ok {
			return exp == actualBool
		}
		// SQLite stores booleans as integers
		if actualInt, ok := actual.(int64); ok {
			return exp == (actualInt != 0)
		}
		return false
	}

	// Fallback to DeepEqual for complex types
	return reflect.DeepEqual(expected, actual)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	DB  *sql.DB
	Ctx context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertWarningContains:
			err = assertWarningContains(result.Warnings, assertion)
		case AssertWarningOrder:
			err = assertWarningOrder(result.Warnings, assertion)
		case AssertWarningCount:
			err = assertWarningCount(result.Warnings, assertion)
		case AssertRowCount, AssertFinalState:
			switch {
			case actx == nil || actx.DB == nil:
				err = fmt.Errorf("assertion[%d]: %s requires database context", i, assertion.Type)
			case assertion.Type == AssertRowCount:
				err = assertRowCount(actx.Ctx, actx.DB, assertion)
			default:
				err = assertFinalState(actx.Ctx, actx.DB, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

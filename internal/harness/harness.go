package harness

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/cohortcheck/internal/check"
	"github.com/roach88/cohortcheck/internal/codeset"
	"github.com/roach88/cohortcheck/internal/cohort"
	"github.com/roach88/cohortcheck/internal/sqlrender"
	"github.com/roach88/cohortcheck/internal/testutil"
)

// vocabularySchema is the schema the vocabulary script fills. SQLite
// names its main database "main".
const vocabularySchema = "main"

// Harness is the test execution engine.
// It runs scenarios with a fixed session id against an isolated database.
type Harness struct {
	db         *sql.DB
	checker    *check.Checker
	translator *sqlrender.Translator
	logger     *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the cohort expression
// 2. Check it with the scenario's rules
// 3. Load the vocabulary and run the #Codesets SQL (codesets scenarios)
// 4. Evaluate assertions
// 5. Return result with pass/fail, findings and errors
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context for the database work.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	expr, err := loadExpression(scenario.Expression)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		checker: check.New(check.WithLogger(logger), check.WithDisabled(scenario.DisabledRules...)),
		logger:  logger,
	}

	result := NewResult()
	h.executeCheck(expr, result)

	if scenario.Codesets {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory database: %w", err)
		}
		defer db.Close()
		// Temp tables live on one connection.
		db.SetMaxOpenConns(1)
		h.db = db

		sessionID := scenario.SessionID
		if sessionID == "" {
			sessionID = defaultSessionID
		}
		table, err := sqlrender.DefaultPatterns()
		if err != nil {
			return nil, fmt.Errorf("failed to load replacement patterns: %w", err)
		}
		h.translator = sqlrender.NewTranslator(table,
			sqlrender.WithLogger(logger),
			sqlrender.WithSessionIDs(testutil.NewFixedIDs(sessionID)))

		if err := h.loadVocabulary(ctx, scenario.Vocabulary); err != nil {
			return nil, fmt.Errorf("failed to load vocabulary: %w", err)
		}
		if err := h.executeCodesets(ctx, expr, result); err != nil {
			return nil, fmt.Errorf("failed to build codesets: %w", err)
		}
	}

	actx := &AssertionContext{
		DB:  h.db,
		Ctx: ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeCheck runs the checker. A failed rule fails the scenario but the
// findings of the other rules are kept.
func (h *Harness) executeCheck(expr *cohort.CohortExpression, result *Result) {
	warnings, err := h.checker.Check(expr)
	result.Warnings = append(result.Warnings, warnings...)
	if err == nil {
		return
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		result.RuleErrors = append(result.RuleErrors, e.Error())
		result.AddError(e.Error())
	}
}

// loadVocabulary runs the statements of the vocabulary script.
func (h *Harness) loadVocabulary(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for i, stmt := range sqlrender.Split(string(data)) {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// executeCodesets builds the #Codesets script, translates it to SQLite,
// runs it and reads the table back.
func (h *Harness) executeCodesets(ctx context.Context, expr *cohort.CohortExpression, result *Result) error {
	script, err := codeset.BuildCodesetsQuery(expr.ConceptSets)
	if err != nil {
		return err
	}
	script, err = sqlrender.Render(script, []string{"vocabulary_database_schema"}, []string{vocabularySchema})
	if err != nil {
		return err
	}
	script, err = h.translator.Translate(script, "sqlite", sqlrender.TranslateOptions{})
	if err != nil {
		return err
	}

	for i, stmt := range sqlrender.Split(script) {
		h.logger.Debug("executing statement", "index", i, "sql", stmt)
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
		result.Statements = append(result.Statements, stmt)
	}

	rows, err := h.db.QueryContext(ctx, "SELECT codeset_id, concept_id FROM Codesets ORDER BY codeset_id, concept_id")
	if err != nil {
		return fmt.Errorf("query codesets: %w", err)
	}
	defer rows.Close()

	result.Codesets = []CodesetRow{}
	for rows.Next() {
		var row CodesetRow
		if err := rows.Scan(&row.CodesetID, &row.ConceptID); err != nil {
			return fmt.Errorf("scan codesets: %w", err)
		}
		result.Codesets = append(result.Codesets, row)
	}
	return rows.Err()
}

// loadExpression reads a JSON or YAML cohort expression.
func loadExpression(path string) (*cohort.CohortExpression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expression: %w", err)
	}

	var expr *cohort.CohortExpression
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		expr, err = cohort.Parse(data)
	case ".yaml", ".yml":
		expr, err = cohort.ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported expression file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression %s: %w", path, err)
	}
	return expr, nil
}

package sqlrender

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// SQLServer is the source dialect. Translating to it is a no-op.
const SQLServer = "sql server"

const (
	sessionIDPlaceholder  = "%session_id%"
	tempSchemaPlaceholder = "%temp_schema%"
	defaultTempSchema     = "temp"
	statementSeparator    = ";\n\n"
)

// TranslateOptions carries per-call values for the placeholders some
// dialect patterns emit.
type TranslateOptions struct {
	// SessionID replaces %session_id%. A fresh id is generated when empty.
	SessionID string

	// TempSchema replaces %temp_schema%. Defaults to "temp".
	TempSchema string
}

// Translator rewrites SQL Server flavored SQL into another dialect.
//
// Thread-safety: a Translator holds no mutable state and is safe for
// concurrent use.
type Translator struct {
	patterns *PatternTable
	sessions SessionIDGenerator
	logger   *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger for translation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = l
	}
}

// WithSessionIDs sets the generator used when TranslateOptions.SessionID is
// empty.
func WithSessionIDs(g SessionIDGenerator) Option {
	return func(t *Translator) {
		t.sessions = g
	}
}

// NewTranslator creates a Translator over the given pattern table.
func NewTranslator(patterns *PatternTable, opts ...Option) *Translator {
	t := &Translator{
		patterns: patterns,
		sessions: RandomSessionIDs{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Dialects returns every dialect the translator accepts, sorted, including
// the no-op source dialect.
func (t *Translator) Dialects() []string {
	set := map[string]bool{SQLServer: true}
	for _, d := range t.patterns.Dialects() {
		set[d] = true
	}
	for d := range structuralPasses {
		set[d] = true
	}
	return slices.Sorted(maps.Keys(set))
}

// Translate rewrites sql for dialect. An empty dialect or "sql server"
// returns sql unchanged. Otherwise sql is split into statements, each
// statement gets the dialect's patterns and structural passes, and the
// statements are joined with ";\n\n".
func (t *Translator) Translate(sql, dialect string, opts TranslateOptions) (string, error) {
	key := dialectKey(dialect)
	if key == "" || key == SQLServer {
		return sql, nil
	}

	patterns := t.patterns.For(key)
	pass := structuralPasses[key]
	if len(patterns) == 0 && pass == nil {
		return "", &Error{
			Code:      ErrCodeUnknownDialect,
			Message:   "no replacement patterns for dialect",
			Parameter: dialect,
		}
	}

	statements := Split(sql)
	for i, stmt := range statements {
		for _, p := range patterns {
			stmt = p.Source.ReplaceAllString(stmt, p.Replacement)
		}
		if pass != nil {
			stmt = pass(stmt)
		}
		statements[i] = stmt
	}
	out := strings.Join(statements, statementSeparator)

	if strings.Contains(out, sessionIDPlaceholder) {
		id := opts.SessionID
		if id == "" {
			id = t.sessions.Generate()
		}
		out = strings.ReplaceAll(out, sessionIDPlaceholder, id)
	}
	if strings.Contains(out, tempSchemaPlaceholder) {
		schema := opts.TempSchema
		if schema == "" {
			schema = defaultTempSchema
		}
		out = strings.ReplaceAll(out, tempSchemaPlaceholder, schema)
	}

	t.logger.Debug("translated sql",
		"dialect", key,
		"statements", len(statements),
		"patterns", len(patterns))
	return out, nil
}

package sqlrender

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

//go:embed replacementPatterns.csv
var replacementPatterns string

// Pattern is one row of a replacement table: every match of Source in a
// statement translated to Dialect is replaced with Replacement, which may
// refer to submatches as ${1}.
type Pattern struct {
	Source      *regexp.Regexp
	Dialect     string
	Replacement string
}

// PatternTable holds replacement patterns grouped by target dialect, in
// file order. It is immutable once loaded.
type PatternTable struct {
	byDialect map[string][]Pattern
	dialects  []string
}

// LoadPatterns reads a CSV table with the columns source, targetDialect and
// replacement. The first row is a header and is skipped. Extra columns are
// ignored.
func LoadPatterns(r io.Reader) (*PatternTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return &PatternTable{byDialect: map[string][]Pattern{}}, nil
		}
		return nil, fmt.Errorf("read pattern header: %w", err)
	}

	table := &PatternTable{byDialect: make(map[string][]Pattern)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read patterns: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) < 3 {
			return nil, &Error{
				Code:    ErrCodePatternSyntax,
				Message: fmt.Sprintf("line %d: want 3 columns, got %d", line, len(record)),
				Excerpt: strings.Join(record, ","),
			}
		}
		re, err := regexp.Compile(record[0])
		if err != nil {
			return nil, &Error{
				Code:    ErrCodePatternSyntax,
				Message: fmt.Sprintf("line %d: %v", line, err),
				Excerpt: record[0],
			}
		}
		dialect := dialectKey(record[1])
		if _, seen := table.byDialect[dialect]; !seen {
			table.dialects = append(table.dialects, dialect)
		}
		table.byDialect[dialect] = append(table.byDialect[dialect], Pattern{
			Source:      re,
			Dialect:     dialect,
			Replacement: record[2],
		})
	}
	slices.Sort(table.dialects)
	return table, nil
}

// For returns the patterns for dialect in table order. Dialect names are
// matched without regard to case.
func (t *PatternTable) For(dialect string) []Pattern {
	return t.byDialect[dialectKey(dialect)]
}

// Dialects returns the target dialects of the table, sorted.
func (t *PatternTable) Dialects() []string {
	return slices.Clone(t.dialects)
}

// Len returns the number of patterns in the table.
func (t *PatternTable) Len() int {
	n := 0
	for _, p := range t.byDialect {
		n += len(p)
	}
	return n
}

var (
	defaultOnce  sync.Once
	defaultTable *PatternTable
	defaultErr   error
)

// DefaultPatterns returns the embedded pattern table, loading it on first
// use.
func DefaultPatterns() (*PatternTable, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = LoadPatterns(strings.NewReader(replacementPatterns))
		if defaultErr == nil {
			slog.Debug("loaded replacement patterns",
				"patterns", defaultTable.Len(),
				"dialects", defaultTable.dialects)
		}
	})
	return defaultTable, defaultErr
}

// dialectKey normalizes a dialect name for lookups.
func dialectKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

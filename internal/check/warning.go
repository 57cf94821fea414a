package check

import (
	"fmt"
	"strings"

	"github.com/roach88/cohortcheck/internal/cohort"
)

// Severity ranks a warning. Higher is worse.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

var severityNames = []string{"INFO", "WARNING", "CRITICAL"}

// String returns the wire name of the severity.
func (s Severity) String() string {
	if s < SeverityInfo || s > SeverityCritical {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity maps a severity name onto its value, ignoring case.
func ParseSeverity(name string) (Severity, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range severityNames {
		if n == upper {
			return Severity(i), nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q (want INFO, WARNING or CRITICAL)", name)
}

// WarningType distinguishes plain warnings from concept-set warnings.
type WarningType string

const (
	TypeDefault    WarningType = "DefaultWarning"
	TypeConceptSet WarningType = "ConceptSetWarning"
)

// Warning is one finding of one rule.
type Warning struct {
	Type     WarningType `json:"type"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`

	// ConceptSet is set for TypeConceptSet warnings only.
	ConceptSet *cohort.ConceptSet `json:"conceptSet,omitempty"`
}

// reporter appends warnings with a fixed severity to a caller-owned slice.
type reporter struct {
	severity Severity
	out      *[]Warning
}

func (r *reporter) add(template string, args ...any) {
	*r.out = append(*r.out, Warning{
		Type:     TypeDefault,
		Severity: r.severity,
		Message:  fmt.Sprintf(template, args...),
	})
}

func (r *reporter) addConceptSet(cs *cohort.ConceptSet, template string, args ...any) {
	*r.out = append(*r.out, Warning{
		Type:       TypeConceptSet,
		Severity:   r.severity,
		Message:    fmt.Sprintf(template, args...),
		ConceptSet: cs,
	})
}

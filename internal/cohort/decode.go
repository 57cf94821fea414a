package cohort

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"sigs.k8s.io/yaml"
)

// DecodeError reports a cohort expression that cannot be mapped onto the AST.
type DecodeError struct {
	// Code identifies the error category.
	Code DecodeErrorCode

	// Path is the wire key that failed to decode, if known.
	Path string

	// Message is a human-readable description.
	Message string
}

// DecodeErrorCode categorizes decode errors.
type DecodeErrorCode string

const (
	// ErrCodeUnknownCriteria indicates a criteria wrapper naming no known variant.
	ErrCodeUnknownCriteria DecodeErrorCode = "UNKNOWN_CRITERIA"

	// ErrCodeMalformedCriteria indicates a criteria wrapper without exactly one key.
	ErrCodeMalformedCriteria DecodeErrorCode = "MALFORMED_CRITERIA"

	// ErrCodeUnknownEndStrategy indicates an end strategy naming no known variant.
	ErrCodeUnknownEndStrategy DecodeErrorCode = "UNKNOWN_END_STRATEGY"

	// ErrCodeInvalidLimit indicates a result limit type outside None/First/Last/All.
	ErrCodeInvalidLimit DecodeErrorCode = "INVALID_LIMIT"
)

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDecodeError returns true if err is a DecodeError with the given code.
// Uses errors.As to handle wrapped errors.
func IsDecodeError(err error, code DecodeErrorCode) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Parse decodes a JSON cohort expression.
func Parse(data []byte) (*CohortExpression, error) {
	var expr CohortExpression
	if err := json.Unmarshal(data, &expr); err != nil {
		return nil, fmt.Errorf("decode cohort expression: %w", err)
	}
	return &expr, nil
}

// ParseYAML decodes a YAML cohort expression. The document is converted to
// JSON first so the same wire decoders apply.
func ParseYAML(data []byte) (*CohortExpression, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return Parse(js)
}

// KindOf returns the variant tag of c.
func KindOf(c Criteria) Kind {
	return c.Kind()
}

// CriteriaList is a list of criteria in circe's single-key wrapper form:
// [{"ConditionOccurrence": {...}}, ...].
type CriteriaList []Criteria

// UnmarshalJSON implements json.Unmarshaler.
func (l *CriteriaList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	if raws == nil {
		*l = nil
		return nil
	}
	out := make(CriteriaList, 0, len(raws))
	for i, raw := range raws {
		c, err := decodeCriteria(raw)
		if err != nil {
			return withIndex(err, i)
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l CriteriaList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	out := make([]map[Kind]Criteria, 0, len(l))
	for _, c := range l {
		out = append(out, map[Kind]Criteria{c.Kind(): c})
	}
	return json.Marshal(out)
}

func withIndex(err error, i int) error {
	var de *DecodeError
	if errors.As(err, &de) {
		path := fmt.Sprintf("[%d]", i)
		if de.Path != "" {
			path += "." + de.Path
		}
		return &DecodeError{Code: de.Code, Path: path, Message: de.Message}
	}
	return err
}

// decodeCriteria decodes one single-key criteria wrapper.
func decodeCriteria(raw json.RawMessage) (Criteria, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	if len(wrapper) != 1 {
		return nil, &DecodeError{
			Code:    ErrCodeMalformedCriteria,
			Message: fmt.Sprintf("criteria wrapper must have exactly one key, got %d", len(wrapper)),
		}
	}
	for key, body := range wrapper {
		c := newCriteria(Kind(key))
		if c == nil {
			return nil, &DecodeError{
				Code:    ErrCodeUnknownCriteria,
				Path:    key,
				Message: fmt.Sprintf("unknown criteria type %q", key),
			}
		}
		if err := json.Unmarshal(body, c); err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Path = joinPath(key, de.Path)
				return nil, de
			}
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return c, nil
	}
	panic("unreachable")
}

func joinPath(parent, child string) string {
	switch {
	case child == "":
		return parent
	case strings.HasPrefix(child, "["):
		return parent + child
	default:
		return parent + "." + child
	}
}

type correlatedAlias CorrelatedCriteria

// UnmarshalJSON implements json.Unmarshaler.
func (c *CorrelatedCriteria) UnmarshalJSON(data []byte) error {
	aux := struct {
		Criteria json.RawMessage `json:"Criteria"`
		*correlatedAlias
	}{correlatedAlias: (*correlatedAlias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Criteria = nil
	if len(aux.Criteria) == 0 || bytes.Equal(aux.Criteria, []byte("null")) {
		return nil
	}
	crit, err := decodeCriteria(aux.Criteria)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = joinPath("Criteria", de.Path)
			return de
		}
		return err
	}
	c.Criteria = crit
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c CorrelatedCriteria) MarshalJSON() ([]byte, error) {
	aux := struct {
		Criteria map[Kind]Criteria `json:"Criteria,omitempty"`
		correlatedAlias
	}{correlatedAlias: correlatedAlias(c)}
	if c.Criteria != nil {
		aux.Criteria = map[Kind]Criteria{c.Criteria.Kind(): c.Criteria}
	}
	return json.Marshal(aux)
}

type expressionAlias CohortExpression

// UnmarshalJSON implements json.Unmarshaler.
func (e *CohortExpression) UnmarshalJSON(data []byte) error {
	aux := struct {
		EndStrategy json.RawMessage `json:"EndStrategy"`
		*expressionAlias
	}{expressionAlias: (*expressionAlias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.EndStrategy = nil
	if len(aux.EndStrategy) == 0 || bytes.Equal(aux.EndStrategy, []byte("null")) {
		return nil
	}
	strategy, err := decodeEndStrategy(aux.EndStrategy)
	if err != nil {
		return err
	}
	e.EndStrategy = strategy
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e CohortExpression) MarshalJSON() ([]byte, error) {
	aux := struct {
		EndStrategy map[string]EndStrategy `json:"EndStrategy,omitempty"`
		expressionAlias
	}{expressionAlias: expressionAlias(e)}
	if e.EndStrategy != nil {
		aux.EndStrategy = map[string]EndStrategy{e.EndStrategy.strategyName(): e.EndStrategy}
	}
	return json.Marshal(aux)
}

func decodeEndStrategy(raw json.RawMessage) (EndStrategy, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	if len(wrapper) == 0 {
		return nil, nil
	}
	if len(wrapper) > 1 {
		return nil, &DecodeError{
			Code:    ErrCodeUnknownEndStrategy,
			Path:    "EndStrategy",
			Message: fmt.Sprintf("end strategy must have exactly one key, got %d", len(wrapper)),
		}
	}
	for key, body := range wrapper {
		var s EndStrategy
		switch key {
		case "DateOffset":
			s = &DateOffsetStrategy{}
		case "CustomEra":
			s = &CustomEraStrategy{}
		default:
			return nil, &DecodeError{
				Code:    ErrCodeUnknownEndStrategy,
				Path:    "EndStrategy",
				Message: fmt.Sprintf("unknown end strategy %q", key),
			}
		}
		if err := json.Unmarshal(body, s); err != nil {
			return nil, fmt.Errorf("EndStrategy.%s: %w", key, err)
		}
		return s, nil
	}
	panic("unreachable")
}

// LimitType selects which events per person a limit keeps.
type LimitType int

// Wire values: 0 none, 1 first, 2 last, 3 all.
const (
	LimitNone LimitType = iota
	LimitFirst
	LimitLast
	LimitAll
)

var limitNames = []string{"None", "First", "Last", "All"}

// String returns the wire name of the limit type.
func (t LimitType) String() string {
	if t < LimitNone || t > LimitAll {
		return "LimitType(" + strconv.Itoa(int(t)) + ")"
	}
	return limitNames[t]
}

// ParseLimitType maps a limit name onto its LimitType, ignoring case.
func ParseLimitType(name string) (LimitType, bool) {
	folder := cases.Fold()
	want := folder.String(name)
	for i, n := range limitNames {
		if folder.String(n) == want {
			return LimitType(i), true
		}
	}
	return LimitNone, false
}

// ResultLimit limits the events kept per person. Type arrives either as a
// name or as a number; the original spelling is kept for re-encoding.
type ResultLimit struct {
	Type    LimitType
	Count   int
	numeric bool
}

// IsAll reports whether every event is kept. A nil limit keeps none.
func (l *ResultLimit) IsAll() bool {
	return l != nil && l.Type == LimitAll
}

// TypeOf returns the limit type, treating nil as LimitNone.
func (l *ResultLimit) TypeOf() LimitType {
	if l == nil {
		return LimitNone
	}
	return l.Type
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ResultLimit) UnmarshalJSON(data []byte) error {
	var aux struct {
		Type  json.RawMessage `json:"Type"`
		Count int             `json:"Count"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.Count = aux.Count
	l.Type, l.numeric = LimitNone, false
	if len(aux.Type) == 0 || bytes.Equal(aux.Type, []byte("null")) {
		return nil
	}

	var name string
	if err := json.Unmarshal(aux.Type, &name); err == nil {
		t, ok := ParseLimitType(name)
		if !ok {
			return &DecodeError{Code: ErrCodeInvalidLimit, Path: "Type", Message: fmt.Sprintf("unknown limit type %q", name)}
		}
		l.Type = t
		return nil
	}

	var n int
	if err := json.Unmarshal(aux.Type, &n); err != nil {
		return &DecodeError{Code: ErrCodeInvalidLimit, Path: "Type", Message: "limit type must be a name or a number"}
	}
	if n < int(LimitNone) || n > int(LimitAll) {
		return &DecodeError{Code: ErrCodeInvalidLimit, Path: "Type", Message: fmt.Sprintf("limit type %d out of range 0..3", n)}
	}
	l.Type, l.numeric = LimitType(n), true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l ResultLimit) MarshalJSON() ([]byte, error) {
	aux := struct {
		Type  any `json:"Type"`
		Count int `json:"Count,omitempty"`
	}{Type: l.Type.String(), Count: l.Count}
	if l.numeric {
		aux.Type = int(l.Type)
	}
	return json.Marshal(aux)
}

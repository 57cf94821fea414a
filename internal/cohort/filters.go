package cohort

import (
	"math"
	"strings"
)

// Range operators shared by NumericRange and DateRange.
const (
	OpEq         = "eq"
	OpLt         = "lt"
	OpLte        = "lte"
	OpGt         = "gt"
	OpGte        = "gte"
	OpBetween    = "bt"
	OpNotBetween = "!bt"
)

// NumericRange filters a numeric attribute. Between operators use both
// Value and Extent.
type NumericRange struct {
	Value  *float64 `json:"Value,omitempty"`
	Op     string   `json:"Op,omitempty"`
	Extent *float64 `json:"Extent,omitempty"`
}

// IsBetween reports whether Op is "bt" or "!bt".
func (r *NumericRange) IsBetween() bool {
	return strings.HasSuffix(r.Op, OpBetween)
}

// DateRange filters a date attribute. Dates are YYYY-MM-DD strings.
type DateRange struct {
	Value  *string `json:"Value,omitempty"`
	Op     string  `json:"Op,omitempty"`
	Extent *string `json:"Extent,omitempty"`
}

// IsBetween reports whether Op is "bt" or "!bt".
func (r *DateRange) IsBetween() bool {
	return strings.HasSuffix(r.Op, OpBetween)
}

// Period is a closed date interval.
type Period struct {
	StartDate *string `json:"StartDate,omitempty"`
	EndDate   *string `json:"EndDate,omitempty"`
}

// TextFilter matches a free-text attribute.
type TextFilter struct {
	Text *string `json:"Text,omitempty"`
	Op   string  `json:"Op,omitempty"`
}

// ConceptSetSelection restricts an attribute to a concept set.
type ConceptSetSelection struct {
	CodesetID   *int `json:"CodesetId,omitempty"`
	IsExclusion bool `json:"IsExclusion,omitempty"`
}

// Endpoint is one side of a Window. Two encodings are accepted: circe's
// {Days, Coeff} and the range form {Value, Op} where Op "lt" means before
// the index date.
type Endpoint struct {
	Days  *int     `json:"Days,omitempty"`
	Coeff int      `json:"Coeff,omitempty"`
	Value *float64 `json:"Value,omitempty"`
	Op    string   `json:"Op,omitempty"`
}

// Offset returns the signed day offset relative to the index date.
// bounded is false when the endpoint is "all" days.
func (e *Endpoint) Offset() (days int, bounded bool) {
	if e == nil {
		return 0, false
	}
	if e.Days != nil {
		return e.coeff() * *e.Days, true
	}
	if e.Value != nil {
		return e.coeff() * int(*e.Value), true
	}
	return 0, false
}

// Magnitude returns the unsigned day count, or false when unbounded.
func (e *Endpoint) Magnitude() (int, bool) {
	if e == nil {
		return 0, false
	}
	if e.Days != nil {
		return *e.Days, true
	}
	if e.Value != nil {
		return int(*e.Value), true
	}
	return 0, false
}

// IsBefore reports whether the endpoint points before the index date.
func (e *Endpoint) IsBefore() bool {
	return e != nil && e.coeff() < 0
}

func (e *Endpoint) coeff() int {
	switch {
	case e.Coeff < 0:
		return -1
	case e.Coeff > 0:
		return 1
	case e.Op == OpLt || e.Op == OpLte:
		return -1
	default:
		return 1
	}
}

// Window is a time window relative to the index event.
type Window struct {
	Start       *Endpoint `json:"Start,omitempty"`
	End         *Endpoint `json:"End,omitempty"`
	UseIndexEnd *bool     `json:"UseIndexEnd,omitempty"`
	UseEventEnd *bool     `json:"UseEventEnd,omitempty"`
}

// OccurrenceType is the count comparison of an Occurrence.
type OccurrenceType int

// Wire values: 0 exactly, 1 at least, 2 at most.
const (
	OccurrenceExactly OccurrenceType = iota
	OccurrenceAtLeast
	OccurrenceAtMost
)

// String returns the circe spelling of the occurrence type.
func (t OccurrenceType) String() string {
	switch t {
	case OccurrenceExactly:
		return "exactly"
	case OccurrenceAtLeast:
		return "at least"
	case OccurrenceAtMost:
		return "at most"
	default:
		return "unknown"
	}
}

// Occurrence constrains how many times a correlated event is found.
type Occurrence struct {
	Type        OccurrenceType `json:"Type"`
	Count       int            `json:"Count"`
	IsDistinct  bool           `json:"IsDistinct,omitempty"`
	CountColumn string         `json:"CountColumn,omitempty"`
}

// Interval is a closed integer interval. Unbounded sides use the int
// extremes.
type Interval struct {
	Lo, Hi int
}

// Overlaps reports whether the two intervals share at least one value.
func (i Interval) Overlaps(o Interval) bool {
	return i.Lo <= o.Hi && o.Lo <= i.Hi
}

// Interval maps the occurrence to the counts it admits. A nil occurrence
// admits every count.
func (o *Occurrence) Interval() Interval {
	if o == nil {
		return Interval{Lo: math.MinInt, Hi: math.MaxInt}
	}
	switch o.Type {
	case OccurrenceExactly:
		return Interval{Lo: o.Count, Hi: o.Count}
	case OccurrenceAtLeast:
		return Interval{Lo: o.Count, Hi: math.MaxInt}
	case OccurrenceAtMost:
		return Interval{Lo: math.MinInt, Hi: o.Count}
	default:
		return Interval{Lo: math.MinInt, Hi: math.MaxInt}
	}
}

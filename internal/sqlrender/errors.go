package sqlrender

import (
	"errors"
	"fmt"
)

// Error is a rendering or translation failure with enough context for the
// caller to locate the problem in its input.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Excerpt is the offending condition, template fragment or pattern.
	Excerpt string

	// Parameter names the parameter or dialect involved, if any.
	Parameter string
}

// ErrorCode categorizes sqlrender errors.
type ErrorCode string

const (
	// ErrCodeConditionSyntax indicates a condition that cannot be parsed.
	ErrCodeConditionSyntax ErrorCode = "CONDITION_SYNTAX"

	// ErrCodeTemplateSyntax indicates unbalanced braces in a template.
	ErrCodeTemplateSyntax ErrorCode = "TEMPLATE_SYNTAX"

	// ErrCodeUnknownDialect indicates a target dialect with no patterns.
	ErrCodeUnknownDialect ErrorCode = "UNKNOWN_DIALECT"

	// ErrCodePatternSyntax indicates a malformed replacement pattern row.
	ErrCodePatternSyntax ErrorCode = "PATTERN_SYNTAX"
)

// ErrMismatchedParameters is returned by Render when the name and value
// lists differ in length.
var ErrMismatchedParameters = errors.New("sqlrender: parameter names and values differ in length")

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Excerpt != "":
		return fmt.Sprintf("%s: %s: %q", e.Code, e.Message, e.Excerpt)
	case e.Parameter != "":
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Parameter)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConditionError returns true if err is an unparseable condition.
func IsConditionError(err error) bool {
	return hasCode(err, ErrCodeConditionSyntax)
}

// IsTemplateError returns true if err is a malformed template.
func IsTemplateError(err error) bool {
	return hasCode(err, ErrCodeTemplateSyntax)
}

// IsUnknownDialect returns true if err reports an unsupported dialect.
func IsUnknownDialect(err error) bool {
	return hasCode(err, ErrCodeUnknownDialect)
}

// excerpt returns up to 40 bytes of s around pos for error messages.
func excerpt(s string, pos int) string {
	const radius = 20
	start := max(pos-radius, 0)
	end := min(pos+radius, len(s))
	return s[start:end]
}

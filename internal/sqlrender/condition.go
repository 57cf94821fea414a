package sqlrender

import (
	"strings"
	"unicode"
)

// span is a bracketed region [start, end) of a string being rewritten.
// Spans are kept up to date as the string is spliced; a span whose text is
// removed becomes invalid.
type span struct {
	start, end int
	valid      bool
}

// bracketSpans returns the spans of every balanced left/right pair in s,
// ordered by the position of the closing bracket, so nested spans come
// before the spans that enclose them. Unbalanced brackets are returned as
// the position of the first offender.
func bracketSpans(s string, left, right byte) (spans []*span, unbalanced int) {
	var starts []int
	unbalanced = -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case left:
			starts = append(starts, i)
		case right:
			if len(starts) == 0 {
				if unbalanced < 0 {
					unbalanced = i
				}
				continue
			}
			start := starts[len(starts)-1]
			starts = starts[:len(starts)-1]
			spans = append(spans, &span{start: start, end: i + 1, valid: true})
		}
	}
	if len(starts) > 0 && unbalanced < 0 {
		unbalanced = starts[0]
	}
	return spans, unbalanced
}

// splice replaces s[from:to] with s[keepFrom:keepTo] and moves the spans
// accordingly: spans inside the kept text move with it, spans after the
// replaced range shift, and spans that enclose it stretch or shrink.
func splice(s string, spans []*span, from, to, keepFrom, keepTo int) string {
	kept := s[keepFrom:keepTo]
	to = min(to, len(s))
	out := s[:from] + kept + s[to:]
	delta := from - to + len(kept)

	for _, sp := range spans {
		if !sp.valid {
			continue
		}
		switch {
		case sp.start > from:
			switch {
			case sp.start >= keepFrom && sp.start < keepTo:
				sp.start += from - keepFrom
				sp.end += from - keepFrom
			case sp.start >= to:
				sp.start += delta
				sp.end += delta
			default:
				sp.valid = false
			}
		case sp.end > to:
			sp.end += delta
		}
	}
	return out
}

// ifThenElse links the condition and branch spans of one conditional
// block.
type ifThenElse struct {
	condition, ifTrue, ifFalse *span
}

func (b *ifThenElse) start() int { return b.condition.start }

func (b *ifThenElse) end() int {
	if b.ifFalse != nil {
		return b.ifFalse.end
	}
	return b.ifTrue.end
}

// linkBlocks pairs brace spans separated by ? (and optionally : for the
// false branch) into conditional blocks.
func linkBlocks(s string, spans []*span) []*ifThenElse {
	var blocks []*ifThenElse
	for i := 0; i < len(spans)-1; i++ {
		for j := i + 1; j < len(spans); j++ {
			if spans[j].start <= spans[i].end || strings.TrimSpace(s[spans[i].end:spans[j].start]) != "?" {
				continue
			}
			block := &ifThenElse{condition: spans[i], ifTrue: spans[j]}
			for k := j + 1; k < len(spans); k++ {
				if spans[k].start > spans[j].end && strings.TrimSpace(s[spans[j].end:spans[k].start]) == ":" {
					block.ifFalse = spans[k]
					break
				}
			}
			blocks = append(blocks, block)
			break
		}
	}
	return blocks
}

// evaluateConditionals replaces every conditional block of s with the
// contents of the branch its condition selects.
func evaluateConditionals(s string) (string, error) {
	spans, unbalanced := bracketSpans(s, '{', '}')
	if unbalanced >= 0 {
		return "", &Error{
			Code:    ErrCodeTemplateSyntax,
			Message: "unbalanced braces",
			Excerpt: excerpt(s, unbalanced),
		}
	}

	for _, block := range linkBlocks(s, spans) {
		if !block.condition.valid {
			continue
		}
		ok, err := evaluateCondition(s[block.condition.start+1 : block.condition.end-1])
		if err != nil {
			return "", err
		}
		switch {
		case ok:
			s = splice(s, spans, block.start(), block.end(), block.ifTrue.start+1, block.ifTrue.end-1)
		case block.ifFalse != nil:
			s = splice(s, spans, block.start(), block.end(), block.ifFalse.start+1, block.ifFalse.end-1)
		default:
			s = splice(s, spans, block.start(), block.end(), 0, 0)
		}
	}
	return s, nil
}

// evaluateCondition evaluates parenthesized sub-conditions innermost first,
// replacing each with 0 or 1, then evaluates what remains. Parentheses
// that open an IN list are left alone.
func evaluateCondition(cond string) (bool, error) {
	cond = strings.TrimSpace(cond)
	spans, _ := bracketSpans(cond, '(', ')')
	for _, sp := range spans {
		if !sp.valid || precededByIn(cond, sp.start) {
			continue
		}
		ok, err := evaluateBoolean(cond[sp.start+1 : sp.end-1])
		if err != nil {
			return false, err
		}
		digit := "0"
		if ok {
			digit = "1"
		}
		cond = cond[:sp.start] + digit + cond[sp.start+1:]
		cond = splice(cond, spans, sp.start, sp.end, sp.start, sp.start+1)
	}
	return evaluateBoolean(cond)
}

// precededByIn reports whether the text before pos ends with the word IN
// and a whitespace before it.
func precededByIn(s string, pos int) bool {
	matched := 0
	for i := pos - 1; i >= 0; i-- {
		ch := unicode.ToLower(rune(s[i]))
		if unicode.IsSpace(ch) {
			if matched == 2 {
				return true
			}
			continue
		}
		switch {
		case matched == 0 && ch == 'n':
			matched++
		case matched == 1 && ch == 'i':
			matched++
		default:
			return false
		}
	}
	// The word must be preceded by whitespace.
	return false
}

// literal evaluates the boolean literals. ok is false for anything else.
func literal(s string) (value, ok bool) {
	switch strings.ToLower(s) {
	case "false", "0", "!true", "!1":
		return false, true
	case "true", "1", "!false", "!0":
		return true, true
	}
	return false, false
}

// evaluateBoolean handles either an &-list or a |-list of primitives. The
// two operators are not combined in one expression; & is checked first.
func evaluateBoolean(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if v, ok := literal(s); ok {
		return v, nil
	}

	if strings.Contains(s, "&") {
		for part := range strings.SplitSeq(s, "&") {
			v, err := evaluatePrimitive(part)
			if err != nil || !v {
				return false, err
			}
		}
		return true, nil
	}

	if strings.Contains(s, "|") {
		for part := range strings.SplitSeq(s, "|") {
			v, err := evaluatePrimitive(part)
			if err != nil || v {
				return v, err
			}
		}
		return false, nil
	}

	return evaluatePrimitive(s)
}

func evaluatePrimitive(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if v, ok := literal(s); ok {
		return v, nil
	}

	operand := func(x string) string { return unquote(strings.TrimSpace(x)) }

	if left, right, ok := strings.Cut(s, "=="); ok {
		return operand(left) == operand(right), nil
	}

	idx := strings.Index(s, "!=")
	if idx < 0 {
		idx = strings.Index(s, "<>")
	}
	if idx >= 0 {
		return operand(s[:idx]) != operand(s[idx+2:]), nil
	}

	if idx := strings.Index(strings.ToLower(s), " in "); idx >= 0 {
		left := operand(s[:idx])
		right := strings.TrimSpace(s[idx+4:])
		if len(right) > 2 && right[0] == '(' && right[len(right)-1] == ')' {
			for part := range strings.SplitSeq(right[1:len(right)-1], ",") {
				if left == operand(part) {
					return true, nil
				}
			}
			return false, nil
		}
	}

	return false, &Error{
		Code:    ErrCodeConditionSyntax,
		Message: "cannot parse boolean condition",
		Excerpt: s,
	}
}

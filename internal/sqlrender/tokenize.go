package sqlrender

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// hintKeyword marks "--hint", an optimizer hint rather than a comment.
const hintKeyword = "hint"

// Token is a word or a single punctuation character of an SQL string.
// Start and End are byte offsets into the tokenized string.
type Token struct {
	Start    int
	End      int
	Text     string
	InQuotes bool
}

// IsIdentifier reports whether the token consists only of ASCII letters,
// digits and underscores.
func (t Token) IsIdentifier() bool {
	for i := 0; i < len(t.Text); i++ {
		if !isWordByte(t.Text[i]) || t.Text[i] == '@' {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '@'
}

// Tokenize splits sql into words (runs of letters, digits, _ and @) and
// single punctuation characters. Whitespace and comments are dropped.
// Tokens inside single or double quotes are marked InQuotes; the opening
// quote itself is not.
func Tokenize(sql string) []Token {
	var (
		tokens       []Token
		start        int
		lineComment  bool
		blockComment bool
		inSingle     bool
		inDouble     bool
	)
	emit := func(from, to int) {
		tokens = append(tokens, Token{
			Start:    from,
			End:      to,
			Text:     sql[from:to],
			InQuotes: inSingle || inDouble,
		})
	}

	for cursor, ch := range sql {
		switch {
		case lineComment:
			if ch == '\n' {
				lineComment = false
				start = cursor + 1
			}
		case blockComment:
			if ch == '/' && cursor > 0 && sql[cursor-1] == '*' {
				blockComment = false
				start = cursor + 1
			}
		case ch < 0x80 && isWordByte(byte(ch)):
			// part of the current word
		default:
			if cursor > start {
				emit(start, cursor)
			}
			_, width := utf8.DecodeRuneInString(sql[cursor:])
			quoted := inSingle || inDouble
			switch {
			case ch == '-' && !quoted && strings.HasPrefix(sql[cursor:], "--") &&
				!strings.HasPrefix(sql[cursor+2:], hintKeyword):
				lineComment = true
			case ch == '/' && !quoted && strings.HasPrefix(sql[cursor:], "/*"):
				blockComment = true
			case !unicode.IsSpace(ch):
				emit(cursor, cursor+width)
				if ch == '\'' && !inDouble {
					inSingle = !inSingle
				}
				if ch == '"' && !inSingle {
					inDouble = !inDouble
				}
			}
			start = cursor + width
		}
	}

	if len(sql) > start && !lineComment && !blockComment {
		emit(start, len(sql))
	}
	return tokens
}

package sqlrender

import "strings"

// Split breaks sql into statements at every semicolon outside quotes and
// comments. Statements are trimmed, empty ones are dropped and the
// semicolons themselves are not kept. CRLF line endings become LF.
func Split(sql string) []string {
	sql = strings.ReplaceAll(sql, "\r\n", "\n")

	var statements []string
	add := func(stmt string) {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}

	start := 0
	for _, tok := range Tokenize(sql) {
		if !tok.InQuotes && tok.Text == ";" {
			add(sql[start:tok.Start])
			start = tok.End
		}
	}
	add(sql[start:])
	return statements
}

// FromPos returns the byte offset of the first FROM keyword outside
// parentheses, or -1 if there is none.
func FromPos(sql string) int {
	level := 0
	for _, tok := range Tokenize(sql) {
		switch {
		case tok.Text == "(":
			level++
		case tok.Text == ")":
			level--
		case level == 0 && strings.EqualFold(tok.Text, "FROM"):
			return tok.Start
		}
	}
	return -1
}

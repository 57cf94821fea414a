package sqlrender

import (
	"fmt"
	"regexp"
	"strings"
)

// structuralPass rewrites one statement in ways a single regular
// expression cannot express.
type structuralPass func(stmt string) string

var structuralPasses = map[string]structuralPass{
	"bigquery": func(stmt string) string {
		return crossJoins(dateDiff(stmt, dayDiff))
	},
	"spark": func(stmt string) string {
		return sparkFunctions(crossJoins(dateDiff(stmt, dayDiff)))
	},
}

// dayDiff is the DATE_DIFF form both BigQuery and Spark targets receive.
func dayDiff(start, end string) string {
	return fmt.Sprintf("DATE_DIFF(%s, %s, DAY)", end, start)
}

// dateDiff rewrites DATEDIFF(day, start, end) calls with format. Arguments
// may contain nested calls; calls are rewritten innermost first.
func dateDiff(stmt string, format func(start, end string) string) string {
	for {
		tokens := Tokenize(stmt)
		rewritten := false
		for i := len(tokens) - 1; i >= 0 && !rewritten; i-- {
			tok := tokens[i]
			if tok.InQuotes || !strings.EqualFold(tok.Text, "DATEDIFF") {
				continue
			}
			args, end, ok := callArgs(stmt, tokens, i+1)
			if !ok || len(args) != 3 || !isDayUnit(args[0]) {
				continue
			}
			stmt = stmt[:tok.Start] + format(args[1], args[2]) + stmt[end:]
			rewritten = true
		}
		if !rewritten {
			return stmt
		}
	}
}

func isDayUnit(s string) bool {
	switch strings.ToLower(s) {
	case "day", "dd", "d":
		return true
	}
	return false
}

// callArgs returns the trimmed top-level arguments of the parenthesized
// list that opens at tokens[i], and the offset just past its closing
// parenthesis.
func callArgs(stmt string, tokens []Token, i int) (args []string, end int, ok bool) {
	if i >= len(tokens) || tokens[i].Text != "(" || tokens[i].InQuotes {
		return nil, 0, false
	}
	level := 0
	argStart := tokens[i].End
	for _, tok := range tokens[i:] {
		if tok.InQuotes {
			continue
		}
		switch tok.Text {
		case "(":
			level++
		case ")":
			level--
			if level == 0 {
				return append(args, strings.TrimSpace(stmt[argStart:tok.Start])), tok.End, true
			}
		case ",":
			if level == 1 {
				args = append(args, strings.TrimSpace(stmt[argStart:tok.Start]))
				argStart = tok.End
			}
		}
	}
	return nil, 0, false
}

// clauseKeywords end the table list of a FROM clause.
var clauseKeywords = map[string]bool{
	"WHERE": true, "GROUP": true, "ORDER": true, "HAVING": true, "UNION": true,
	"EXCEPT": true, "INTERSECT": true, "LIMIT": true, "QUALIFY": true, "WINDOW": true,
	"SELECT": true,
}

// crossJoins turns the comma-separated table list of every FROM clause
// into explicit CROSS JOINs. Each parenthesis level is tracked separately,
// so subqueries are handled on their own.
func crossJoins(stmt string) string {
	inFrom := []bool{false}
	var commas []Token
	for _, tok := range Tokenize(stmt) {
		if tok.InQuotes {
			continue
		}
		top := len(inFrom) - 1
		switch word := strings.ToUpper(tok.Text); {
		case word == "(":
			inFrom = append(inFrom, false)
		case word == ")":
			if top > 0 {
				inFrom = inFrom[:top]
			}
		case word == "FROM":
			inFrom[top] = true
		case clauseKeywords[word]:
			inFrom[top] = false
		case word == "," && inFrom[top]:
			commas = append(commas, tok)
		}
	}

	for i := len(commas) - 1; i >= 0; i-- {
		start := commas[i].Start
		for start > 0 && isSpace(stmt[start-1]) {
			start--
		}
		end := commas[i].End
		for end < len(stmt) && isSpace(stmt[end]) {
			end++
		}
		stmt = stmt[:start] + " CROSS JOIN " + stmt[end:]
	}
	return stmt
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

var (
	dateFromParts = regexp.MustCompile(`(?i)DATEFROMPARTS\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)`)
	dateAddDay    = regexp.MustCompile(`(?i)DATEADD\s*\(\s*day\s*,\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`)
)

// sparkFunctions rewrites SQL Server date functions to their Spark forms.
func sparkFunctions(stmt string) string {
	stmt = dateFromParts.ReplaceAllString(stmt, "make_date(${1}, ${2}, ${3})")
	return dateAddDay.ReplaceAllString(stmt, "date_add(${2}, ${1})")
}

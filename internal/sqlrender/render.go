package sqlrender

import (
	"cmp"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

const (
	defaultOpen  = "{DEFAULT "
	defaultClose = "}"
)

var defaultDecl = regexp.MustCompile(`\{DEFAULT[^}]*\}\s*`)

// Render substitutes values for the named parameters of template and
// evaluates its conditional blocks. names[i] is bound to values[i]; names
// are given without the @ sign. Pass "null" for an SQL NULL.
//
// Render is pure: the same arguments always produce the same output.
func Render(template string, names, values []string) (string, error) {
	if len(names) != len(values) {
		return "", fmt.Errorf("%w: %d names, %d values", ErrMismatchedParameters, len(names), len(values))
	}
	params := make(map[string]string, len(names))
	for i, name := range names {
		params[name] = values[i]
	}
	return render(template, params)
}

// RenderMap is Render with the parameters given as a map. The map is not
// modified.
func RenderMap(template string, params map[string]string) (string, error) {
	return render(template, maps.Clone(params))
}

// CheckParameters returns the names that do not appear as @name anywhere in
// template.
func CheckParameters(template string, names []string) []string {
	var missing []string
	for _, name := range names {
		if !strings.Contains(template, "@"+name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func render(template string, params map[string]string) (string, error) {
	if params == nil {
		params = make(map[string]string)
	}
	return evaluateConditionals(substitute(template, params))
}

// substitute applies declared defaults, strips the declarations and
// replaces every @name with its value. Longer names are replaced first so
// that @a does not clobber @ab.
func substitute(sql string, params map[string]string) string {
	for name, value := range extractDefaults(sql) {
		if params[name] == "" {
			params[name] = value
		}
	}
	sql = defaultDecl.ReplaceAllString(sql, "")

	names := slices.Collect(maps.Keys(params))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for _, name := range names {
		if name == "" {
			continue
		}
		sql = strings.ReplaceAll(sql, "@"+name, params[name])
	}
	return sql
}

// extractDefaults reads every {DEFAULT @name = value} declaration.
func extractDefaults(sql string) map[string]string {
	defaults := make(map[string]string)
	pos := 0
	for {
		start := strings.Index(sql[pos:], defaultOpen)
		if start < 0 {
			return defaults
		}
		start += pos + len(defaultOpen)
		end := strings.Index(sql[start:], defaultClose)
		if end < 0 {
			return defaults
		}
		end += start
		pos = end

		name, value, ok := strings.Cut(sql[start:end], "=")
		if !ok {
			continue
		}
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		defaults[name] = unquote(strings.TrimSpace(value))
	}
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) > 1 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

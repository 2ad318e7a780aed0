package divide

import (
	"strconv"
	"strings"
)

// ParseSplits reads split positions typed by a user: integers separated by
// commas and/or whitespace, optionally wrapped in [] or (). Blank input
// yields no splits. The result is sorted and free of duplicates; range
// checking against a concrete volume is left to ValidateSplits.
func ParseSplits(text string) ([]int, error) {
	s := strings.TrimSpace(text)
	if len(s) >= 2 && (s[0] == '[' && s[len(s)-1] == ']' || s[0] == '(' && s[len(s)-1] == ')') {
		s = s[1 : len(s)-1]
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ';'
	})
	splits := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, &ParseError{Token: f}
		}
		splits = append(splits, v)
	}
	return Normalize(splits), nil
}

// FormatSplits renders splits the way ParseSplits accepts them.
func FormatSplits(splits []int) string {
	parts := make([]string, len(splits))
	for i, s := range splits {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ", ")
}

package ksql

import "strings"

// Normalize prepares a statement for transmission: embedded newlines become
// single spaces, surrounding whitespace is trimmed, doubled terminators are
// collapsed, and exactly one trailing ';' is guaranteed. The statement's SQL
// correctness is not checked. Normalize is idempotent.
func Normalize(statement string) string {
	s := strings.ReplaceAll(statement, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.Join(strings.Fields(s), " ")

	for strings.HasSuffix(s, ";") {
		s = strings.TrimSuffix(s, ";")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return s + ";"
}

// UnquoteIdentifier strips a matching pair of double quotes from an
// identifier. Unquoted identifiers are returned unchanged.
func UnquoteIdentifier(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		return name[1 : len(name)-1]
	}
	return name
}

// IdentifiersEqual compares two object identifiers the way the server does:
// quoted identifiers are case-sensitive, everything else folds case.
func IdentifiersEqual(a, b string) bool {
	aq := strings.HasPrefix(a, `"`)
	bq := strings.HasPrefix(b, `"`)
	if aq && bq {
		return a == b
	}
	return strings.EqualFold(UnquoteIdentifier(a), UnquoteIdentifier(b))
}

package ksql

import "strings"

// Action is the leading verb of a classified statement.
type Action int

const (
	ActionOther Action = iota
	ActionCreate
	ActionDrop
	ActionInsert
)

// String returns the lower-case verb, or "other".
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionDrop:
		return "drop"
	case ActionInsert:
		return "insert"
	}
	return "other"
}

// Kind is the object kind a statement operates on.
type Kind int

const (
	KindNone Kind = iota
	KindTable
	KindStream
	KindInto
	KindConnector
	KindSourceConnector
	KindSinkConnector
)

// Keyword returns the kind as it appears in a statement, upper-cased.
func (k Kind) Keyword() string {
	switch k {
	case KindTable:
		return "TABLE"
	case KindStream:
		return "STREAM"
	case KindInto:
		return "INTO"
	case KindConnector:
		return "CONNECTOR"
	case KindSourceConnector:
		return "SOURCE CONNECTOR"
	case KindSinkConnector:
		return "SINK CONNECTOR"
	}
	return ""
}

// IsConnector reports whether the kind is a connector variant. Connector DDL
// has no command id and is never tracked through the status endpoint.
func (k Kind) IsConnector() bool {
	switch k {
	case KindConnector, KindSourceConnector, KindSinkConnector:
		return true
	}
	return false
}

// Statement is the classification of a single statement. Immutable once
// produced; classifying the same text always yields the same result.
type Statement struct {
	// Text is the statement as given to Classify.
	Text string

	Action Action
	Kind   Kind

	// Name is the object identifier: lower-cased unless it was wrapped in
	// double quotes, in which case it is preserved verbatim including the
	// quotes. Empty for ActionOther.
	Name string

	// Source is set for CREATE SOURCE TABLE variants.
	Source bool

	// IfExists is set when the statement carried IF EXISTS or IF NOT EXISTS.
	IfExists bool
}

// Classify extracts (action, object kind, object name) from a statement.
// Statements that do not match the recognized shape
//
//	(CREATE|DROP|INSERT) (TABLE|SOURCE TABLE|STREAM|INTO|CONNECTOR|
//	                      SOURCE CONNECTOR|SINK CONNECTOR)
//	                     [IF [NOT] EXISTS] <name> ...
//
// classify as ActionOther. Classification failure is deliberately non-fatal:
// callers only use the result for logging verbosity and dialect variants, so
// the permissive default is to pass the statement through unclassified.
func Classify(text string) Statement {
	stmt := Statement{Text: text, Action: ActionOther, Kind: KindNone}

	toks := tokenize(text)
	if len(toks) < 3 {
		return stmt
	}

	var action Action
	switch {
	case strings.EqualFold(toks[0], "create"):
		action = ActionCreate
	case strings.EqualFold(toks[0], "drop"):
		action = ActionDrop
	case strings.EqualFold(toks[0], "insert"):
		action = ActionInsert
	default:
		return stmt
	}

	kind := KindNone
	source := false
	i := 1

	switch {
	case strings.EqualFold(toks[i], "table"):
		kind = KindTable
		i++
	case strings.EqualFold(toks[i], "stream"):
		kind = KindStream
		i++
	case strings.EqualFold(toks[i], "into"):
		kind = KindInto
		i++
	case strings.EqualFold(toks[i], "connector"):
		kind = KindConnector
		i++
	case strings.EqualFold(toks[i], "source") && i+1 < len(toks):
		switch {
		case strings.EqualFold(toks[i+1], "table"):
			kind = KindTable
			source = true
		case strings.EqualFold(toks[i+1], "connector"):
			kind = KindSourceConnector
		default:
			return stmt
		}
		i += 2
	case strings.EqualFold(toks[i], "sink") && i+1 < len(toks) && strings.EqualFold(toks[i+1], "connector"):
		kind = KindSinkConnector
		i += 2
	default:
		return stmt
	}

	ifExists := false
	if i < len(toks) && strings.EqualFold(toks[i], "if") {
		if i+1 < len(toks) && strings.EqualFold(toks[i+1], "not") {
			i++
		}
		if i+1 < len(toks) && strings.EqualFold(toks[i+1], "exists") {
			ifExists = true
			i += 2
		} else {
			return stmt
		}
	}

	if i >= len(toks) {
		return stmt
	}

	name := toks[i]
	// A column list can sit flush against the name: CREATE TABLE foo(id INT).
	if idx := bareParenIndex(name); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSuffix(name, ";")
	if name == "" {
		return stmt
	}
	if !strings.HasPrefix(name, `"`) {
		name = strings.ToLower(name)
	}

	stmt.Action = action
	stmt.Kind = kind
	stmt.Name = name
	stmt.Source = source
	stmt.IfExists = ifExists
	return stmt
}

// bareParenIndex returns the index of the first '(' outside double-quoted
// identifiers, or -1.
func bareParenIndex(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case !inQuote && s[i] == '(':
			return i
		}
	}
	return -1
}

// tokenize splits on whitespace while keeping double-quoted identifiers as
// single tokens.
func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// RewriteDropKind rewrites a DROP statement's object kind when the server
// reported that the target's actual kind differs from the requested one
// (e.g. "Incompatible data source type is STREAM" in response to DROP TABLE).
// It returns the rewritten statement and true when a rewrite applies.
func RewriteDropKind(statement, serverMessage string) (string, bool) {
	stmt := Classify(statement)
	if stmt.Action != ActionDrop {
		return "", false
	}

	msg := strings.ToUpper(serverMessage)
	switch {
	case stmt.Kind == KindTable && strings.Contains(msg, "SOURCE TYPE IS STREAM"):
		return replaceKindKeyword(statement, "TABLE", "STREAM"), true
	case stmt.Kind == KindStream && strings.Contains(msg, "SOURCE TYPE IS TABLE"):
		return replaceKindKeyword(statement, "STREAM", "TABLE"), true
	}
	return "", false
}

// replaceKindKeyword swaps the first occurrence of the kind keyword,
// case-insensitively, preserving the rest of the statement byte for byte.
func replaceKindKeyword(statement, from, to string) string {
	idx := strings.Index(strings.ToUpper(statement), from)
	if idx < 0 {
		return statement
	}
	return statement[:idx] + to + statement[idx+len(from):]
}

package ksql

import "strings"

// DirectiveDeleteTopic marks the next statement in a script so its teardown
// DROP also deletes the backing Kafka topic:
//
//	--@DeleteTopic
//	CREATE STREAM clickstream (...) WITH (kafka_topic='clickstream', ...);
const DirectiveDeleteTopic = "@deletetopic"

// ScriptStatement is one statement extracted from a pipeline script, together
// with the directives that preceded it.
type ScriptStatement struct {
	Text        string
	DeleteTopic bool
}

// ParseScript splits pipeline script source into statements. Line comments
// (everything from an unquoted "--" to end of line) are stripped, except
// directive comments of the form --@Name, which attach to the statement that
// follows them. Statements are separated by ';' outside single-quoted
// literals; a trailing fragment without a terminator is kept as a statement.
func ParseScript(src string) []ScriptStatement {
	var out []ScriptStatement
	var cur strings.Builder
	deleteTopic := false

	emit := func() {
		text := Normalize(cur.String())
		cur.Reset()
		if text == "" || text == ";" {
			return
		}
		out = append(out, ScriptStatement{Text: text, DeleteTopic: deleteTopic})
		deleteTopic = false
	}

	for _, line := range strings.Split(src, "\n") {
		code, comment := splitLineComment(line)

		if directive, ok := parseDirective(comment); ok && directive == DirectiveDeleteTopic {
			deleteTopic = true
		}

		rest := code
		for {
			idx := unquotedIndex(rest, ';')
			if idx < 0 {
				cur.WriteString(rest)
				cur.WriteString("\n")
				break
			}
			cur.WriteString(rest[:idx+1])
			emit()
			rest = rest[idx+1:]
		}
	}
	emit()

	return out
}

// splitLineComment separates a line into code and an optional "--" comment.
// A "--" inside a single-quoted literal does not start a comment.
func splitLineComment(line string) (code, comment string) {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\'':
			inQuote = !inQuote
		case !inQuote && line[i] == '-' && i+1 < len(line) && line[i+1] == '-':
			return line[:i], line[i+2:]
		}
	}
	return line, ""
}

// parseDirective recognizes comments of the form "@Name", case-insensitively.
func parseDirective(comment string) (string, bool) {
	c := strings.TrimSpace(comment)
	if !strings.HasPrefix(c, "@") {
		return "", false
	}
	return strings.ToLower(c), true
}

// unquotedIndex returns the index of the first occurrence of sep outside
// single-quoted literals, or -1.
func unquotedIndex(s string, sep byte) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\'':
			inQuote = !inQuote
		case !inQuote && s[i] == sep:
			return i
		}
	}
	return -1
}

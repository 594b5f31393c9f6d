package ksqlpipe

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := executor.Drop(ctx, statement, opts)
//	if errors.Is(err, ksqlpipe.ErrCommandIDMissing) {
//	    // Server never registered the object; surface a clear diagnostic
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the ksqlDB server could not be reached.
	ErrConnectionFailed = errors.New("ksql server unreachable")

	// ErrStatementRejected indicates the server returned an engine error code
	// for a submitted statement. The wrapping message carries the server's
	// code and message verbatim.
	ErrStatementRejected = errors.New("statement rejected")

	// ErrExecutionFailed indicates a tracked command reached a terminal
	// failure status (ERROR or TERMINATED).
	ErrExecutionFailed = errors.New("execution failed")

	// ErrPollTimeout indicates a command stayed in the pending set past the
	// polling deadline.
	ErrPollTimeout = errors.New("command polling deadline exceeded")

	// ErrCommandIDMissing indicates a DROP never received a command id within
	// its retry budget.
	ErrCommandIDMissing = errors.New("could not obtain command id")

	// ErrNoScriptsFound indicates a pipeline directory contains no .sql files.
	ErrNoScriptsFound = errors.New("no pipeline scripts found")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrStatementRejected):
		return ExitStatementRejected
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrPollTimeout):
		return ExitPollTimeout
	case errors.Is(err, ErrCommandIDMissing):
		return ExitCommandIDMissing
	case errors.Is(err, ErrNoScriptsFound):
		return ExitConfigError
	}

	errStr := err.Error()

	// cobra/pflag surface usage problems as plain errors
	if isUsageError(errStr) {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

func isUsageError(msg string) bool {
	for _, pattern := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"arg(s), received",
		"missing required argument",
		"required flag",
		"invalid argument",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

package ksqlpipe

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Operation completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitConnectionError   = 11 // Failed to reach the ksqlDB server
	ExitStatementRejected = 12 // Server rejected a statement with an error code
	ExitExecutionFailed   = 13 // Command reached a terminal failure status
	ExitPollTimeout       = 14 // Command did not leave the pending set in time
	ExitCommandIDMissing  = 15 // Server never assigned a command id for a DROP
)

const (
	// DefaultServerURL is the ksqlDB REST listener used when no server is configured.
	DefaultServerURL = "http://localhost:8088"

	// DefaultRequestTimeout bounds a single HTTP round trip to the server.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultPollInitialDelay is the wait before the second status query for a
	// pending command. Subsequent waits grow exponentially up to DefaultPollMaxDelay.
	DefaultPollInitialDelay = 200 * time.Millisecond

	// DefaultPollMaxDelay caps the wait between status queries.
	DefaultPollMaxDelay = 5 * time.Second

	// DefaultPollDeadline is the wall-clock budget for a command to leave the
	// pending set before polling gives up with ErrPollTimeout.
	DefaultPollDeadline = 5 * time.Minute

	// DefaultDropMaxRetries is how many pause-and-reissue cycles a DROP gets
	// while waiting for the server to assign a command id.
	DefaultDropMaxRetries = 10

	// DefaultDropPause is the wait between DROP reissues.
	DefaultDropPause = 10 * time.Second
)

// Command statuses reported by the ksqlDB command runner.
const (
	StatusQueued     = "QUEUED"
	StatusParsing    = "PARSING"
	StatusExecuting  = "EXECUTING"
	StatusSuccess    = "SUCCESS"
	StatusError      = "ERROR"
	StatusTerminated = "TERMINATED"
)

// IsPending reports whether a command status means the server is still
// working on the command. Anything outside this set is terminal.
func IsPending(status string) bool {
	switch status {
	case StatusQueued, StatusParsing, StatusExecuting:
		return true
	}
	return false
}

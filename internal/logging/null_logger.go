package logging

// NullLogger discards all log messages. Useful as a default for library
// consumers that do not care about diagnostics, and in tests.
type NullLogger struct{}

// NewNullLogger creates a logger that discards everything.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Verbose discards the message.
func (l *NullLogger) Verbose(_ string, _ ...interface{}) {}

// Info discards the message.
func (l *NullLogger) Info(_ string, _ ...interface{}) {}

// Error discards the message.
func (l *NullLogger) Error(_ string, _ ...interface{}) {}

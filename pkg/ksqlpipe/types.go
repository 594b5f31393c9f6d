package ksqlpipe

import (
	"errors"
	"fmt"
	"time"
)

// ServerConfig identifies a ksqlDB REST listener and the credentials used for
// every call against it. Credentials are an explicit per-client value, never
// process-wide state, so two clients with different credentials can coexist.
type ServerConfig struct {
	// URL is the base URL of the ksqlDB REST listener, e.g. http://localhost:8088
	URL string

	// Username and Password enable HTTP Basic authentication when Username is
	// non-empty.
	Username string
	Password string

	// Timeout bounds a single HTTP round trip. Zero means DefaultRequestTimeout.
	Timeout time.Duration
}

// Validate checks if the ServerConfig has all required fields and valid values.
func (c *ServerConfig) Validate() error {
	var errs []error

	if c.URL == "" {
		errs = append(errs, fmt.Errorf("server URL is required: %w", ErrInvalidConfig))
	}

	if c.Password != "" && c.Username == "" {
		errs = append(errs, fmt.Errorf("password set without username: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// DeployConfig contains all parameters needed for a pipeline deploy or
// teardown operation.
type DeployConfig struct {
	// SourcePath is the root directory containing the pipeline .sql scripts.
	// Scripts run in lexical path order; teardown drops in reverse order.
	SourcePath string

	// Properties are streams properties attached to every statement
	// (e.g. ksql.streams.auto.offset.reset).
	Properties map[string]string

	// DropFirst tears the pipeline down before recreating it.
	DropFirst bool

	// TerminateQueries terminates persistent queries writing into an object
	// before that object is dropped.
	TerminateQueries bool

	// MaxDropRetries bounds the pause-and-reissue cycles while a DROP waits
	// for a command id. Zero means DefaultDropMaxRetries.
	MaxDropRetries int

	// DropPause is the wait between DROP reissues. Zero means DefaultDropPause.
	DropPause time.Duration

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the DeployConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *DeployConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if c.MaxDropRetries < 0 {
		errs = append(errs, fmt.Errorf("MaxDropRetries cannot be negative: %w", ErrInvalidConfig))
	}

	if c.DropPause < 0 {
		errs = append(errs, fmt.Errorf("DropPause cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// CommandStatus is the state of a server-side command created by a DDL
// statement, as reported by GET /status/{commandId}.
type CommandStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Pending reports whether the command has not yet reached a terminal status.
func (s CommandStatus) Pending() bool {
	return IsPending(s.Status)
}

// Envelope is the decoded response to a statement submission. The body shape
// is engine-defined and version-dependent, so fields are read optimistically:
// absent fields stay at their zero values and no schema is enforced.
type Envelope struct {
	// HTTPStatus and HTTPStatusText come from the transport layer. A non-2xx
	// status does not by itself constitute a failure; the caller decides.
	HTTPStatus     int
	HTTPStatusText string

	// ErrorCode and Message are set when the server rejected the statement.
	// A zero ErrorCode means the statement was accepted.
	ErrorCode int
	Message   string

	// StatementText is the server's echo of the submitted statement.
	StatementText string

	// CommandID tracks asynchronous table/stream/topic DDL. Connector DDL
	// never carries one.
	CommandID     string
	CommandStatus *CommandStatus

	// Queries is populated for SHOW QUERIES responses.
	Queries []RunningQuery

	// Properties is populated for LIST PROPERTIES responses.
	Properties map[string]string
}

// Result aggregates everything known about one executed statement.
type Result struct {
	StatementText  string
	HTTPStatus     int
	ErrorCode      int
	Message        string
	CommandID      string
	CommandStatus  string
	CommandMessage string
}

// RunningQuery describes a persistent query reported by SHOW QUERIES.
type RunningQuery struct {
	ID          string   `json:"id"`
	QueryString string   `json:"queryString"`
	Sinks       []string `json:"sinks"`
	State       string   `json:"state"`
}

// ServerInfo is the response to GET /info.
type ServerInfo struct {
	Version        string `json:"version"`
	KafkaClusterID string `json:"kafkaClusterId"`
	KsqlServiceID  string `json:"ksqlServiceId"`
}

package ksqlpipe

import "context"

// ControlPlaneClient issues calls against the ksqlDB REST control plane.
type ControlPlaneClient interface {
	// Execute submits a single normalized statement with optional streams
	// properties and returns the decoded response envelope. Non-2xx HTTP
	// statuses are packaged into the envelope, not returned as errors;
	// only transport-level failures produce an error.
	Execute(ctx context.Context, statement string, properties map[string]string) (*Envelope, error)

	// Status fetches the current status of an asynchronous command by id.
	Status(ctx context.Context, commandID string) (*CommandStatus, error)

	// Info fetches server build and cluster identity information.
	Info(ctx context.Context) (*ServerInfo, error)
}

// CommandAwaiter blocks until an asynchronous command leaves the pending set.
type CommandAwaiter interface {
	// Await polls the command until it reaches a terminal status and returns
	// that status as-is; distinguishing SUCCESS from ERROR is the caller's
	// responsibility. It fails with ErrPollTimeout if the command stays
	// pending past the polling deadline.
	Await(ctx context.Context, commandID string) (CommandStatus, error)
}

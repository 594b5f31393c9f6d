package services

import (
	"context"

	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// mockClient scripts control-plane responses per statement and records every
// submission in order.
type mockClient struct {
	executeFunc func(statement string, properties map[string]string) (*ksqlpipe.Envelope, error)
	executed    []string
}

func (m *mockClient) Execute(_ context.Context, statement string, properties map[string]string) (*ksqlpipe.Envelope, error) {
	m.executed = append(m.executed, statement)
	if m.executeFunc != nil {
		return m.executeFunc(statement, properties)
	}
	return &ksqlpipe.Envelope{HTTPStatus: 200}, nil
}

func (m *mockClient) Status(_ context.Context, _ string) (*ksqlpipe.CommandStatus, error) {
	return &ksqlpipe.CommandStatus{Status: ksqlpipe.StatusSuccess}, nil
}

func (m *mockClient) Info(_ context.Context) (*ksqlpipe.ServerInfo, error) {
	return &ksqlpipe.ServerInfo{}, nil
}

// mockAwaiter records which command ids were awaited.
type mockAwaiter struct {
	status ksqlpipe.CommandStatus
	err    error
	calls  []string
}

func (m *mockAwaiter) Await(_ context.Context, commandID string) (ksqlpipe.CommandStatus, error) {
	m.calls = append(m.calls, commandID)
	if m.err != nil {
		return ksqlpipe.CommandStatus{}, m.err
	}
	if m.status.Status == "" {
		return ksqlpipe.CommandStatus{Status: ksqlpipe.StatusSuccess}, nil
	}
	return m.status, nil
}

type mockLogger struct{}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}
func (m *mockLogger) Info(_ string, _ ...interface{})    {}
func (m *mockLogger) Error(_ string, _ ...interface{})   {}

func acceptedEnvelope(commandID string) *ksqlpipe.Envelope {
	return &ksqlpipe.Envelope{
		HTTPStatus: 200,
		CommandID:  commandID,
		CommandStatus: &ksqlpipe.CommandStatus{
			Status: ksqlpipe.StatusQueued,
		},
	}
}

func rejectedEnvelope(code int, message string) *ksqlpipe.Envelope {
	return &ksqlpipe.Envelope{
		HTTPStatus: 400,
		ErrorCode:  code,
		Message:    message,
	}
}

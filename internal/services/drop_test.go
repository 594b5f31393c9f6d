package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

func fastDropOptions() DropOptions {
	return DropOptions{
		MaxRetries: 3,
		Pause:      1 * time.Millisecond,
	}
}

func TestExecutor_Drop_KindMismatchRewrittenOnce(t *testing.T) {
	client := &mockClient{executeFunc: func(statement string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		if strings.HasPrefix(statement, "DROP TABLE") {
			return rejectedEnvelope(40001, "Incompatible data source type is STREAM, but statement was DROP TABLE"), nil
		}
		return acceptedEnvelope("stream/clickstream/drop"), nil
	}}
	awaiter := &mockAwaiter{}

	res, err := newTestExecutor(client, awaiter).Drop(context.Background(), "DROP TABLE clickstream;", fastDropOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.executed) != 2 {
		t.Fatalf("expected exactly 2 submissions, got %v", client.executed)
	}
	if client.executed[0] != "DROP TABLE clickstream;" {
		t.Errorf("first submission wrong: %q", client.executed[0])
	}
	if client.executed[1] != "DROP STREAM clickstream;" {
		t.Errorf("rewritten submission wrong: %q", client.executed[1])
	}
	if len(awaiter.calls) != 1 {
		t.Errorf("expected the rewritten drop to be polled, got %v", awaiter.calls)
	}
	if res.CommandID != "stream/clickstream/drop" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestExecutor_Drop_KindMismatchOnlyOnce(t *testing.T) {
	// A server that keeps answering with the mismatch message must not cause
	// a rewrite loop: the second rejection surfaces.
	client := &mockClient{executeFunc: func(_ string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		return rejectedEnvelope(40001, "Incompatible data source type is STREAM, but statement was DROP TABLE"), nil
	}}

	_, err := newTestExecutor(client, &mockAwaiter{}).Drop(context.Background(), "DROP TABLE clickstream;", fastDropOptions())
	if !errors.Is(err, ksqlpipe.ErrStatementRejected) {
		t.Fatalf("expected ErrStatementRejected, got %v", err)
	}
	if len(client.executed) != 2 {
		t.Errorf("expected exactly 2 submissions (original + one rewrite), got %v", client.executed)
	}
}

func TestExecutor_Drop_RetryBudgetExhausted(t *testing.T) {
	// A transport that never returns a command id: after exactly MaxRetries
	// pause-retry cycles the orchestrator gives up.
	client := &mockClient{executeFunc: func(_ string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		return &ksqlpipe.Envelope{HTTPStatus: 200}, nil
	}}
	awaiter := &mockAwaiter{}

	opts := fastDropOptions()
	_, err := newTestExecutor(client, awaiter).Drop(context.Background(), "DROP TABLE foo;", opts)
	if !errors.Is(err, ksqlpipe.ErrCommandIDMissing) {
		t.Fatalf("expected ErrCommandIDMissing, got %v", err)
	}

	if len(client.executed) != opts.MaxRetries+1 {
		t.Errorf("expected %d submissions, got %d", opts.MaxRetries+1, len(client.executed))
	}
	if len(awaiter.calls) != 0 {
		t.Errorf("poller must not run without a command id, got %v", awaiter.calls)
	}
}

func TestExecutor_Drop_CommandIDOnLaterAttempt(t *testing.T) {
	attempts := 0
	client := &mockClient{executeFunc: func(_ string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		attempts++
		if attempts < 3 {
			return &ksqlpipe.Envelope{HTTPStatus: 200}, nil
		}
		return acceptedEnvelope("table/foo/drop"), nil
	}}
	awaiter := &mockAwaiter{}

	res, err := newTestExecutor(client, awaiter).Drop(context.Background(), "DROP TABLE foo;", fastDropOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(awaiter.calls) != 1 || awaiter.calls[0] != "table/foo/drop" {
		t.Errorf("expected await for table/foo/drop, got %v", awaiter.calls)
	}
	if res.CommandStatus != ksqlpipe.StatusSuccess {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestExecutor_Drop_ConnectorSkipsTracking(t *testing.T) {
	client := &mockClient{}
	awaiter := &mockAwaiter{}

	_, err := newTestExecutor(client, awaiter).Drop(context.Background(), "DROP CONNECTOR jdbc_source;", fastDropOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.executed) != 1 {
		t.Errorf("connector drop must not retry, got %v", client.executed)
	}
	if len(awaiter.calls) != 0 {
		t.Errorf("connector drop must not be polled, got %v", awaiter.calls)
	}
}

func TestExecutor_Drop_TerminatesQueriesFirst(t *testing.T) {
	client := &mockClient{executeFunc: func(statement string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		switch {
		case statement == showQueriesStatement:
			return &ksqlpipe.Envelope{
				HTTPStatus: 200,
				Queries: []ksqlpipe.RunningQuery{
					{ID: "CTAS_FOO_1", Sinks: []string{"FOO"}},
				},
			}, nil
		case strings.HasPrefix(statement, "TERMINATE"):
			return &ksqlpipe.Envelope{HTTPStatus: 200}, nil
		default:
			return acceptedEnvelope("table/foo/drop"), nil
		}
	}}

	opts := fastDropOptions()
	opts.TerminateQueries = true

	_, err := newTestExecutor(client, &mockAwaiter{}).Drop(context.Background(), "DROP TABLE foo;", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{showQueriesStatement, terminateStatement("CTAS_FOO_1"), "DROP TABLE foo;"}
	if len(client.executed) != len(want) {
		t.Fatalf("expected %v, got %v", want, client.executed)
	}
	for i := range want {
		if client.executed[i] != want[i] {
			t.Errorf("submission %d: expected %q, got %q", i, want[i], client.executed[i])
		}
	}
}

func TestExecutor_Drop_RejectedWithoutMismatchNotRetried(t *testing.T) {
	client := &mockClient{executeFunc: func(_ string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		return rejectedEnvelope(40001, "Cannot drop foo: does not exist"), nil
	}}

	_, err := newTestExecutor(client, &mockAwaiter{}).Drop(context.Background(), "DROP TABLE foo;", fastDropOptions())
	if !errors.Is(err, ksqlpipe.ErrStatementRejected) {
		t.Fatalf("expected ErrStatementRejected, got %v", err)
	}
	if len(client.executed) != 1 {
		t.Errorf("rejection must not be retried, got %v", client.executed)
	}
}

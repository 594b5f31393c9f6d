package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// scriptedStatusClient returns each queued status in order, repeating the
// last one forever, and counts how many status queries it served.
type scriptedStatusClient struct {
	statuses []ksqlpipe.CommandStatus
	err      error
	calls    int
}

func (c *scriptedStatusClient) Status(_ context.Context, _ string) (*ksqlpipe.CommandStatus, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	idx := c.calls - 1
	if idx >= len(c.statuses) {
		idx = len(c.statuses) - 1
	}
	s := c.statuses[idx]
	return &s, nil
}

func fastStrategy() *ExponentialBackoff {
	return NewExponentialBackoff(-1,
		WithInitialDelay(1*time.Millisecond),
		WithMaxDelay(2*time.Millisecond),
		WithJitter(0),
	)
}

func TestPoller_Await_TerminatesAfterPendingRun(t *testing.T) {
	// Three pending responses then SUCCESS: exactly four status queries.
	client := &scriptedStatusClient{statuses: []ksqlpipe.CommandStatus{
		{Status: ksqlpipe.StatusQueued},
		{Status: ksqlpipe.StatusParsing},
		{Status: ksqlpipe.StatusExecuting},
		{Status: ksqlpipe.StatusSuccess, Message: "Table created"},
	}}

	poller := NewPoller(client, WithStrategy(fastStrategy()))

	status, err := poller.Await(context.Background(), "table/foo/create")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != ksqlpipe.StatusSuccess {
		t.Errorf("expected SUCCESS, got %s", status.Status)
	}
	if client.calls != 4 {
		t.Errorf("expected exactly 4 status queries, got %d", client.calls)
	}
}

func TestPoller_Await_ImmediateTerminal(t *testing.T) {
	client := &scriptedStatusClient{statuses: []ksqlpipe.CommandStatus{
		{Status: ksqlpipe.StatusSuccess},
	}}

	poller := NewPoller(client, WithStrategy(fastStrategy()))

	_, err := poller.Await(context.Background(), "table/foo/create")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 status query, got %d", client.calls)
	}
}

func TestPoller_Await_ErrorStatusReturnedAsIs(t *testing.T) {
	// The poller does not judge terminal statuses; ERROR is returned without
	// an error, and the caller decides.
	client := &scriptedStatusClient{statuses: []ksqlpipe.CommandStatus{
		{Status: ksqlpipe.StatusQueued},
		{Status: ksqlpipe.StatusError, Message: "Source already exists"},
	}}

	poller := NewPoller(client, WithStrategy(fastStrategy()))

	status, err := poller.Await(context.Background(), "table/foo/create")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != ksqlpipe.StatusError {
		t.Errorf("expected ERROR, got %s", status.Status)
	}
	if status.Message != "Source already exists" {
		t.Errorf("message not preserved: %q", status.Message)
	}
}

func TestPoller_Await_DeadlineExceeded(t *testing.T) {
	client := &scriptedStatusClient{statuses: []ksqlpipe.CommandStatus{
		{Status: ksqlpipe.StatusExecuting},
	}}

	poller := NewPoller(client,
		WithStrategy(fastStrategy()),
		WithDeadline(10*time.Millisecond),
	)

	status, err := poller.Await(context.Background(), "table/foo/create")
	if !errors.Is(err, ksqlpipe.ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
	if status.Status != ksqlpipe.StatusExecuting {
		t.Errorf("timeout should carry the last observed status, got %q", status.Status)
	}
}

func TestPoller_Await_AttemptBudget(t *testing.T) {
	client := &scriptedStatusClient{statuses: []ksqlpipe.CommandStatus{
		{Status: ksqlpipe.StatusQueued},
	}}

	strategy := NewExponentialBackoff(2,
		WithInitialDelay(1*time.Millisecond),
		WithJitter(0),
	)
	poller := NewPoller(client, WithStrategy(strategy))

	_, err := poller.Await(context.Background(), "table/foo/create")
	if !errors.Is(err, ksqlpipe.ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
	if client.calls != 3 {
		t.Errorf("expected initial query plus 2 retries, got %d", client.calls)
	}
}

func TestPoller_Await_TransportErrorPropagates(t *testing.T) {
	transportErr := errors.New("connection reset")
	client := &scriptedStatusClient{err: transportErr}

	poller := NewPoller(client, WithStrategy(fastStrategy()))

	_, err := poller.Await(context.Background(), "table/foo/create")
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected no retry on transport error, got %d calls", client.calls)
	}
}

func TestPoller_Await_ContextCancellation(t *testing.T) {
	client := &scriptedStatusClient{statuses: []ksqlpipe.CommandStatus{
		{Status: ksqlpipe.StatusExecuting},
	}}

	strategy := NewExponentialBackoff(-1,
		WithInitialDelay(1*time.Hour),
		WithJitter(0),
	)
	poller := NewPoller(client, WithStrategy(strategy))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := poller.Await(ctx, "table/foo/create")
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Await did not honor context cancellation")
	}
}

package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/internal/logging"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// StatusClient is the slice of the control-plane client the poller needs.
type StatusClient interface {
	Status(ctx context.Context, commandID string) (*ksqlpipe.CommandStatus, error)
}

// Poller drives an asynchronous command to completion by querying its status
// until it leaves the pending set, waiting between queries per the backoff
// strategy, bounded by a wall-clock deadline.
type Poller struct {
	client   StatusClient
	strategy ksqlpipe.BackoffStrategy
	deadline time.Duration
	log      ksqlpipe.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithStrategy sets the wait strategy between status queries.
func WithStrategy(s ksqlpipe.BackoffStrategy) PollerOption {
	return func(p *Poller) {
		p.strategy = s
	}
}

// WithDeadline sets the wall-clock budget for the command to leave the
// pending set.
func WithDeadline(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.deadline = d
	}
}

// WithPollerLogger sets the diagnostic logger.
func WithPollerLogger(log ksqlpipe.Logger) PollerOption {
	return func(p *Poller) {
		p.log = log
	}
}

// NewPoller creates a poller with the default strategy and deadline.
// Panics if client is nil.
func NewPoller(client StatusClient, opts ...PollerOption) *Poller {
	if client == nil {
		panic("client cannot be nil")
	}
	p := &Poller{
		client:   client,
		strategy: NewExponentialBackoff(-1),
		deadline: ksqlpipe.DefaultPollDeadline,
		log:      logging.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Await polls the command's status until it reaches a terminal state and
// returns that state as-is; the poller does not distinguish SUCCESS from
// ERROR. A command still pending when the deadline expires fails with
// ErrPollTimeout. Transport errors from the status endpoint propagate.
func (p *Poller) Await(ctx context.Context, commandID string) (ksqlpipe.CommandStatus, error) {
	start := time.Now()
	deadline := start.Add(p.deadline)
	maxAttempts := p.strategy.MaxAttempts()

	for attempt := 0; ; attempt++ {
		status, err := p.client.Status(ctx, commandID)
		if err != nil {
			return ksqlpipe.CommandStatus{}, err
		}

		if !status.Pending() {
			p.log.Verbose("command %s terminal after %s: %s", commandID, time.Since(start).Round(time.Millisecond), status.Status)
			return *status, nil
		}

		if maxAttempts >= 0 && attempt >= maxAttempts {
			return *status, fmt.Errorf("command %s still %s after %d status queries: %w",
				commandID, status.Status, attempt+1, ksqlpipe.ErrPollTimeout)
		}

		delay := p.strategy.NextDelay(attempt)
		if time.Now().Add(delay).After(deadline) {
			return *status, fmt.Errorf("command %s still %s after %s: %w",
				commandID, status.Status, time.Since(start).Round(time.Second), ksqlpipe.ErrPollTimeout)
		}

		p.log.Verbose("command %s is %s, next status query in %s", commandID, status.Status, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ksqlpipe.CommandStatus{}, ctx.Err()
		case <-timer.C:
		}
	}
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/internal/ksql"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// DropOptions tune the DROP retry orchestration.
type DropOptions struct {
	// Properties are streams properties attached to the statement.
	Properties map[string]string

	// TerminateQueries terminates persistent queries writing into the object
	// before dropping it.
	TerminateQueries bool

	// MaxRetries bounds the pause-and-reissue cycles while waiting for the
	// server to assign a command id. Zero means DefaultDropMaxRetries.
	MaxRetries int

	// Pause is the wait between reissues. Zero means DefaultDropPause.
	Pause time.Duration
}

func (o DropOptions) withDefaults() DropOptions {
	if o.MaxRetries == 0 {
		o.MaxRetries = ksqlpipe.DefaultDropMaxRetries
	}
	if o.Pause == 0 {
		o.Pause = ksqlpipe.DefaultDropPause
	}
	return o
}

// Drop runs a DROP statement to completion, handling the two failure modes
// specific to drops:
//
//   - The object's declared kind drifted from what the caller believes: the
//     server answers HTTP 400 saying the actual source type is STREAM where
//     TABLE was requested (or vice versa). The statement is rewritten with
//     the correct keyword and reissued once; the rewrite does not consume
//     the retry budget.
//
//   - The server has not yet assigned a command id because the object is
//     still registering. The statement is reissued after a pause, bounded by
//     the retry budget; exhausting it fails with ErrCommandIDMissing.
//
// Connector DROPs have no command concept and return on the first response.
// Drop never returns while the associated command is pending.
func (e *Executor) Drop(ctx context.Context, statement string, opts DropOptions) (*ksqlpipe.Result, error) {
	opts = opts.withDefaults()
	stmt := ksql.Classify(statement)

	if stmt.Kind.IsConnector() {
		return e.Execute(ctx, statement, opts.Properties)
	}

	if opts.TerminateQueries && stmt.Name != "" {
		if _, err := e.TerminateQueries(ctx, stmt.Name); err != nil {
			return nil, fmt.Errorf("terminating queries for %s: %w", stmt.Name, err)
		}
	}

	normalized := ksql.Normalize(statement)
	rewritten := false

	for attempt := 0; ; {
		env, err := e.client.Execute(ctx, normalized, opts.Properties)
		if err != nil {
			return nil, err
		}

		res := resultFromEnvelope(normalized, env)

		if env.ErrorCode != 0 {
			if !rewritten {
				if fixed, ok := ksql.RewriteDropKind(normalized, env.Message); ok {
					rewritten = true
					e.log.Info("object kind mismatch, reissuing as: %s", fixed)
					normalized = fixed
					continue
				}
			}
			return res, rejectedError(env)
		}

		if res.CommandID != "" {
			return e.awaitCommand(ctx, res)
		}

		if attempt >= opts.MaxRetries {
			return res, fmt.Errorf("no command id for %q after %d attempts: %w",
				normalized, attempt+1, ksqlpipe.ErrCommandIDMissing)
		}
		attempt++

		e.log.Verbose("no command id yet for %q, retrying in %s (%d/%d)",
			normalized, opts.Pause, attempt, opts.MaxRetries)

		timer := time.NewTimer(opts.Pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return res, ctx.Err()
		case <-timer.C:
		}
	}
}

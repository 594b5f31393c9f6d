// Package services orchestrates statement execution against the ksqlDB
// control plane: single statements, DROP retry handling, and whole-pipeline
// deployment.
package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rodgers-mmsi/ksqlpipe/internal/ksql"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// Executor runs statements to completion: transmit, inspect the envelope,
// and for tracked DDL block until the command leaves the pending set.
type Executor struct {
	client  ksqlpipe.ControlPlaneClient
	awaiter ksqlpipe.CommandAwaiter
	log     ksqlpipe.Logger
}

// NewExecutor creates a statement executor.
// Panics if any dependency is nil.
func NewExecutor(client ksqlpipe.ControlPlaneClient, awaiter ksqlpipe.CommandAwaiter, log ksqlpipe.Logger) *Executor {
	if client == nil {
		panic("client cannot be nil")
	}
	if awaiter == nil {
		panic("awaiter cannot be nil")
	}
	if log == nil {
		panic("log cannot be nil")
	}
	return &Executor{
		client:  client,
		awaiter: awaiter,
		log:     log,
	}
}

// Execute normalizes and submits one statement, then blocks until any
// associated command reaches a terminal status.
//
// Connector create/drop statements return as soon as the server answers:
// connector DDL has no command id and nothing to track. For other DDL, a
// terminal ERROR or TERMINATED status fails with ErrExecutionFailed; a
// rejected statement (non-zero engine error code) fails with
// ErrStatementRejected carrying the server's code and message verbatim.
func (e *Executor) Execute(ctx context.Context, statement string, properties map[string]string) (*ksqlpipe.Result, error) {
	stmt := ksql.Classify(statement)
	normalized := ksql.Normalize(statement)

	// create/drop get elevated visibility; everything else is diagnostics
	switch stmt.Action {
	case ksql.ActionCreate, ksql.ActionDrop:
		e.log.Info("%s %s %s", stmt.Action, stmt.Kind.Keyword(), stmt.Name)
	default:
		e.log.Verbose("executing: %s", normalized)
	}

	env, err := e.client.Execute(ctx, normalized, properties)
	if err != nil {
		return nil, err
	}

	res := resultFromEnvelope(normalized, env)

	if env.ErrorCode != 0 {
		return res, rejectedError(env)
	}

	if stmt.Kind.IsConnector() {
		return res, nil
	}

	if res.CommandID == "" {
		// Some accepted statements (SHOW, LIST, SELECT) have no command.
		return res, nil
	}

	return e.awaitCommand(ctx, res)
}

// awaitCommand blocks until the result's command is terminal and folds the
// final status into the result.
func (e *Executor) awaitCommand(ctx context.Context, res *ksqlpipe.Result) (*ksqlpipe.Result, error) {
	final, err := e.awaiter.Await(ctx, res.CommandID)
	if err != nil {
		return res, err
	}

	res.CommandStatus = final.Status
	res.CommandMessage = final.Message

	switch final.Status {
	case ksqlpipe.StatusError, ksqlpipe.StatusTerminated:
		return res, fmt.Errorf("command %s finished with status %s: %s: %w",
			res.CommandID, final.Status, final.Message, ksqlpipe.ErrExecutionFailed)
	}

	return res, nil
}

// ListQueries returns the persistent queries currently running on the server.
func (e *Executor) ListQueries(ctx context.Context) ([]ksqlpipe.RunningQuery, error) {
	env, err := e.client.Execute(ctx, showQueriesStatement, nil)
	if err != nil {
		return nil, err
	}
	if env.ErrorCode != 0 {
		return nil, rejectedError(env)
	}
	return env.Queries, nil
}

// ServerProperties returns the server's effective properties, sorted keys
// left to the caller.
func (e *Executor) ServerProperties(ctx context.Context) (map[string]string, error) {
	env, err := e.client.Execute(ctx, listPropertiesStatement, nil)
	if err != nil {
		return nil, err
	}
	if env.ErrorCode != 0 {
		return nil, rejectedError(env)
	}
	return env.Properties, nil
}

// TerminateQueries terminates every persistent query writing into the named
// object and returns how many were terminated. Quoted and unquoted sink names
// compare the way the server compares identifiers.
func (e *Executor) TerminateQueries(ctx context.Context, objectName string) (int, error) {
	queries, err := e.ListQueries(ctx)
	if err != nil {
		return 0, err
	}

	var ids []string
	for _, q := range queries {
		for _, sink := range q.Sinks {
			if ksql.IdentifiersEqual(sink, objectName) {
				ids = append(ids, q.ID)
				break
			}
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		e.log.Info("terminating query %s (writes to %s)", id, objectName)
		env, err := e.client.Execute(ctx, terminateStatement(id), nil)
		if err != nil {
			return 0, err
		}
		if env.ErrorCode != 0 {
			return 0, rejectedError(env)
		}
	}

	return len(ids), nil
}

func resultFromEnvelope(statement string, env *ksqlpipe.Envelope) *ksqlpipe.Result {
	res := &ksqlpipe.Result{
		StatementText: statement,
		HTTPStatus:    env.HTTPStatus,
		ErrorCode:     env.ErrorCode,
		Message:       env.Message,
		CommandID:     env.CommandID,
	}
	if env.CommandStatus != nil {
		res.CommandStatus = env.CommandStatus.Status
		res.CommandMessage = env.CommandStatus.Message
	}
	return res
}

func rejectedError(env *ksqlpipe.Envelope) error {
	return fmt.Errorf("ksql server returned error code %d: %s: %w",
		env.ErrorCode, env.Message, ksqlpipe.ErrStatementRejected)
}

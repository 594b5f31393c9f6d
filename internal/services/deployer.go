package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rodgers-mmsi/ksqlpipe/internal/files/scanner"
	"github.com/rodgers-mmsi/ksqlpipe/internal/ksql"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// Deployer executes whole pipeline directories: scripts run in lexical path
// order on deploy, and the objects they create are dropped in reverse order
// on teardown. Reverse order matters because downstream tables are derived
// from upstream streams and must go first.
type Deployer struct {
	exec *Executor
	log  ksqlpipe.Logger
}

// NewDeployer creates a pipeline deployer.
// Panics if any dependency is nil.
func NewDeployer(exec *Executor, log ksqlpipe.Logger) *Deployer {
	if exec == nil {
		panic("exec cannot be nil")
	}
	if log == nil {
		panic("log cannot be nil")
	}
	return &Deployer{exec: exec, log: log}
}

// scriptStatement is a parsed statement plus the script it came from, kept
// for error reporting.
type scriptStatement struct {
	file string
	stmt ksql.ScriptStatement
}

// Deploy runs every statement of every pipeline script in order. With
// cfg.DropFirst the previous incarnation of the pipeline is torn down before
// anything is created, so a deploy is repeatable.
func (d *Deployer) Deploy(ctx context.Context, cfg ksqlpipe.DeployConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	stmts, err := d.loadStatements(cfg.SourcePath)
	if err != nil {
		return err
	}

	if cfg.DropFirst {
		if err := d.teardown(ctx, stmts, cfg); err != nil {
			return err
		}
	}

	executed := 0
	for _, s := range stmts {
		classified := ksql.Classify(s.stmt.Text)

		var execErr error
		if classified.Action == ksql.ActionDrop {
			// Scripts may carry explicit drops; give them the full retry
			// orchestration.
			_, execErr = d.exec.Drop(ctx, s.stmt.Text, d.dropOptions(cfg))
		} else {
			_, execErr = d.exec.Execute(ctx, s.stmt.Text, cfg.Properties)
		}
		if execErr != nil {
			return fmt.Errorf("%s: %w", s.file, execErr)
		}
		executed++
	}

	d.log.Info("pipeline deployed: %d statement(s) from %s", executed, cfg.SourcePath)
	return nil
}

// Teardown drops everything the pipeline scripts create, in reverse creation
// order, without creating anything.
func (d *Deployer) Teardown(ctx context.Context, cfg ksqlpipe.DeployConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	stmts, err := d.loadStatements(cfg.SourcePath)
	if err != nil {
		return err
	}

	return d.teardown(ctx, stmts, cfg)
}

func (d *Deployer) teardown(ctx context.Context, stmts []scriptStatement, cfg ksqlpipe.DeployConfig) error {
	type dropSpec struct {
		statement string
		connector bool
	}

	var drops []dropSpec
	for _, s := range stmts {
		classified := ksql.Classify(s.stmt.Text)
		if classified.Action != ksql.ActionCreate || classified.Name == "" {
			continue
		}

		switch {
		case classified.Kind == ksql.KindTable || classified.Kind == ksql.KindStream:
			drop := fmt.Sprintf("DROP %s %s", classified.Kind.Keyword(), classified.Name)
			if s.stmt.DeleteTopic {
				drop += " DELETE TOPIC"
			}
			drops = append(drops, dropSpec{statement: drop + ";"})
		case classified.Kind.IsConnector():
			drops = append(drops, dropSpec{
				statement: fmt.Sprintf("DROP CONNECTOR %s;", classified.Name),
				connector: true,
			})
		}
	}

	dropped := 0
	for i := len(drops) - 1; i >= 0; i-- {
		spec := drops[i]

		res, err := d.exec.Drop(ctx, spec.statement, d.dropOptions(cfg))
		if err != nil {
			if isUnknownObject(err, res) {
				d.log.Verbose("skipping %q: object not present", spec.statement)
				continue
			}
			return err
		}
		dropped++
	}

	d.log.Info("pipeline teardown: %d object(s) dropped", dropped)
	return nil
}

func (d *Deployer) dropOptions(cfg ksqlpipe.DeployConfig) DropOptions {
	return DropOptions{
		Properties:       cfg.Properties,
		TerminateQueries: cfg.TerminateQueries,
		MaxRetries:       cfg.MaxDropRetries,
		Pause:            cfg.DropPause,
	}
}

func (d *Deployer) loadStatements(root string) ([]scriptStatement, error) {
	files, err := scanner.ScanPipeline(root)
	if err != nil {
		return nil, err
	}

	var out []scriptStatement
	for _, f := range files {
		src, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading pipeline script %s: %w", f.RelPath, err)
		}

		parsed := ksql.ParseScript(string(src))
		d.log.Verbose("script %s: %d statement(s)", f.RelPath, len(parsed))
		for _, stmt := range parsed {
			out = append(out, scriptStatement{file: f.RelPath, stmt: stmt})
		}
	}

	return out, nil
}

// isUnknownObject reports whether a rejected DROP failed only because its
// target does not exist. Teardown treats that as already done.
func isUnknownObject(err error, res *ksqlpipe.Result) bool {
	if !errors.Is(err, ksqlpipe.ErrStatementRejected) {
		return false
	}

	msg := err.Error()
	if res != nil && res.Message != "" {
		msg = res.Message
	}
	msg = strings.ToLower(msg)

	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "could not find")
}

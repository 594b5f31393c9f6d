package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

func writePipeline(t *testing.T, scripts map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func deployConfig(sourcePath string) ksqlpipe.DeployConfig {
	return ksqlpipe.DeployConfig{
		SourcePath:     sourcePath,
		MaxDropRetries: 3,
		DropPause:      1 * time.Millisecond,
	}
}

func newTestDeployer(client *mockClient, awaiter *mockAwaiter) *Deployer {
	return NewDeployer(newTestExecutor(client, awaiter), &mockLogger{})
}

func TestDeployer_Deploy_ScriptOrder(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"02_tables.sql":  "CREATE TABLE counts AS SELECT id, COUNT(*) FROM clicks GROUP BY id;",
		"01_streams.sql": "CREATE STREAM clicks (id INT) WITH (kafka_topic='clicks');",
	})

	client := &mockClient{executeFunc: func(_ string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		return acceptedEnvelope("cmd"), nil
	}}
	awaiter := &mockAwaiter{}

	if err := newTestDeployer(client, awaiter).Deploy(context.Background(), deployConfig(dir)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.executed) != 2 {
		t.Fatalf("expected 2 statements, got %v", client.executed)
	}
	if !strings.HasPrefix(client.executed[0], "CREATE STREAM clicks") {
		t.Errorf("scripts out of order: %v", client.executed)
	}
	if !strings.HasPrefix(client.executed[1], "CREATE TABLE counts") {
		t.Errorf("scripts out of order: %v", client.executed)
	}
	if len(awaiter.calls) != 2 {
		t.Errorf("expected both commands awaited, got %v", awaiter.calls)
	}
}

func TestDeployer_Deploy_ErrorNamesScript(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"01_bad.sql": "CREATE STREAM broken (id INT);",
	})

	client := &mockClient{executeFunc: func(_ string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		return rejectedEnvelope(40001, "line 1: syntax error"), nil
	}}

	err := newTestDeployer(client, &mockAwaiter{}).Deploy(context.Background(), deployConfig(dir))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "01_bad.sql") {
		t.Errorf("error should name the failing script: %v", err)
	}
}

func TestDeployer_Deploy_PropertiesForwarded(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"01_streams.sql": "CREATE STREAM clicks (id INT);",
	})

	var got map[string]string
	client := &mockClient{executeFunc: func(_ string, properties map[string]string) (*ksqlpipe.Envelope, error) {
		got = properties
		return acceptedEnvelope("cmd"), nil
	}}

	cfg := deployConfig(dir)
	cfg.Properties = map[string]string{"auto.offset.reset": "earliest"}

	if err := newTestDeployer(client, &mockAwaiter{}).Deploy(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["auto.offset.reset"] != "earliest" {
		t.Errorf("streams properties not forwarded: %v", got)
	}
}

func TestDeployer_Teardown_ReverseOrderWithDirective(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"01_streams.sql": "--@DeleteTopic\nCREATE STREAM clicks (id INT) WITH (kafka_topic='clicks');",
		"02_tables.sql":  "CREATE TABLE counts AS SELECT id, COUNT(*) FROM clicks GROUP BY id;",
	})

	client := &mockClient{executeFunc: func(statement string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		if strings.HasPrefix(statement, "DROP") {
			return acceptedEnvelope("drop/" + statement), nil
		}
		return &ksqlpipe.Envelope{HTTPStatus: 200}, nil
	}}

	if err := newTestDeployer(client, &mockAwaiter{}).Teardown(context.Background(), deployConfig(dir)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"DROP TABLE counts;", "DROP STREAM clicks DELETE TOPIC;"}
	if len(client.executed) != len(want) {
		t.Fatalf("expected %v, got %v", want, client.executed)
	}
	for i := range want {
		if client.executed[i] != want[i] {
			t.Errorf("drop %d: expected %q, got %q", i, want[i], client.executed[i])
		}
	}
}

func TestDeployer_Teardown_SkipsMissingObjects(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"01_streams.sql": "CREATE STREAM clicks (id INT);\nCREATE TABLE counts AS SELECT 1;",
	})

	client := &mockClient{executeFunc: func(statement string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		if statement == "DROP TABLE counts;" {
			return rejectedEnvelope(40001, "Table counts does not exist."), nil
		}
		return acceptedEnvelope("drop"), nil
	}}

	if err := newTestDeployer(client, &mockAwaiter{}).Teardown(context.Background(), deployConfig(dir)); err != nil {
		t.Fatalf("missing objects must be tolerated, got: %v", err)
	}

	want := []string{"DROP TABLE counts;", "DROP STREAM clicks;"}
	for i := range want {
		if client.executed[i] != want[i] {
			t.Errorf("drop %d: expected %q, got %q", i, want[i], client.executed[i])
		}
	}
}

func TestDeployer_Teardown_DropsConnectors(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"01_source.sql": "CREATE SOURCE CONNECTOR jdbc_users WITH ('connector.class'='JdbcSourceConnector');",
	})

	client := &mockClient{}
	awaiter := &mockAwaiter{}

	if err := newTestDeployer(client, awaiter).Teardown(context.Background(), deployConfig(dir)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.executed) != 1 || client.executed[0] != "DROP CONNECTOR jdbc_users;" {
		t.Errorf("unexpected drops: %v", client.executed)
	}
	if len(awaiter.calls) != 0 {
		t.Errorf("connector drops must not be polled, got %v", awaiter.calls)
	}
}

func TestDeployer_Deploy_DropFirst(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"01_streams.sql": "CREATE STREAM clicks (id INT);",
	})

	client := &mockClient{executeFunc: func(_ string, _ map[string]string) (*ksqlpipe.Envelope, error) {
		return acceptedEnvelope("cmd"), nil
	}}

	cfg := deployConfig(dir)
	cfg.DropFirst = true

	if err := newTestDeployer(client, &mockAwaiter{}).Deploy(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"DROP STREAM clicks;", "CREATE STREAM clicks (id INT);"}
	if len(client.executed) != len(want) {
		t.Fatalf("expected %v, got %v", want, client.executed)
	}
	for i := range want {
		if client.executed[i] != want[i] {
			t.Errorf("statement %d: expected %q, got %q", i, want[i], client.executed[i])
		}
	}
}

func TestDeployer_Deploy_EmptyPipeline(t *testing.T) {
	dir := t.TempDir()

	err := newTestDeployer(&mockClient{}, &mockAwaiter{}).Deploy(context.Background(), deployConfig(dir))
	if !errors.Is(err, ksqlpipe.ErrNoScriptsFound) {
		t.Fatalf("expected ErrNoScriptsFound, got %v", err)
	}
}

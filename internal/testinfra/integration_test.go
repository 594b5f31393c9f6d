package testinfra

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/internal/logging"
	"github.com/rodgers-mmsi/ksqlpipe/internal/rest"
	"github.com/rodgers-mmsi/ksqlpipe/internal/retry"
	"github.com/rodgers-mmsi/ksqlpipe/internal/services"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The full-stack test needs docker and several minutes; run it explicitly
// with KSQLPIPE_INTEGRATION=1.
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("KSQLPIPE_INTEGRATION") != "1" {
		t.Skip("set KSQLPIPE_INTEGRATION=1 to run container-based tests")
	}
}

func TestKsqlCluster_PipelineLifecycle(t *testing.T) {
	requireIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cluster, err := StartKsqlCluster(ctx)
	require.NoError(t, err)
	defer cluster.Terminate(context.Background()) //nolint:errcheck

	logger := logging.NewConsoleLogger(true)

	client, err := rest.NewClientForServer(ksqlpipe.ServerConfig{
		URL:     cluster.URL,
		Timeout: ksqlpipe.DefaultRequestTimeout,
	}, logger)
	require.NoError(t, err)

	info, err := client.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ksqlpipe_test_", info.KsqlServiceID)

	exec := services.NewExecutor(client, retry.NewPoller(client), logger)
	deployer := services.NewDeployer(exec, logger)

	dir := t.TempDir()
	script := `--@DeleteTopic
CREATE STREAM clicks (user_id VARCHAR, url VARCHAR)
  WITH (kafka_topic='clicks', value_format='JSON', partitions=1);

CREATE TABLE click_counts AS
  SELECT user_id, COUNT(*) AS clicks
  FROM clicks
  GROUP BY user_id;
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01_clicks.sql"), []byte(script), 0644))

	cfg := ksqlpipe.DeployConfig{
		SourcePath:       dir,
		TerminateQueries: true,
		MaxDropRetries:   5,
		DropPause:        2 * time.Second,
	}

	require.NoError(t, deployer.Deploy(ctx, cfg))

	queries, err := exec.ListQueries(ctx)
	require.NoError(t, err)
	assert.Len(t, queries, 1, "the CTAS should be running")

	// Deploying again with DropFirst must succeed: the previous incarnation
	// is torn down, queries terminated, objects recreated.
	cfg.DropFirst = true
	require.NoError(t, deployer.Deploy(ctx, cfg))

	require.NoError(t, deployer.Teardown(ctx, cfg))

	queries, err = exec.ListQueries(ctx)
	require.NoError(t, err)
	assert.Empty(t, queries, "teardown should terminate and drop everything")
}

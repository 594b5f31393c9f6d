package cli

import (
	"github.com/rodgers-mmsi/ksqlpipe/internal/logging"
	"github.com/rodgers-mmsi/ksqlpipe/internal/rest"
	"github.com/rodgers-mmsi/ksqlpipe/internal/retry"
	"github.com/rodgers-mmsi/ksqlpipe/internal/services"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// buildExecutor assembles the full execution stack for a server: REST
// client, completion poller, and statement executor.
func buildExecutor(server ksqlpipe.ServerConfig, verbose bool) (*services.Executor, ksqlpipe.Logger, error) {
	logger := logging.NewConsoleLogger(verbose)

	client, err := rest.NewClientForServer(server, logger)
	if err != nil {
		return nil, nil, err
	}

	poller := retry.NewPoller(client, retry.WithPollerLogger(logger))

	return services.NewExecutor(client, poller, logger), logger, nil
}

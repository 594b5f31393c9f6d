package cli

import (
	"fmt"

	"github.com/rodgers-mmsi/ksqlpipe/internal/services"
	"github.com/spf13/cobra"
)

var teardownCmd = &cobra.Command{
	Use:   "teardown <pipeline_path>",
	Short: "Drop everything a pipeline created",
	Long: `Teardown reads the pipeline scripts to learn what they create, then
drops those objects in reverse creation order. Downstream tables go before
the upstream streams they are derived from.

Objects that do not exist on the server are skipped. Objects created with a
--@DeleteTopic directive have their backing Kafka topic deleted as well.

Examples:
  # Tear down a pipeline
  ksqlpipe teardown ./pipeline

  # Terminate persistent queries that would block the drops
  ksqlpipe teardown ./pipeline --terminate`,
	Args: cobra.ExactArgs(1),
	RunE: runTeardown,
}

var teardownFlags pipelineFlagValues

func init() {
	rootCmd.AddCommand(teardownCmd)
	registerPipelineFlags(teardownCmd, &teardownFlags)
}

func runTeardown(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]
	verbose := getVerboseFlag(cmd)

	cfg, server, err := buildPipelineConfig(cmd, &teardownFlags, sourcePath, verbose)
	if err != nil {
		return err
	}

	exec, logger, err := buildExecutor(server, verbose)
	if err != nil {
		return err
	}
	deployer := services.NewDeployer(exec, logger)

	ctx, cancel := signalContext("teardown")
	defer cancel()

	if err := deployer.Teardown(ctx, cfg); err != nil {
		return fmt.Errorf("teardown failed: %w", err)
	}
	return nil
}

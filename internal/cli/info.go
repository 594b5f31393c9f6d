package cli

import (
	"context"
	"fmt"

	"github.com/rodgers-mmsi/ksqlpipe/internal/logging"
	"github.com/rodgers-mmsi/ksqlpipe/internal/rest"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show server version and cluster identity",
	Long: `Info queries the server's /info endpoint and prints its version, the
Kafka cluster it is attached to, and its ksql service id.

Useful as a connectivity check: a failing info command exits with the
connection error code before any deployment is attempted.

Example:
  ksqlpipe info --server http://localhost:8088`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

var infoFlags struct {
	server, username string
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoFlags.server, "server", "s", "",
		"ksqlDB server URL (default: $KSQLPIPE_SERVER, $KSQL_SERVER, or ksqlpipe.yaml)")
	infoCmd.Flags().StringVarP(&infoFlags.username, "username", "u", "",
		"Basic auth username (default: $KSQLPIPE_USERNAME)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	server, err := resolveServer(infoFlags.server, infoFlags.username, projectCfg, verbose)
	if err != nil {
		return err
	}

	client, err := rest.NewClientForServer(server, logging.NewConsoleLogger(verbose))
	if err != nil {
		return err
	}

	info, err := client.Info(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("server version:   %s\n", info.Version)
	fmt.Printf("kafka cluster id: %s\n", info.KafkaClusterID)
	fmt.Printf("ksql service id:  %s\n", info.KsqlServiceID)
	return nil
}

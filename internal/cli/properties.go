package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Show the server's effective configuration properties",
	Long: `Properties lists the configuration properties the server is actually
running with, one key=value per line, sorted by key.

Example:
  ksqlpipe properties | grep auto.offset.reset`,
	Args: cobra.NoArgs,
	RunE: runProperties,
}

var propertiesFlags struct {
	server, username string
}

func init() {
	rootCmd.AddCommand(propertiesCmd)

	propertiesCmd.Flags().StringVarP(&propertiesFlags.server, "server", "s", "",
		"ksqlDB server URL (default: $KSQLPIPE_SERVER, $KSQL_SERVER, or ksqlpipe.yaml)")
	propertiesCmd.Flags().StringVarP(&propertiesFlags.username, "username", "u", "",
		"Basic auth username (default: $KSQLPIPE_USERNAME)")
}

func runProperties(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	server, err := resolveServer(propertiesFlags.server, propertiesFlags.username, projectCfg, verbose)
	if err != nil {
		return err
	}

	exec, _, err := buildExecutor(server, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext("property listing")
	defer cancel()

	props, err := exec.ServerProperties(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, props[k])
	}
	return nil
}

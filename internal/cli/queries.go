package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List or terminate persistent queries",
	Long: `Queries lists the persistent queries currently running on the server:
query id, state, and the objects each query writes into.

With --terminate, every query writing into the named stream or table is
terminated instead. Unquoted names match case-insensitively, the way the
server compares identifiers.

Examples:
  ksqlpipe queries
  ksqlpipe queries --terminate click_counts`,
	Args: cobra.NoArgs,
	RunE: runQueries,
}

var queriesFlags struct {
	server, username string
	terminate        string
}

func init() {
	rootCmd.AddCommand(queriesCmd)

	queriesCmd.Flags().StringVarP(&queriesFlags.server, "server", "s", "",
		"ksqlDB server URL (default: $KSQLPIPE_SERVER, $KSQL_SERVER, or ksqlpipe.yaml)")
	queriesCmd.Flags().StringVarP(&queriesFlags.username, "username", "u", "",
		"Basic auth username (default: $KSQLPIPE_USERNAME)")
	queriesCmd.Flags().StringVar(&queriesFlags.terminate, "terminate", "",
		"Terminate all queries writing into this stream or table")
}

func runQueries(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	server, err := resolveServer(queriesFlags.server, queriesFlags.username, projectCfg, verbose)
	if err != nil {
		return err
	}

	exec, _, err := buildExecutor(server, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext("query listing")
	defer cancel()

	if queriesFlags.terminate != "" {
		n, err := exec.TerminateQueries(ctx, queriesFlags.terminate)
		if err != nil {
			return err
		}
		fmt.Printf("terminated %d quer%s writing to %s\n", n, plural(n, "y", "ies"), queriesFlags.terminate)
		return nil
	}

	queries, err := exec.ListQueries(ctx)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		fmt.Println("no persistent queries running")
		return nil
	}
	for _, q := range queries {
		fmt.Printf("%s\t%s\t%s\n", q.ID, q.State, strings.Join(q.Sinks, ","))
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

package cli

import (
	"fmt"

	"github.com/rodgers-mmsi/ksqlpipe/internal/params"
	"github.com/spf13/cobra"
)

var executeCmd = &cobra.Command{
	Use:   "execute <statement>",
	Short: "Run a single SQL statement",
	Long: `Execute submits one SQL statement and, for tracked DDL, waits for its
command to complete.

The statement is normalized before transmission: newlines become spaces and
exactly one trailing semicolon is kept. Quote the whole statement so the
shell passes it as a single argument.

Examples:
  ksqlpipe execute "CREATE STREAM clicks (id INT) WITH (kafka_topic='clicks', value_format='JSON');"
  ksqlpipe execute "DROP TABLE click_counts;" --server http://localhost:8088
  ksqlpipe execute "SHOW TOPICS;" --property auto.offset.reset=earliest`,
	Args: RequireStatement,
	RunE: runExecute,
}

var executeFlags struct {
	server, username string
	properties       []string
}

func init() {
	rootCmd.AddCommand(executeCmd)

	executeCmd.Flags().StringVarP(&executeFlags.server, "server", "s", "",
		"ksqlDB server URL (default: $KSQLPIPE_SERVER, $KSQL_SERVER, or ksqlpipe.yaml)")
	executeCmd.Flags().StringVarP(&executeFlags.username, "username", "u", "",
		"Basic auth username (default: $KSQLPIPE_USERNAME)")
	executeCmd.Flags().StringSliceVar(&executeFlags.properties, "property", nil,
		"Streams properties as key=value pairs (can be specified multiple times)")
}

func runExecute(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	server, err := resolveServer(executeFlags.server, executeFlags.username, projectCfg, verbose)
	if err != nil {
		return err
	}

	properties, err := params.ParseKeyValuePairs(executeFlags.properties)
	if err != nil {
		return err
	}

	exec, _, err := buildExecutor(server, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext("statement")
	defer cancel()

	res, err := exec.Execute(ctx, args[0], properties)
	if err != nil {
		return err
	}

	if res.CommandID != "" {
		fmt.Printf("%s %s\n", res.CommandID, res.CommandStatus)
	} else if res.Message != "" {
		fmt.Println(res.Message)
	} else {
		fmt.Println("OK")
	}
	return nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `  _             _       _
 | | _____  __ _| |_ __ (_)_ __   ___
 | |/ / __|/ _` + "`" + ` | | '_ \| | '_ \ / _ \
 |   <\__ \ (_| | | |_) | | |_) |  __/
 |_|\_\___/\__, |_| .__/|_| .__/ \___|
              |_| |_|     |_|`

var rootCmd = &cobra.Command{
	Use:   "ksqlpipe",
	Short: "ksqlDB pipeline deployment tool",
	Long: asciiLogo + `

ksqlpipe deploys stream processing pipelines to ksqlDB: it submits the SQL
scripts of a pipeline directory in order over the REST control plane, waits
for each tracked statement's command to complete, and tears pipelines down
again in reverse creation order.

Scripts are plain ksqlDB SQL. No templating, no migration ledger: the server
is the source of truth.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Server connection failed
  12 - Statement rejected by the server
  13 - Statement execution failed
  14 - Timed out waiting for a command to complete
  15 - Server never assigned a command id`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for ksqlpipe")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

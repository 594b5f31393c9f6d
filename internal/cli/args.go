package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequirePipelinePath validates that exactly one pipeline_path argument is
// provided. Returns a helpful error message with usage and examples if
// missing or too many.
func RequirePipelinePath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <pipeline_path>

Usage: %s <pipeline_path>

Example:
  %s ./pipeline --server http://localhost:8088`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireStatement validates that exactly one SQL statement argument is
// provided.
func RequireStatement(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <statement>

Usage: %s <statement>

Example:
  %s "CREATE STREAM clicks (id INT) WITH (kafka_topic='clicks', value_format='JSON');"`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d (quote the statement)", len(args))
	}
	return nil
}

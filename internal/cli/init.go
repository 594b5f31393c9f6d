package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/internal/config"
	"github.com/rodgers-mmsi/ksqlpipe/internal/tui"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new ksqlpipe project",
	Long: `Init creates a ksqlpipe project in the target directory:
- ksqlpipe.yaml with the server settings
- a sample pipeline script to start from

At a terminal, init runs an interactive wizard. In scripts and CI, pass the
settings as flags instead (or set KSQLPIPE_NON_INTERACTIVE=1).

Examples:
  ksqlpipe init .                    # Initialize in current directory
  ksqlpipe init ./my-pipeline        # Initialize in ./my-pipeline
  ksqlpipe init . --server-url http://ksql:8088 --offset-reset earliest`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var initFlags struct {
	serverURL   string
	username    string
	offsetReset string
	dropPause   string
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initFlags.serverURL, "server-url", "",
		"ksqlDB server URL to write into ksqlpipe.yaml")
	initCmd.Flags().StringVar(&initFlags.username, "username", "",
		"Basic auth username to write into ksqlpipe.yaml (password is never stored)")
	initCmd.Flags().StringVar(&initFlags.offsetReset, "offset-reset", "",
		"Default auto.offset.reset property (earliest, latest, none)")
	initCmd.Flags().StringVar(&initFlags.dropPause, "drop-pause", "",
		"Pause between DROP reissues, e.g. 10s")
}

const sampleScript = `-- Sample pipeline script. Scripts run in lexical path order;
-- split statements with semicolons.

--@DeleteTopic
CREATE STREAM clicks (user_id VARCHAR, url VARCHAR)
  WITH (kafka_topic='clicks', value_format='JSON', partitions=1);

CREATE TABLE click_counts AS
  SELECT user_id, COUNT(*) AS clicks
  FROM clicks
  GROUP BY user_id;
`

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	answers := tui.InitAnswers{
		ServerURL:   initFlags.serverURL,
		Username:    initFlags.username,
		OffsetReset: initFlags.offsetReset,
		DropPause:   initFlags.dropPause,
	}

	if tui.IsInteractive() && !cmd.Flags().Changed("server-url") {
		wizardAnswers, ok, err := tui.RunInitWizard(answers)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "cancelled")
			return nil
		}
		answers = wizardAnswers
	}

	if answers.ServerURL == "" {
		answers.ServerURL = ksqlpipe.DefaultServerURL
	}
	if answers.DropPause != "" {
		if _, err := time.ParseDuration(answers.DropPause); err != nil {
			return fmt.Errorf("invalid --drop-pause: %w: %w", err, ksqlpipe.ErrInvalidConfig)
		}
	}

	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	configPath := filepath.Join(targetPath, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in %s: %w", config.ConfigFileName, targetPath, ksqlpipe.ErrInvalidConfig)
	}

	projectCfg := config.ProjectConfig{
		Server: config.ServerConfig{
			URL:      answers.ServerURL,
			Username: answers.Username,
		},
	}
	if answers.OffsetReset != "" {
		projectCfg.Properties = map[string]string{"auto.offset.reset": answers.OffsetReset}
	}
	if answers.DropPause != "" {
		projectCfg.Drop.Pause = answers.DropPause
	}

	data, err := yaml.Marshal(&projectCfg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", config.ConfigFileName, err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", config.ConfigFileName, err)
	}

	samplePath := filepath.Join(targetPath, "01_clicks.sql")
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		if err := os.WriteFile(samplePath, []byte(sampleScript), 0o644); err != nil {
			return fmt.Errorf("writing sample script: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n✓ Project initialized in '%s'\n\n", targetPath)
	fmt.Fprintln(os.Stderr, "Next steps:")
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  ksqlpipe deploy %s\n", targetPath)
	} else {
		fmt.Fprintln(os.Stderr, "  ksqlpipe deploy .")
	}
	fmt.Fprintln(os.Stderr, "  # Redeploy from scratch:")
	fmt.Fprintf(os.Stderr, "  ksqlpipe deploy %s --drop-first --terminate\n", targetPath)

	return nil
}

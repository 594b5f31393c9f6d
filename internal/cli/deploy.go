package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rodgers-mmsi/ksqlpipe/internal/params"
	"github.com/rodgers-mmsi/ksqlpipe/internal/services"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <pipeline_path>",
	Short: "Deploy a pipeline directory to ksqlDB",
	Long: `Deploy submits every statement of every .sql script in the pipeline
directory, in lexical path order, and waits for each tracked statement's
command to complete before moving on.

The deploy command:
1. Scans the directory for .sql scripts and splits them into statements
2. Optionally tears down the previous incarnation first (--drop-first)
3. Submits each statement over the REST control plane
4. Polls command status until SUCCESS, ERROR, or TERMINATED

Script directives:
  --@DeleteTopic   Placed before a CREATE, marks the object's backing topic
                   for deletion when the object is dropped during teardown.

Password Authentication:
  For security, the password is NOT accepted as a CLI flag. Use one of:
    1. $KSQLPIPE_PASSWORD environment variable
    2. A .env file next to your shell's working directory
    3. The interactive prompt (TTY only)

Examples:
  # Basic deployment
  ksqlpipe deploy ./pipeline

  # Redeploy from scratch, terminating queries that block drops
  ksqlpipe deploy ./pipeline --drop-first --terminate

  # Deploy with streams properties (CLI overrides files)
  ksqlpipe deploy ./pipeline \
    --properties-file base.env \
    --properties-file prod.env \
    --property auto.offset.reset=earliest`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

type pipelineFlagValues struct {
	server, username string
	properties       []string
	propertiesFiles  []string
	dropFirst        bool
	terminate        bool
	maxDropRetries   int
	dropPause        time.Duration
	timeout          time.Duration
}

var deployFlags pipelineFlagValues

func init() {
	rootCmd.AddCommand(deployCmd)
	registerPipelineFlags(deployCmd, &deployFlags)

	deployCmd.Flags().BoolVar(&deployFlags.dropFirst, "drop-first", false,
		"Tear down the pipeline's previous incarnation before deploying\n"+
			"Objects that do not exist yet are skipped silently")
}

// registerPipelineFlags wires the flags shared by deploy and teardown.
func registerPipelineFlags(cmd *cobra.Command, f *pipelineFlagValues) {
	cmd.Flags().StringVarP(&f.server, "server", "s", "",
		"ksqlDB server URL\n"+
			"Precedence: --server > $KSQLPIPE_SERVER > $KSQL_SERVER > ksqlpipe.yaml > "+ksqlpipe.DefaultServerURL)
	cmd.Flags().StringVarP(&f.username, "username", "u", "",
		"Basic auth username (default: $KSQLPIPE_USERNAME or ksqlpipe.yaml)")
	cmd.Flags().StringSliceVar(&f.properties, "property", nil,
		"Streams properties as key=value pairs (can be specified multiple times)\n"+
			"Attached to every statement request\n"+
			"Example: --property auto.offset.reset=earliest")
	cmd.Flags().StringSliceVar(&f.propertiesFiles, "properties-file", nil,
		"Load streams properties from .env files (can be specified multiple times)\n"+
			"Later files override earlier ones, CLI --property overrides all")
	cmd.Flags().BoolVar(&f.terminate, "terminate", false,
		"Terminate persistent queries writing into an object before dropping it")
	cmd.Flags().IntVar(&f.maxDropRetries, "max-drop-retries", 0,
		fmt.Sprintf("Reissue attempts while waiting for a DROP command id (default %d)", ksqlpipe.DefaultDropMaxRetries))
	cmd.Flags().DurationVar(&f.dropPause, "drop-pause", 0,
		fmt.Sprintf("Wait between DROP reissues (default %s)", ksqlpipe.DefaultDropPause))
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0,
		fmt.Sprintf("HTTP request timeout (default %s)\n", ksqlpipe.DefaultRequestTimeout)+
			"Command completion is waited on separately; this bounds single requests")
}

// buildPipelineConfig resolves flags, environment, and ksqlpipe.yaml into a
// deploy configuration and the server to run it against.
func buildPipelineConfig(cmd *cobra.Command, f *pipelineFlagValues, sourcePath string, verbose bool) (ksqlpipe.DeployConfig, ksqlpipe.ServerConfig, error) {
	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return ksqlpipe.DeployConfig{}, ksqlpipe.ServerConfig{}, err
	}

	server, err := resolveServer(f.server, f.username, projectCfg, verbose)
	if err != nil {
		return ksqlpipe.DeployConfig{}, ksqlpipe.ServerConfig{}, err
	}
	if cmd.Flags().Changed("timeout") {
		server.Timeout = f.timeout
	}

	// Streams properties layer: ksqlpipe.yaml < properties files < --property.
	properties := make(map[string]string)
	if projectCfg != nil {
		properties = params.Merge(properties, projectCfg.Properties)
	}
	for _, file := range f.propertiesFiles {
		if verbose {
			fmt.Fprintf(os.Stderr, "[VERBOSE] Loading streams properties from file: %s\n", file)
		}
		fileProps, err := params.LoadEnvFile(file)
		if err != nil {
			return ksqlpipe.DeployConfig{}, ksqlpipe.ServerConfig{}, fmt.Errorf("failed to load properties file '%s': %w", file, err)
		}
		properties = params.Merge(properties, fileProps)
	}
	cliProps, err := params.ParseKeyValuePairs(f.properties)
	if err != nil {
		return ksqlpipe.DeployConfig{}, ksqlpipe.ServerConfig{}, fmt.Errorf("invalid property format: %w: %w", err, ksqlpipe.ErrInvalidConfig)
	}
	properties = params.Merge(properties, cliProps)

	cfg := ksqlpipe.DeployConfig{
		SourcePath:       sourcePath,
		Properties:       properties,
		DropFirst:        f.dropFirst,
		TerminateQueries: f.terminate,
		MaxDropRetries:   f.maxDropRetries,
		DropPause:        f.dropPause,
		Verbose:          verbose,
	}

	// ksqlpipe.yaml drop settings apply unless the flag was given.
	if projectCfg != nil {
		if cfg.MaxDropRetries == 0 {
			cfg.MaxDropRetries = projectCfg.Drop.MaxRetries
		}
		if !cmd.Flags().Changed("terminate") && projectCfg.Drop.TerminateQueries {
			cfg.TerminateQueries = true
		}
		if cfg.DropPause == 0 && projectCfg.Drop.Pause != "" {
			pause, err := time.ParseDuration(projectCfg.Drop.Pause)
			if err != nil {
				return ksqlpipe.DeployConfig{}, ksqlpipe.ServerConfig{}, fmt.Errorf("invalid drop.pause in ksqlpipe.yaml: %w: %w", err, ksqlpipe.ErrInvalidConfig)
			}
			cfg.DropPause = pause
		}
	}

	return cfg, server, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(action string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling %s...\n", action)
		cancel()
	}()

	return ctx, cancel
}

func runDeploy(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]
	verbose := getVerboseFlag(cmd)

	cfg, server, err := buildPipelineConfig(cmd, &deployFlags, sourcePath, verbose)
	if err != nil {
		return err
	}

	exec, logger, err := buildExecutor(server, verbose)
	if err != nil {
		return err
	}
	deployer := services.NewDeployer(exec, logger)

	ctx, cancel := signalContext("deployment")
	defer cancel()

	if err := deployer.Deploy(ctx, cfg); err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}
	return nil
}

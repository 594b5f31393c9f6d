package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rodgers-mmsi/ksqlpipe/internal/config"
	"github.com/rodgers-mmsi/ksqlpipe/internal/tui"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// serverURLFromEnv returns the first non-empty server URL from
// KSQLPIPE_SERVER or KSQL_SERVER environment variables.
func serverURLFromEnv() string {
	if s := os.Getenv("KSQLPIPE_SERVER"); s != "" {
		return s
	}
	return os.Getenv("KSQL_SERVER")
}

// resolveServer consolidates server resolution for every command that talks
// to a ksqlDB server.
//
// Precedence per setting: flag > environment > ksqlpipe.yaml > default.
//
// Password Authentication:
//   For security, the password is NOT accepted as a CLI flag. Use one of:
//     1. $KSQLPIPE_PASSWORD environment variable (also via .env)
//     2. Interactive prompt (when a username is set and a TTY is attached)
//   Never put passwords in shell commands (visible in history and process list).
func resolveServer(serverFlag, usernameFlag string, projectCfg *config.ProjectConfig, verbose bool) (ksqlpipe.ServerConfig, error) {
	// .env in the working directory feeds the environment, never overriding
	// variables that are already set.
	_ = godotenv.Load()

	cfg := ksqlpipe.ServerConfig{
		URL:      serverFlag,
		Username: usernameFlag,
		Timeout:  ksqlpipe.DefaultRequestTimeout,
	}

	if cfg.URL == "" {
		cfg.URL = serverURLFromEnv()
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv("KSQLPIPE_USERNAME")
	}

	if projectCfg != nil {
		if cfg.URL == "" {
			cfg.URL = projectCfg.Server.URL
		}
		if cfg.Username == "" {
			cfg.Username = projectCfg.Server.Username
		}
		if projectCfg.Timeout != "" {
			parsed, err := time.ParseDuration(projectCfg.Timeout)
			if err != nil {
				return ksqlpipe.ServerConfig{}, fmt.Errorf("invalid timeout in %s: %w", config.ConfigFileName, err)
			}
			cfg.Timeout = parsed
		}
	}

	if cfg.URL == "" {
		cfg.URL = ksqlpipe.DefaultServerURL
	}

	if cfg.Username != "" {
		cfg.Password = os.Getenv("KSQLPIPE_PASSWORD")
		if cfg.Password == "" && tui.IsInteractive() {
			password, err := tui.PromptPassword(fmt.Sprintf("Password for %s", cfg.Username))
			if err != nil {
				return ksqlpipe.ServerConfig{}, err
			}
			cfg.Password = password
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Server resolved:\n")
		fmt.Fprintf(os.Stderr, "  URL: %s\n", cfg.URL)
		fmt.Fprintf(os.Stderr, "  Username: %s\n", cfg.Username)
		fmt.Fprintf(os.Stderr, "  Request timeout: %s\n", cfg.Timeout)
	}

	return cfg, nil
}

// loadProjectConfig loads ksqlpipe.yaml from the pipeline directory. A
// missing file is not an error; commands run fine on flags and environment
// alone.
func loadProjectConfig(sourcePath string) (*config.ProjectConfig, error) {
	projectCfg, err := config.Load(sourcePath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, err, ksqlpipe.ErrInvalidConfig)
	}
	return projectCfg, nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ServerConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
}

type DropConfig struct {
	MaxRetries       int    `yaml:"max_retries,omitempty"`
	Pause            string `yaml:"pause,omitempty"`
	TerminateQueries bool   `yaml:"terminate_queries,omitempty"`
}

type ProjectConfig struct {
	Server     ServerConfig      `yaml:"server"`
	Properties map[string]string `yaml:"properties"`
	Drop       DropConfig        `yaml:"drop"`
	Timeout    string            `yaml:"timeout"`
}

const ConfigFileName = "ksqlpipe.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

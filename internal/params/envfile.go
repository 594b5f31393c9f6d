package params

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ParseEnvFile parses environment file content in .env format and returns a
// map of key-value pairs. Comments, blank lines, and quoted values follow
// godotenv's rules.
func ParseEnvFile(content []byte) (map[string]string, error) {
	result, err := godotenv.Unmarshal(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing env file: %w", err)
	}
	return result, nil
}

// LoadEnvFile reads and parses a .env file from disk.
func LoadEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEnvFile(data)
}

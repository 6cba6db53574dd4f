package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SecretConfig matches the structure of secrets.yaml. The API key lives
// apart from the main config so the latter can be committed or shared.
type SecretConfig struct {
	API struct {
		Key string `yaml:"key"`
	} `yaml:"api"`
}

// SecretsPath returns the expected location of the secrets file.
func SecretsPath() string {
	return filepath.Join(DataDir(), "secrets.yaml")
}

// LoadSecretConfig loads the API key from a separate yaml file.
// It returns error if file is missing (Fail Fast).
func LoadSecretConfig(path string) (*SecretConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret config: %w", err)
	}

	var cfg SecretConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse secret config: %w", err)
	}

	return &cfg, nil
}

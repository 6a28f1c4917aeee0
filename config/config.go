package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the retrieval tool.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DataConfig holds catalog and database locations.
type DataConfig struct {
	Dir      string   `yaml:"dir"`      // directory holding the works catalog
	Includes []string `yaml:"includes"` // glob patterns for catalog files
	Excludes []string `yaml:"excludes"`
}

// EmbeddingConfig holds embedding model configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "hash"
	Model     string `yaml:"model"`       // e.g., "bge-small-zh-v1.5"
	BaseURL   string `yaml:"base_url"`    // endpoint for local/compatible servers
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int `yaml:"top_k"`
	CacheSize    int `yaml:"cache_size"`
	CacheTTLSecs int `yaml:"cache_ttl_secs"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:      "data",
			Includes: []string{"**/*.yaml", "**/*.yml"},
			Excludes: []string{"**/.*/**"},
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "bge-small-zh-v1.5",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 512,
			BatchSize: 32,
		},
		Retrieve: RetrieveConfig{
			TopK:         3,
			CacheSize:    100,
			CacheTTLSecs: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for exhibitrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "exhibitrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".exhibitrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the vector database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".exhibitrag", "works.db")
}

// EnsureStateDir ensures the .exhibitrag directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".exhibitrag"), 0755)
}

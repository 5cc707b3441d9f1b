package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete patchmatch configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Similarity SimilarityConfig `json:"similarity" mapstructure:"similarity"`
	StripLevel StripLevelConfig `json:"stripLevel" mapstructure:"stripLevel"`
	Batch      BatchConfig      `json:"batch" mapstructure:"batch"`
	Store      StoreConfig      `json:"store" mapstructure:"store"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// SimilarityConfig contains scoring weights and match thresholds
type SimilarityConfig struct {
	PathWeight    float64 `json:"pathWeight" mapstructure:"pathWeight"`
	AddedWeight   float64 `json:"addedWeight" mapstructure:"addedWeight"`
	RemovedWeight float64 `json:"removedWeight" mapstructure:"removedWeight"`

	IdenticalThreshold float64 `json:"identicalThreshold" mapstructure:"identicalThreshold"`
	SimilarThreshold   float64 `json:"similarThreshold" mapstructure:"similarThreshold"`
	PartialThreshold   float64 `json:"partialThreshold" mapstructure:"partialThreshold"`
}

// StripLevelConfig contains strip-level resolver settings
type StripLevelConfig struct {
	// MaxLevel bounds the brute-force search over candidate strip levels
	MaxLevel int `json:"maxLevel" mapstructure:"maxLevel"`
	// Fallback is the level used when no overlap exists at any candidate
	Fallback int `json:"fallback" mapstructure:"fallback"`
}

// BatchConfig contains batch processing settings
type BatchConfig struct {
	Workers   int `json:"workers" mapstructure:"workers"`
	QueueSize int `json:"queueSize" mapstructure:"queueSize"`
	// MaxPatchLines skips similarity scoring for pathological inputs
	MaxPatchLines int `json:"maxPatchLines" mapstructure:"maxPatchLines"`
}

// StoreConfig contains results database settings
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
	// CompressRaw stores raw patch text zstd-compressed
	CompressRaw bool `json:"compressRaw" mapstructure:"compressRaw"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Similarity: SimilarityConfig{
			PathWeight:         0.3,
			AddedWeight:        0.4,
			RemovedWeight:      0.3,
			IdenticalThreshold: 0.95,
			SimilarThreshold:   0.8,
			PartialThreshold:   0.5,
		},
		StripLevel: StripLevelConfig{
			MaxLevel: 6,
			Fallback: 1,
		},
		Batch: BatchConfig{
			Workers:       4,
			QueueSize:     64,
			MaxPatchLines: 100000,
		},
		Store: StoreConfig{
			Path:        ".patchmatch/patchmatch.db",
			CompressRaw: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.patchmatch/config.json,
// falling back to defaults when no config file exists.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".patchmatch"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <root>/.patchmatch/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".patchmatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	sum := c.Similarity.PathWeight + c.Similarity.AddedWeight + c.Similarity.RemovedWeight
	if sum <= 0 {
		return &ConfigError{Field: "similarity", Message: "weights must sum to a positive value"}
	}
	if c.Similarity.PartialThreshold > c.Similarity.SimilarThreshold ||
		c.Similarity.SimilarThreshold > c.Similarity.IdenticalThreshold {
		return &ConfigError{Field: "similarity", Message: "thresholds must be ordered partial <= similar <= identical"}
	}
	if c.StripLevel.MaxLevel < 0 {
		return &ConfigError{Field: "stripLevel.maxLevel", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

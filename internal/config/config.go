package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/user/hello-proto/internal/codec"
	"github.com/user/hello-proto/pkg/samples"
)

// ErrInvalid is wrapped by every error returned from Validate
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	Sample  SampleConfig  `json:"sample"`
	Kafka   KafkaConfig   `json:"kafka"`
	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
}

// SampleConfig selects which message is built and how it is encoded
type SampleConfig struct {
	Variant string `json:"variant"`
	Format  string `json:"format"`
	// DryRun skips encoding, storage and publishing
	DryRun bool `json:"dryRun"`
}

// KafkaConfig holds Kafka-related configuration
type KafkaConfig struct {
	Enabled  bool     `json:"enabled"`
	Brokers  []string `json:"brokers"`
	Topic    string   `json:"topic"`
	ClientID string   `json:"clientId,omitempty"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Type     string `json:"type"` // "none" or "file"
	FilePath string `json:"filePath,omitempty"`
}

// LoggingConfig mirrors logging.Config
type LoggingConfig struct {
	Level      string `json:"level"`
	OutputPath string `json:"outputPath"`
	Encoding   string `json:"encoding"`
	DevMode    bool   `json:"devMode"`
}

// Default returns the configuration used when no file or environment
// overrides are present
func Default() *Config {
	return &Config{
		Sample: SampleConfig{
			Variant: samples.VariantNested,
			Format:  codec.FormatProto,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{"localhost:9092"},
			Topic:    "sample-messages",
			ClientID: "hello-proto",
		},
		Storage: StorageConfig{
			Type:     "none",
			FilePath: "data/samples",
		},
		Logging: LoggingConfig{
			Level:      "info",
			OutputPath: "stderr",
			Encoding:   "json",
		},
	}
}

// Load reads configuration from a JSON file and environment variables
func Load() (*Config, error) {
	cfg := Default()

	// Try to load from config file if it exists
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides cfg with any environment variables that are set
func applyEnv(cfg *Config) error {
	if v := os.Getenv("SAMPLE_VARIANT"); v != "" {
		cfg.Sample.Variant = v
	}
	if v := os.Getenv("SAMPLE_FORMAT"); v != "" {
		cfg.Sample.Format = v
	}
	if err := envBool("SAMPLE_DRY_RUN", &cfg.Sample.DryRun); err != nil {
		return err
	}

	if err := envBool("KAFKA_ENABLED", &cfg.Kafka.Enabled); err != nil {
		return err
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		cfg.Kafka.Topic = topic
	}

	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("STORAGE_PATH"); v != "" {
		cfg.Storage.FilePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_ENCODING"); v != "" {
		cfg.Logging.Encoding = v
	}
	return envBool("LOG_DEV_MODE", &cfg.Logging.DevMode)
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, v)
	}
	*dst = b
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration can be wired
func (c *Config) Validate() error {
	if _, err := samples.Lookup(c.Sample.Variant); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := codec.New(c.Sample.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	switch c.Storage.Type {
	case "", "none":
	case "file":
		if c.Storage.FilePath == "" {
			return fmt.Errorf("%w: file storage requires filePath", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unsupported storage type %q", ErrInvalid, c.Storage.Type)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("%w: kafka enabled without brokers", ErrInvalid)
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("%w: kafka enabled without topic", ErrInvalid)
		}
	}

	return nil
}

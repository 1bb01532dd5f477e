package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points CONFIG_PATH at a file that does not exist and clears the
// override variables so the host environment cannot leak in
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"SAMPLE_VARIANT", "SAMPLE_FORMAT", "SAMPLE_DRY_RUN",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"STORAGE_TYPE", "STORAGE_PATH",
		"LOG_LEVEL", "LOG_ENCODING", "LOG_DEV_MODE",
	} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("CONFIG_PATH", path)
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "nested", cfg.Sample.Variant)
	assert.Equal(t, "none", cfg.Storage.Type)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "stderr", cfg.Logging.OutputPath)
}

func TestLoadFile(t *testing.T) {
	path := isolate(t)
	content := `{
		"sample": {"variant": "timed", "format": "yaml"},
		"storage": {"type": "file", "filePath": "out"},
		"kafka": {"enabled": true, "brokers": ["k1:9092"], "topic": "t"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "timed", cfg.Sample.Variant)
	assert.Equal(t, "yaml", cfg.Sample.Format)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "out", cfg.Storage.FilePath)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092"}, cfg.Kafka.Brokers)
	// untouched sections keep defaults
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileErrors(t *testing.T) {
	path := isolate(t)

	require.NoError(t, os.WriteFile(path, []byte(`{"sample": `), 0o644))
	_, err := Load()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"bogus": 1}`), 0o644))
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SAMPLE_VARIANT", "basic")
	t.Setenv("SAMPLE_FORMAT", "msgpack")
	t.Setenv("SAMPLE_DRY_RUN", "true")
	t.Setenv("KAFKA_ENABLED", "1")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("KAFKA_TOPIC", "samples")
	t.Setenv("STORAGE_TYPE", "file")
	t.Setenv("STORAGE_PATH", "/tmp/samples")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "basic", cfg.Sample.Variant)
	assert.Equal(t, "msgpack", cfg.Sample.Format)
	assert.True(t, cfg.Sample.DryRun)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "samples", cfg.Kafka.Topic)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "/tmp/samples", cfg.Storage.FilePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.DevMode)
}

func TestLoadBadBool(t *testing.T) {
	isolate(t)
	t.Setenv("KAFKA_ENABLED", "maybe")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown variant", func(c *Config) { c.Sample.Variant = "go" }},
		{"unknown format", func(c *Config) { c.Sample.Format = "xml" }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "s3" }},
		{"file without path", func(c *Config) { c.Storage.Type = "file"; c.Storage.FilePath = "" }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
		{"kafka without topic", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "" }},
	}

	require.NoError(t, Default().Validate())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

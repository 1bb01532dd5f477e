package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger passed to every component
type Logger struct {
	*zap.SugaredLogger
}

// Config holds configuration for the logger
type Config struct {
	Level      string `json:"level"`
	OutputPath string `json:"outputPath"`
	Encoding   string `json:"encoding"`
	DevMode    bool   `json:"devMode"`
}

// DefaultConfig returns a default logging configuration. Logs go to stderr
// because stdout carries the program's own output.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		OutputPath: "stderr",
		Encoding:   "json",
	}
}

// New creates a new logger with the given configuration
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zapConfig zap.Config
	if cfg.DevMode {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)
	output := cfg.OutputPath
	if output == "" {
		output = "stderr"
	}
	zapConfig.OutputPaths = []string{output}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	if cfg.Encoding != "" {
		zapConfig.Encoding = cfg.Encoding
	}

	zapLogger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	return Wrap(zapLogger), nil
}

// Wrap adapts an existing zap logger
func Wrap(l *zap.Logger) *Logger {
	return &Logger{l.Sugar()}
}

// NewDevelopmentLogger creates a console logger at debug level
func NewDevelopmentLogger() (*Logger, error) {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.Encoding = "console"
	cfg.DevMode = true
	return New(cfg)
}

// NewProductionLogger creates a JSON logger at info level
func NewProductionLogger() (*Logger, error) {
	return New(DefaultConfig())
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return Wrap(zap.NewNop())
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{l.With(key, value)}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{l.With(args...)}
}

// WithError adds an error field to the logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{l.With("error", err)}
}

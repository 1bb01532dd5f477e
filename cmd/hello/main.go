package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/user/hello-proto/internal/codec"
	"github.com/user/hello-proto/internal/config"
	"github.com/user/hello-proto/internal/kafka"
	"github.com/user/hello-proto/internal/logging"
	"github.com/user/hello-proto/internal/service"
	"github.com/user/hello-proto/internal/storage"
	"github.com/user/hello-proto/pkg/samples"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use panic for initialization errors before logger is available
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		OutputPath: cfg.Logging.OutputPath,
		Encoding:   cfg.Logging.Encoding,
		DevMode:    cfg.Logging.DevMode,
	})
	if err != nil {
		panic("Failed to create logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err = run(ctx, cfg, logger, os.Stdout)
	stop()
	if err != nil {
		logger.Errorw("hello failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run wires the configured components and executes the service once
func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, stdout io.Writer) error {
	build, err := samples.Lookup(cfg.Sample.Variant)
	if err != nil {
		return err
	}

	c, err := codec.New(cfg.Sample.Format)
	if err != nil {
		return err
	}

	store, err := storage.NewStorage(cfg.Storage, c)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	opts := service.Options{
		Build:  build,
		Codec:  c,
		Store:  store,
		DryRun: cfg.Sample.DryRun,
	}

	if cfg.Kafka.Enabled && !cfg.Sample.DryRun {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		defer producer.Close()
		opts.Publisher = producer
	}

	logger.Debugw("Starting hello",
		"variant", cfg.Sample.Variant,
		"format", c.Name(),
		"storage", cfg.Storage.Type,
		"kafka", cfg.Kafka.Enabled)

	return service.NewService(opts, logger).Run(ctx, stdout)
}

package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/user/hello-proto/internal/codec"
	"github.com/user/hello-proto/internal/logging"
	"github.com/user/hello-proto/internal/storage"
	"github.com/user/hello-proto/pkg/models"
	"github.com/user/hello-proto/pkg/samples"
)

// Greeting is printed after the message rendering
const Greeting = "Hello, world!"

// Publisher sends an encoded message somewhere outside the process
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte, contentType string) error
}

// Options configures a Service
type Options struct {
	Build     samples.Builder
	Codec     codec.Codec
	Store     storage.Repository
	Publisher Publisher // may be nil
	DryRun    bool
	Now       func() time.Time
	NewID     func() string
}

// Service builds the sample message, prints it and optionally hands the
// encoded form to storage and a publisher
type Service struct {
	build     samples.Builder
	codec     codec.Codec
	store     storage.Repository
	publisher Publisher
	dryRun    bool
	now       func() time.Time
	newID     func() string
	logger    *logging.Logger
}

// NewService creates a new service instance
func NewService(opts Options, logger *logging.Logger) *Service {
	s := &Service{
		build:     opts.Build,
		codec:     opts.Codec,
		store:     opts.Store,
		publisher: opts.Publisher,
		dryRun:    opts.DryRun,
		now:       opts.Now,
		newID:     opts.NewID,
		logger:    logger,
	}
	if s.build == nil {
		s.build = func(time.Time) *models.SampleMessage { return samples.Nested() }
	}
	if s.store == nil {
		s.store = storage.NopStorage{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Run writes the message rendering and the greeting to out, one line each,
// then stores and publishes the encoded message.
// Errors after the two lines are written are still returned.
func (s *Service) Run(ctx context.Context, out io.Writer) error {
	msg := s.build(s.now())
	s.logger.Debugw("Sample message built", "name", msg.Name)

	if _, err := fmt.Fprintln(out, msg.String()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if _, err := fmt.Fprintln(out, Greeting); err != nil {
		return fmt.Errorf("failed to write greeting: %w", err)
	}

	if s.dryRun {
		s.logger.Debug("Dry run, skipping storage and publishing")
		return nil
	}

	return s.deliver(ctx, msg)
}

// deliver encodes msg once and passes it to storage and the publisher
func (s *Service) deliver(ctx context.Context, msg *models.SampleMessage) error {
	if s.codec == nil {
		return fmt.Errorf("no codec configured")
	}

	id := s.newID()
	msgLogger := s.logger.WithFields(map[string]interface{}{
		"messageId": id,
		"format":    s.codec.Name(),
	})

	startTime := time.Now()

	if err := s.store.SaveMessage(id, msg.Clone()); err != nil {
		msgLogger.Errorw("Failed to store message", "error", err)
		return fmt.Errorf("failed to store message: %w", err)
	}

	if s.publisher != nil {
		payload, err := s.codec.Marshal(msg)
		if err != nil {
			msgLogger.Errorw("Failed to encode message", "error", err)
			return fmt.Errorf("failed to encode message: %w", err)
		}
		if err := s.publisher.Publish(ctx, id, payload, s.codec.ContentType()); err != nil {
			return fmt.Errorf("failed to publish message: %w", err)
		}
	}

	msgLogger.Infow("Message delivered",
		"processingTimeMs", time.Since(startTime).Milliseconds(),
		"published", s.publisher != nil)

	return nil
}

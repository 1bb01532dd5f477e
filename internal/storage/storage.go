package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/hello-proto/internal/codec"
	"github.com/user/hello-proto/internal/config"
	"github.com/user/hello-proto/pkg/models"
)

// ErrNotFound is returned when no message is stored under the requested id
var ErrNotFound = errors.New("message not found")

// Repository defines the storage interface
type Repository interface {
	SaveMessage(id string, message *models.SampleMessage) error
	GetMessage(id string) (*models.SampleMessage, error)
	Close() error
}

// NewStorage creates a new storage repository based on the configuration.
// Messages are encoded with c.
func NewStorage(cfg config.StorageConfig, c codec.Codec) (Repository, error) {
	switch cfg.Type {
	case "", "none":
		return NopStorage{}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file storage requires a path")
		}
		return &FileStorage{
			basePath: cfg.FilePath,
			codec:    c,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// NopStorage discards everything it is given
type NopStorage struct{}

// SaveMessage does nothing
func (NopStorage) SaveMessage(string, *models.SampleMessage) error { return nil }

// GetMessage always reports ErrNotFound
func (NopStorage) GetMessage(id string) (*models.SampleMessage, error) {
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Close does nothing
func (NopStorage) Close() error { return nil }

// FileStorage keeps one encoded message per file
type FileStorage struct {
	basePath string
	codec    codec.Codec
}

func (f *FileStorage) path(id string) string {
	return filepath.Join(f.basePath, id+"."+f.codec.Extension())
}

// SaveMessage encodes a message and writes it to <basePath>/<id>.<ext>
func (f *FileStorage) SaveMessage(id string, message *models.SampleMessage) error {
	if id == "" || id != filepath.Base(id) {
		return fmt.Errorf("invalid message id %q", id)
	}

	if err := os.MkdirAll(f.basePath, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	data, err := f.codec.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := os.WriteFile(f.path(id), data, 0o644); err != nil {
		return fmt.Errorf("failed to write message to file: %w", err)
	}

	return nil
}

// GetMessage reads and decodes the message stored under id
func (f *FileStorage) GetMessage(id string) (*models.SampleMessage, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read message file: %w", err)
	}

	message, err := f.codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", id, err)
	}

	return message, nil
}

// Close closes the storage connection
func (f *FileStorage) Close() error {
	// No resources to release for file storage
	return nil
}

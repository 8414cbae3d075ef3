package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage defines the interface for export file storage
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a file; returns ErrObjectNotFound when absent
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	Delete(ctx context.Context, path string) error

	// GetURL returns a URL the admin can download the file from
	GetURL(ctx context.Context, path string) (string, error)
}

// Config holds storage configuration
type Config struct {
	Type          string // local, s3
	BasePath      string // For local storage
	BaseURL       string // Public URL base
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string // For MinIO / S3-compatible endpoints
	PresignExpiry time.Duration
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

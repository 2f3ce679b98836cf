package file

import (
	"context"
	"fmt"
	"io"
)

// Backend abstracts where share files physically live. Paths are always
// addressed as shareID/fileID; the backend decides the layout below that.
type Backend interface {
	Mkdir(ctx context.Context, shareID string) error
	Put(ctx context.Context, shareID, fileID string, data io.Reader) error
	Get(ctx context.Context, shareID, fileID string) (io.ReadCloser, error)
	Delete(ctx context.Context, shareID, fileID string) error
	DeleteAll(ctx context.Context, shareID string) error
}

// Config defines the storage backend configuration
type Config struct {
	Backend string // filesystem, s3
	Root    string // filesystem backend root directory
	S3      S3Config
}

// S3Config holds the object storage settings for the s3 backend
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "filesystem", "":
		return NewFilesystemBackend(cfg.Root)
	case "s3":
		return NewS3Backend(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

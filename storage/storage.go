package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned by Download when nothing is stored at the path
var ErrObjectNotFound = errors.New("object not found")

// Storage is the backend for profile photo bytes
type Storage interface {
	// Upload stores an object and returns its storage path
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves an object by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes an object by storage path
	Delete(ctx context.Context, storagePath string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string // S3-compatible endpoints such as MinIO
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// ConfigFromEnv reads STORAGE_TYPE and the backend specific variables
func ConfigFromEnv() StorageConfig {
	cfg := StorageConfig{
		Type:      StorageType(strings.ToLower(os.Getenv("STORAGE_TYPE"))),
		LocalPath: os.Getenv("STORAGE_LOCAL_PATH"),
	}
	if cfg.Type == "" {
		cfg.Type = StorageTypeLocal
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = "./storage/photos"
	}

	if cfg.Type == StorageTypeS3 {
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		cfg.S3Endpoint = os.Getenv("AWS_S3_ENDPOINT")
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	return cfg
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentType returns the image MIME type for a filename, or
// application/octet-stream when the extension is not a supported image.
func ContentType(filename string) string {
	if ct, ok := imageTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsImage reports whether the filename has a supported image extension
func IsImage(filename string) bool {
	_, ok := imageTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// generateStoragePath builds photos/<2-char shard>/<id><ext>. The original
// name only contributes its extension so user input never reaches the path.
func generateStoragePath(fileID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	id := fileID.String()
	return fmt.Sprintf("photos/%s/%s%s", id[:2], id, ext)
}

package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Storage writes documents by key.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

const (
	DriverNone  = "none"
	DriverLocal = "local"
	DriverS3    = "s3"
)

type Config struct {
	Driver   string `env:"ARCHIVE_DRIVER" envDefault:"none"`
	LocalDir string `env:"ARCHIVE_LOCAL_DIR" envDefault:"./data/archive"`

	S3Bucket         string `env:"ARCHIVE_S3_BUCKET"`
	S3Region         string `env:"ARCHIVE_S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID    string `env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"ARCHIVE_S3_SECRET_KEY"`
	S3Endpoint       string `env:"ARCHIVE_S3_ENDPOINT"`
	S3ForcePathStyle bool   `env:"ARCHIVE_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// New builds the storage selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverNone:
		return Nop{}, nil
	case DriverLocal:
		return NewLocalStorage(cfg.LocalDir)
	case DriverS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			AccessKeyID:    cfg.S3AccessKeyID,
			SecretKey:      cfg.S3SecretKey,
			Endpoint:       cfg.S3Endpoint,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}

// Nop accepts and discards every write.
type Nop struct{}

func (Nop) Put(context.Context, string, []byte, string) error { return nil }

// cleanKey rejects absolute keys and keys escaping the root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

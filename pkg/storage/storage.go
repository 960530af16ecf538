package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/smithy-go"
)

// Storage defines the interface for file storage operations.
type Storage interface {
	// Put uploads data from a reader under an auto-generated key.
	// The size parameter feeds the content-length header.
	Put(ctx context.Context, r io.Reader, size int64, opts ...PutOption) (*FileInfo, error)

	// Get retrieves a file. The caller closes the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file.
	Delete(ctx context.Context, key string) error

	// URL returns a URL for the file: public when the object is
	// world-readable, otherwise a signed URL with the given expiry.
	URL(ctx context.Context, key string) (string, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `yaml:"bucket"`

	// AccessKey and SecretKey are the credentials (required).
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// Endpoint is a custom S3 endpoint, for MinIO and friends.
	Endpoint string `yaml:"endpoint"`

	// Region defaults to us-east-1.
	Region string `yaml:"region"`

	// PublicURL is a CDN or public URL prefix for public objects.
	PublicURL string `yaml:"public_url"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `yaml:"path_style"`

	// PublicRead uploads objects world-readable. Listing images are
	// served directly from the bucket, so this defaults to true in the
	// app config.
	PublicRead bool `yaml:"public_read"`
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// FileInfo describes an uploaded file.
type FileInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// Sentinel errors for storage operations.
var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrNotFound      = errors.New("storage: file not found")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrPresignFailed = errors.New("storage: presign failed")
)

// wrapS3Error maps provider errors onto sentinel errors. The original
// error is formatted with %v so callers match with errors.Is, not
// errors.As against AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

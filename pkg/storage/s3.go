package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wanderlust-app/wanderlust/pkg/id"
)

// DefaultURLExpiry is the expiry applied to signed URLs.
const DefaultURLExpiry = 15 * time.Minute

// PutOption configures a single upload.
type PutOption func(*putOptions)

type putOptions struct {
	prefix      string
	contentType string
}

// WithPrefix places the object under a path prefix, e.g. "listings".
func WithPrefix(prefix string) PutOption {
	return func(o *putOptions) { o.prefix = prefix }
}

// WithContentType overrides content-type sniffing.
func WithContentType(ct string) PutOption {
	return func(o *putOptions) { o.contentType = ct }
}

// S3Storage implements Storage on S3-compatible object storage.
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New creates an S3Storage with the given configuration.
func New(cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	client := s3.New(s3.Options{}, opts...)

	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Put uploads data under a generated key "{prefix}/{ulid}{ext}".
func (s *S3Storage) Put(ctx context.Context, r io.Reader, size int64, opts ...PutOption) (*FileInfo, error) {
	var o putOptions
	for _, opt := range opts {
		opt(&o)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	contentType := o.contentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := s.buildKey(o.prefix, contentType)

	acl := types.ObjectCannedACLPrivate
	if s.cfg.PublicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           acl,
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &FileInfo{Key: key, Size: size, ContentType: contentType}, nil
}

// Get retrieves a file from S3.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return out.Body, nil
}

// Delete removes a file from S3.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// URL returns a public URL for world-readable buckets, or a signed URL
// otherwise.
func (s *S3Storage) URL(ctx context.Context, key string) (string, error) {
	if s.cfg.PublicRead {
		return s.publicURL(key), nil
	}

	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = DefaultURLExpiry
	})
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return result.URL, nil
}

func (s *S3Storage) buildKey(prefix, contentType string) string {
	ext := extFromMIME(contentType)
	name := id.NewULID() + ext
	if prefix == "" {
		return name
	}
	return strings.Trim(prefix, "/") + "/" + name
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
		if s.cfg.PathStyle {
			return fmt.Sprintf("%s/%s/%s", endpoint, s.cfg.Bucket, key)
		}
		return fmt.Sprintf("%s/%s", endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// extFromMIME covers the image types listing uploads accept plus a
// binary fallback.
func extFromMIME(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

var _ Storage = (*S3Storage)(nil)

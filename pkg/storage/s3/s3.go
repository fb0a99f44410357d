// Package s3 implements the S3-compatible object storage backend.
// It supports AWS S3, Aliyun OSS, MinIO and other S3-compatible services.
package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/yi-nology/easy_fm/pkg/errs"
)

const (
	// URLModeLink describes stored objects as endpoint/bucket/key
	URLModeLink = "link"
	// URLModePresigned describes stored objects with a presigned GET URL
	URLModePresigned = "presigned"

	// DefaultPresignExpiry is the default expiry time for presigned URLs
	DefaultPresignExpiry = 7 * 24 * time.Hour

	credentialSource = "easy_fm"
)

// Config is the datastore payload for the s3 kind.
type Config struct {
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	PathStyle bool   `json:"path_style,omitempty"` // required for MinIO
	URLMode   string `json:"url_mode,omitempty"`
}

// Storage talks to a single bucket.
type Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	cfg           Config
}

// New creates a new S3 backend. The client is built lazily by the SDK, so no
// request is made here.
func New(cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("access key and secret key are required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	switch cfg.URLMode {
	case "":
		cfg.URLMode = URLModeLink
	case URLModeLink, URLModePresigned:
	default:
		return nil, fmt.Errorf("unsupported url mode: %s", cfg.URLMode)
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, credentialSource),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3OptFns []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.PathStyle {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3OptFns...)
	return &Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		cfg:           cfg,
	}, nil
}

// Put uploads the local file src under key.
func (s *Storage) Put(ctx context.Context, key, src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", errs.File(fmt.Errorf("open source: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", errs.File(fmt.Errorf("stat source: %w", err))
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	}
	if contentType := mime.TypeByExtension(filepath.Ext(key)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errs.OperationFailed(fmt.Errorf("put object: %w", err))
	}
	return s.describe(ctx, key), nil
}

// Get downloads the object under key into the local file dst. The
// destination is only created once the object has been found.
func (s *Storage) Get(ctx context.Context, key, dst string) error {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errs.OperationFailed(fmt.Errorf("get object: %w", err))
	}
	defer output.Body.Close()

	f, err := os.Create(dst)
	if err != nil {
		return errs.File(fmt.Errorf("create local file: %w", err))
	}
	if err := copyObject(f, output.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	if err := f.Close(); err != nil {
		return errs.File(fmt.Errorf("close local file: %w", err))
	}
	return nil
}

// trackedWriter remembers the error of a failed Write so a copy failure can
// be attributed to the local side.
type trackedWriter struct {
	w   io.Writer
	err error
}

func (t *trackedWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

// copyObject streams an object body into dst. Local write failures are file
// errors; failures reading the body are operation failures.
func copyObject(dst io.Writer, body io.Reader) error {
	w := &trackedWriter{w: dst}
	if _, err := io.Copy(w, body); err != nil {
		if w.err != nil {
			return errs.File(fmt.Errorf("write local file: %w", err))
		}
		return errs.OperationFailed(fmt.Errorf("read download stream: %w", err))
	}
	return nil
}

// Delete removes the object under key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errs.OperationFailed(fmt.Errorf("delete object: %w", err))
	}
	return nil
}

func (s *Storage) describe(ctx context.Context, key string) string {
	if s.cfg.URLMode != URLModePresigned {
		return Link(s.cfg, key)
	}
	presignResult, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = DefaultPresignExpiry
	})
	if err != nil {
		// the object is stored; fall back to the plain locator
		return Link(s.cfg, key)
	}
	return presignResult.URL
}

// Link returns the plain locator of key: endpoint/bucket/key, or the AWS
// virtual-hosted URL when no endpoint is configured.
func Link(cfg Config, key string) string {
	if cfg.Endpoint == "" {
		region := cfg.Region
		if region == "" {
			region = "us-east-1"
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, region, key)
	}
	return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket + "/" + key
}

// Package publish uploads rendered passes to S3-compatible storage.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// DefaultTimeout bounds a single object upload.
const DefaultTimeout = 30 * time.Second

var ErrNoBucket = errors.New("no S3 bucket configured")

// Config locates the bucket. Endpoint may be empty for AWS itself.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	ACL       string
	Timeout   time.Duration
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ConfigFromEnv reads STRAND_S3_ENDPOINT, STRAND_S3_REGION, STRAND_S3_BUCKET,
// STRAND_S3_ACCESS_KEY, STRAND_S3_SECRET_KEY, STRAND_S3_ACL and
// STRAND_S3_TIMEOUT.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Endpoint:  os.Getenv("STRAND_S3_ENDPOINT"),
		Region:    getEnv("STRAND_S3_REGION", "us-east-1"),
		Bucket:    os.Getenv("STRAND_S3_BUCKET"),
		AccessKey: os.Getenv("STRAND_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("STRAND_S3_SECRET_KEY"),
		ACL:       os.Getenv("STRAND_S3_ACL"),
		Timeout:   DefaultTimeout,
	}
	if v := os.Getenv("STRAND_S3_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parse STRAND_S3_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if cfg.Bucket == "" {
		return cfg, ErrNoBucket
	}
	return cfg, nil
}

// Uploader puts objects into one bucket.
type Uploader struct {
	cfg    Config
	client s3iface.S3API
}

// New opens an S3 session for cfg. Static credentials are used when both
// keys are set; otherwise the SDK's default chain applies.
func New(cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.Endpoint != ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create S3 session: %w", err)
	}
	return NewWithClient(cfg, s3.New(sess)), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(cfg Config, client s3iface.S3API) *Uploader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Uploader{cfg: cfg, client: client}
}

// Upload stores data under key.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	size := int64(len(data))
	in := &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType(key)),
	}
	if u.cfg.ACL != "" {
		in.ACL = aws.String(u.cfg.ACL)
	}
	if _, err := u.client.PutObjectWithContext(ctx, in); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	slog.Debug("uploaded object", "bucket", u.cfg.Bucket, "key", key, "bytes", size)
	return nil
}

// UploadFiles uploads each file under prefix, keyed by base name, and
// returns the keys written. It stops at the first failure.
func (u *Uploader) UploadFiles(ctx context.Context, prefix string, files []string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return keys, fmt.Errorf("read %s: %w", f, err)
		}
		key := Key(prefix, filepath.Base(f))
		if err := u.Upload(ctx, key, data); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// UploadDir uploads every regular file directly inside dir.
func (u *Uploader) UploadDir(ctx context.Context, prefix, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return u.UploadFiles(ctx, prefix, files)
}

// Key joins an object key prefix and name with single slashes.
func Key(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func contentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

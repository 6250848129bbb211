package io

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds S3 configuration.
type S3Config struct {
	Region          string
	Endpoint        string // For MinIO or other S3-compatible services
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ForcePathStyle  bool // Required for MinIO
}

// S3API is the subset of the S3 client the backend uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3FileIO implements FileIO for S3.
type S3FileIO struct {
	client S3API
}

// NewS3FileIO creates a new S3 file I/O handler.
func NewS3FileIO(ctx context.Context, cfg *S3Config) (*S3FileIO, error) {
	if cfg == nil {
		cfg = &S3Config{}
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken,
		)
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return NewS3FileIOFromClient(client), nil
}

// NewS3FileIOFromClient wraps an existing S3 client.
func NewS3FileIOFromClient(client S3API) *S3FileIO {
	return &S3FileIO{client: client}
}

// Scheme returns "s3".
func (s *S3FileIO) Scheme() string {
	return "s3"
}

// parseS3URI splits an s3:// or s3a:// URI into bucket and key.
func parseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3a://")
	if !ok {
		rest, ok = strings.CutPrefix(uri, "s3://")
	}
	if !ok {
		return "", "", fmt.Errorf("invalid S3 URI %q: missing s3:// scheme", uri)
	}

	u, err := url.Parse("s3://" + rest)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URI: %w", err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")

	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in S3 URI %q", uri)
	}
	if key == "" {
		return "", "", fmt.Errorf("missing key in S3 URI %q", uri)
	}
	return bucket, key, nil
}

// Create buffers writes and uploads the object on Close.
func (s *S3FileIO) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, err
	}
	return &objectWriter{
		ctx:         ctx,
		client:      s.client,
		bucket:      bucket,
		key:         key,
		contentType: contentType(key),
	}, nil
}

// Open opens an object for reading.
func (s *S3FileIO) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", location, err)
	}
	return out.Body, nil
}

// Exists checks if an object exists.
func (s *S3FileIO) Exists(ctx context.Context, location string) (bool, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete deletes an object.
func (s *S3FileIO) Delete(ctx context.Context, location string) error {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

type objectWriter struct {
	ctx         context.Context
	client      S3API
	bucket      string
	key         string
	contentType string
	buf         bytes.Buffer
	closed      bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed object writer")
	}
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
		ContentType:   aws.String(w.contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

// Abort drops the buffered content without uploading it.
func (w *objectWriter) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}

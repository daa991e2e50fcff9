package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
)

const (
	bucketCreateRetries = 3
	bucketCreateDelay   = 500 * time.Millisecond

	// PresignDownloadExpiry bounds how long a shared export link stays valid.
	PresignDownloadExpiry = 1 * time.Hour
)

// StorageClient manages S3 operations for the export archive bucket.
type StorageClient struct {
	s3      *s3.Client
	presign *s3.PresignClient
	cfg     types.ExportConfig
}

func NewStorageClient(ctx context.Context, cfg types.ExportConfig) (*StorageClient, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRetryMaxAttempts(3),
		config.WithRetryMode(aws.RetryModeStandard),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	log.Info().
		Str("region", cfg.Region).
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Msg("export storage client initialized")

	return &StorageClient{
		s3:      s3Client,
		presign: s3.NewPresignClient(s3Client),
		cfg:     cfg,
	}, nil
}

func (c *StorageClient) Bucket() string { return c.cfg.Bucket }

// EnsureBucket creates the archive bucket if it does not exist. MinIO in
// local setups starts empty, so creation is retried on transient errors.
func (c *StorageClient) EnsureBucket(ctx context.Context) error {
	var lastErr error
	for i := 0; i < bucketCreateRetries; i++ {
		_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.cfg.Bucket)})
		if err == nil {
			log.Info().Str("bucket", c.cfg.Bucket).Msg("created export bucket")
			return nil
		}

		var exists *s3types.BucketAlreadyExists
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &exists) || errors.As(err, &owned) {
			return nil
		}

		lastErr = err
		time.Sleep(bucketCreateDelay)
	}
	return fmt.Errorf("create bucket %s: %w", c.cfg.Bucket, lastErr)
}

func (c *StorageClient) Upload(ctx context.Context, key, contentType string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err := c.s3.PutObject(ctx, input)
	return err
}

func (c *StorageClient) Download(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *StorageClient) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (c *StorageClient) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PresignDownload generates a presigned GET URL for sharing an export.
func (c *StorageClient) PresignDownload(ctx context.Context, key string, expires time.Duration) (string, error) {
	resp, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return resp.URL, nil
}

func isNotFoundError(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NotFound") || strings.Contains(errStr, "NoSuchKey")
}

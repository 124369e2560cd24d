package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/inkpost/inkpost/internal/config"
)

// PhotoStore persists profile images in object storage
type PhotoStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (url, key string, err error)
	Delete(ctx context.Context, key string) error
}

// S3PhotoStore stores profile images in an S3-compatible bucket
type S3PhotoStore struct {
	client        *s3.Client
	bucket        string
	publicURLBase string
	logger        *slog.Logger
}

// NewS3PhotoStore creates a new S3-backed photo store. A non-empty
// BaseEndpoint points at an S3-compatible store such as MinIO.
func NewS3PhotoStore(cfg *config.StorageConfig, logger *slog.Logger) (*S3PhotoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	publicURLBase := cfg.PublicURLBase
	if publicURLBase == "" {
		publicURLBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3PhotoStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicURLBase: publicURLBase,
		logger:        logger,
	}, nil
}

// storageKey builds a date-partitioned object key
func storageKey() string {
	d := time.Now()
	return fmt.Sprintf("profiles/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3PhotoStore) Upload(ctx context.Context, data []byte, contentType string) (string, string, error) {
	key := storageKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload photo: %w", err)
	}

	url := strings.TrimRight(s.publicURLBase, "/") + "/" + key

	s.logger.Info("profile photo uploaded",
		slog.String("key", key),
		slog.Int("size_bytes", len(data)))

	return url, key, nil
}

func (s *S3PhotoStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	return nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/config"
)

// iconKeyPrefix namespaces icon objects inside the bucket.
const iconKeyPrefix = "icons/"

// S3Store implements IconStore on an S3 (or S3-compatible) bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	// urlBase is the prefix public icon URLs are built from.
	urlBase string
	logger  zerolog.Logger
}

// NewS3Store creates an S3 icon store from the storage configuration.
func NewS3Store(ctx context.Context, cfg config.S3StorageConfig, logger zerolog.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	urlBase := cfg.Endpoint
	if urlBase == "" {
		urlBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	} else {
		urlBase = strings.TrimSuffix(urlBase, "/") + "/" + cfg.Bucket
	}

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("using S3 icon storage")

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		urlBase: urlBase,
		logger:  logger.With().Str("component", "icon_store").Logger(),
	}, nil
}

// Put uploads the icon content and returns its public URL.
func (s *S3Store) Put(ctx context.Context, name, contentType string, content io.Reader) (string, error) {
	key := iconKeyPrefix + sanitizeName(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload icon: %w", err)
	}

	s.logger.Debug().Str("key", key).Msg("icon uploaded")
	return s.urlBase + "/" + key, nil
}

// Delete removes a stored icon. S3 DeleteObject is idempotent, so a
// missing icon is not an error.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	key := iconKeyPrefix + sanitizeName(name)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete icon: %w", err)
	}
	return nil
}

// Ensure S3Store implements IconStore.
var _ IconStore = (*S3Store)(nil)

// Package storage resolves bucket object paths into URLs clients can load.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"peerform/internal/config"
)

var (
	ErrEmptyPath     = errors.New("empty object path")
	ErrNotConfigured = errors.New("object storage not configured")
)

// URLResolver turns (bucket, path) into a fetchable URL.
type URLResolver interface {
	URL(ctx context.Context, bucket, path string) (string, error)
}

// IsAbsolute reports whether path is already a full URL, as some avatars are.
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// PublicResolver joins paths onto the public bucket base URL.
type PublicResolver struct {
	baseURL string
}

func NewPublicResolver(baseURL string) *PublicResolver {
	return &PublicResolver{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (r *PublicResolver) URL(_ context.Context, bucket, path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if IsAbsolute(path) {
		return path, nil
	}
	return fmt.Sprintf("%s/%s/%s", r.baseURL, bucket, escapePath(path)), nil
}

// PresignResolver issues time-limited GET URLs against the S3-compatible
// storage endpoint for private buckets.
type PresignResolver struct {
	presigner *s3.PresignClient
	ttl       time.Duration
}

func NewPresignResolver(client *s3.Client, ttl time.Duration) *PresignResolver {
	return &PresignResolver{presigner: s3.NewPresignClient(client), ttl: ttl}
}

func (r *PresignResolver) URL(ctx context.Context, bucket, path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if IsAbsolute(path) {
		return path, nil
	}

	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, path, err)
	}
	return req.URL, nil
}

// NewS3Client constructs an S3-compatible client for the storage endpoint.
// R2_ENDPOINT wins over the endpoint derived from R2_ACCOUNT_ID.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	if cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" {
		return nil, ErrNotConfigured
	}
	endpoint := cfg.R2Endpoint
	if endpoint == "" {
		if cfg.R2AccountID == "" {
			return nil, ErrNotConfigured
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for storage: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}

// NewResolver picks the presigning resolver when signed URLs are enabled
// and the public resolver otherwise.
func NewResolver(ctx context.Context, cfg *config.Config) (URLResolver, error) {
	if !cfg.StorageSignedURLs {
		if cfg.StoragePublicURL == "" {
			return nil, fmt.Errorf("STORAGE_PUBLIC_URL: %w", ErrNotConfigured)
		}
		return NewPublicResolver(cfg.StoragePublicURL), nil
	}

	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewPresignResolver(client, cfg.StorageSignedTTL), nil
}

func escapePath(path string) string {
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// Package storage presigns object upload and download URLs.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config carries the bucket settings. Endpoint is optional and switches to path-style
// addressing for S3-compatible stores such as MinIO.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Presigner signs PUT and GET requests against one bucket.
type S3Presigner struct {
	bucket string
	client *s3.PresignClient
}

func NewS3Presigner(ctx context.Context, c S3Config) (*S3Presigner, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Presigner{bucket: c.Bucket, client: s3.NewPresignClient(client)}, nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

func (p *S3Presigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}

// Placeholder hands out unsigned URLs under a base URL. Used when no bucket is configured.
type Placeholder struct {
	BaseURL string
}

func (p Placeholder) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return strings.TrimRight(p.BaseURL, "/") + "/upload/" + key, nil
}

func (p Placeholder) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return strings.TrimRight(p.BaseURL, "/") + "/" + key, nil
}

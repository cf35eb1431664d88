// Package storage uploads supporting documents to S3-compatible object
// storage and hands back durable URLs. The rest of the system treats those
// URLs as opaque strings on the tax report.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	appconfig "taxgate/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrMissingCredentials = errors.New("storage credentials are not configured")

type Service struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewFromEnv builds the storage service from environment configuration.
// Any S3-compatible backend works (AWS S3, MinIO, RustFS).
func NewFromEnv(ctx context.Context) (*Service, error) {
	accessKey := appconfig.GetEnv("STORAGE_ACCESS_KEY", "")
	secretKey := appconfig.GetEnv("STORAGE_SECRET_KEY", "")
	if accessKey == "" || secretKey == "" {
		return nil, ErrMissingCredentials
	}

	bucket := appconfig.GetEnv("STORAGE_BUCKET", "taxgate-documents")
	endpoint := appconfig.GetEnv("STORAGE_ENDPOINT", "http://localhost:9000")
	region := appconfig.GetEnv("STORAGE_REGION", "us-east-1")

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &Service{
		client:  client,
		bucket:  bucket,
		baseURL: appconfig.GetEnv("STORAGE_PUBLIC_URL", endpoint),
	}, nil
}

// Upload stores the document and returns its durable URL.
func (s *Service) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("document upload failed: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.baseURL, "/"), s.bucket, key), nil
}

// ObjectKey builds a collision-free key for a bank's document, keeping the
// original extension so the content type survives a download.
func ObjectKey(bankID uint, filename string) string {
	return fmt.Sprintf("reports/%d/%s%s", bankID, uuid.NewString(), path.Ext(filename))
}

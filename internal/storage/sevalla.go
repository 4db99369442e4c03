package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andresuchdata/filedrop/internal/awsutil"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chartmuseum/storage"
)

// SevallaConfig encapsulates the connection info for Sevalla (S3-compatible) storage.
type SevallaConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Bucket       string
	Region       string
	UseSSL       bool
}

// SevallaStore implements ObjectStore for Sevalla / S3-compatible services.
type SevallaStore struct {
	backend storage.Backend
	bucket  string
}

// NewSevallaStore builds a new SevallaStore backed by chartmuseum's Amazon
// storage backend, using its own credentials rather than the process ones.
func NewSevallaStore(cfg SevallaConfig) (*SevallaStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("sevalla endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("sevalla credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("sevalla bucket must be provided")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	sess, err := awsutil.NewSessionWithCredentials(
		region,
		normalizeEndpoint(cfg.Endpoint, cfg.UseSSL),
		credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
	)
	if err != nil {
		return nil, err
	}

	client := s3.New(sess, aws.NewConfig().WithS3ForcePathStyle(true))
	backend := &storage.AmazonS3Backend{
		Bucket:     cfg.Bucket,
		Client:     client,
		Downloader: s3manager.NewDownloaderWithClient(client),
		Uploader:   s3manager.NewUploaderWithClient(client),
	}

	return &SevallaStore{backend: backend, bucket: cfg.Bucket}, nil
}

// PutFile reads the local file and stores it under key.
func (s *SevallaStore) PutFile(ctx context.Context, localPath, key string) (ObjectInfo, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("failed reading %s: %w", localPath, err)
	}
	if err := s.backend.PutObject(key, content); err != nil {
		return ObjectInfo{}, fmt.Errorf("sevalla upload failed: %w", err)
	}
	return ObjectInfo{Bucket: s.bucket, Key: key, Size: int64(len(content))}, nil
}

func (s *SevallaStore) Bucket() string { return s.bucket }

var _ ObjectStore = (*SevallaStore)(nil)

func normalizeEndpoint(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	scheme := "https"
	if !useSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(endpoint, "//"))
}

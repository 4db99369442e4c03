package storage

import (
	"context"
	"fmt"

	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore uploads to AWS S3 or any S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore initializes a minio client.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  minioCredentials(cfg),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init error: %w", err)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// minioCredentials uses the configured keys (and session token, for
// temporary credentials) when both keys are set, otherwise the AWS
// environment, shared credentials file and IAM chain.
func minioCredentials(cfg config.StorageConfig) *credentials.Credentials {
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		return credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{},
	})
}

// PutFile uploads the local file at localPath under key.
func (s *MinioStore) PutFile(ctx context.Context, localPath, key string) (ObjectInfo, error) {
	info, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("s3 upload of %s failed: %w", key, err)
	}
	return ObjectInfo{Bucket: info.Bucket, Key: info.Key, Size: info.Size}, nil
}

func (s *MinioStore) Bucket() string { return s.bucket }

var _ ObjectStore = (*MinioStore)(nil)

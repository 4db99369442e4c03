package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
)

// GCSStore uploads to a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

// NewGCSStore creates a client using application default credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket must be provided")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client init error: %w", err)
	}
	return &GCSStore{client: client, bucket: client.Bucket(bucket), name: bucket}, nil
}

// PutFile streams the local file into the bucket under key.
func (s *GCSStore) PutFile(ctx context.Context, localPath, key string) (ObjectInfo, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	writer := s.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = "text/plain"

	n, err := io.Copy(writer, f)
	if err != nil {
		_ = writer.Close()
		return ObjectInfo{}, fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to finalize GCS write: %w", err)
	}

	return ObjectInfo{Bucket: s.name, Key: key, Size: n}, nil
}

func (s *GCSStore) Bucket() string { return s.name }

// Close releases the underlying client.
func (s *GCSStore) Close() error { return s.client.Close() }

var _ ObjectStore = (*GCSStore)(nil)

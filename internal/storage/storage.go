package storage

import (
	"context"
	"fmt"

	"github.com/andresuchdata/filedrop/internal/config"
)

// ObjectInfo represents metadata for an uploaded object.
type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
}

// ObjectStore captures the single put operation the pipeline needs.
type ObjectStore interface {
	PutFile(ctx context.Context, localPath, key string) (ObjectInfo, error)
	Bucket() string
}

// New builds the object store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case config.BackendS3:
		return NewMinioStore(ctx, cfg)
	case config.BackendGCS:
		return NewGCSStore(ctx, cfg.Bucket)
	case config.BackendSevalla:
		return NewSevallaStore(SevallaConfig{
			Endpoint:     cfg.Endpoint,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			SessionToken: cfg.SessionToken,
			Bucket:       cfg.Bucket,
			Region:       cfg.Region,
			UseSSL:       cfg.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

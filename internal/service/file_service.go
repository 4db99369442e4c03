// internal/service/file_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andresuchdata/filedrop/internal/awsutil"
	"github.com/andresuchdata/filedrop/internal/cache"
	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/andresuchdata/filedrop/internal/notify"
	"github.com/andresuchdata/filedrop/internal/pipeline"
	"github.com/andresuchdata/filedrop/internal/queue"
	"github.com/andresuchdata/filedrop/internal/repository"
	"github.com/andresuchdata/filedrop/internal/repository/postgres"
	"github.com/andresuchdata/filedrop/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	rabbitConnectRetries = 3
	rabbitConnectDelay   = 2 * time.Second
)

// FileService owns the pipeline and every client it was built from.
type FileService struct {
	Pipeline *pipeline.Pipeline
	Runs     repository.RunRepository

	closers []io.Closer
}

// factories builds the external clients; tests replace them with fakes.
type factories struct {
	store     func(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, error)
	publisher func(cfg config.NotifyConfig) (notify.Publisher, error)
	sender    func(cfg config.QueueConfig) (queue.Sender, error)
	hashes    func(cfg config.CacheConfig) (cache.HashSetter, error)
	runs      func(ctx context.Context, cfg config.DatabaseConfig) (repository.RunRepository, io.Closer, error)
}

var defaultFactories = factories{
	store: storage.New,
	publisher: func(cfg config.NotifyConfig) (notify.Publisher, error) {
		sess, err := awsutil.NewSession(cfg.Region, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return notify.NewSNSPublisher(sess, cfg.TopicARN)
	},
	sender: func(cfg config.QueueConfig) (queue.Sender, error) {
		if cfg.Backend == config.QueueRabbitMQ {
			return queue.NewRabbitSender(cfg.RabbitURL, cfg.RabbitQueue, rabbitConnectRetries, rabbitConnectDelay)
		}
		sess, err := awsutil.NewSession(cfg.Region, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return queue.NewSQSSender(sess, cfg.URL)
	},
	hashes: func(cfg config.CacheConfig) (cache.HashSetter, error) {
		return cache.NewRedisHashStore(cfg)
	},
	runs: func(ctx context.Context, cfg config.DatabaseConfig) (repository.RunRepository, io.Closer, error) {
		db, err := postgres.NewDB(ctx, &cfg)
		if err != nil {
			return nil, nil, err
		}
		repo, err := postgres.NewRunRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	},
}

// NewFileService builds the pipeline from cfg. Only the object store is
// mandatory; every other client that is unconfigured or fails to
// initialize is logged and left out, which disables its step.
func NewFileService(ctx context.Context, cfg *config.Config, opts ...pipeline.Option) (*FileService, error) {
	return newFileService(ctx, cfg, defaultFactories, opts...)
}

func newFileService(ctx context.Context, cfg *config.Config, f factories, opts ...pipeline.Option) (*FileService, error) {
	svc := &FileService{}

	store, err := f.store(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	svc.track(store)

	deps := pipeline.Dependencies{Store: store}

	if cfg.Notify.Enabled() {
		if publisher, err := f.publisher(cfg.Notify); err != nil {
			log.Warn().Err(err).Msg("notification publisher unavailable, notify step disabled")
		} else {
			deps.Publisher = publisher
			svc.track(publisher)
		}
	} else {
		log.Info().Msg("SNS_TOPIC_ARN not set, notify step disabled")
	}

	if cfg.Queue.Enabled() {
		if sender, err := f.sender(cfg.Queue); err != nil {
			log.Warn().Err(err).Str("backend", cfg.Queue.Backend).Msg("queue sender unavailable, enqueue step disabled")
		} else {
			deps.Sender = sender
			svc.track(sender)
		}
	} else {
		log.Info().Str("backend", cfg.Queue.Backend).Msg("queue endpoint not set, enqueue step disabled")
	}

	if cfg.Cache.Configured() {
		if hashes, err := f.hashes(cfg.Cache); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, cache step disabled")
		} else {
			deps.Cache = hashes
			svc.track(hashes)
		}
	} else {
		log.Info().Msg("cache disabled or REDIS_HOST not set, cache step disabled")
	}

	if cfg.Database.Enabled {
		repo, closer, err := f.runs(ctx, cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("run history unavailable, runs will not be recorded")
		} else {
			svc.Runs = repo
			deps.Recorder = pipeline.NewRepositoryRecorder(repo)
			if closer != nil {
				svc.closers = append(svc.closers, closer)
			}
		}
	}

	p, err := pipeline.New(pipeline.Config{
		WorkDir:  cfg.App.WorkDir,
		MinLines: cfg.App.MinLines,
		MaxLines: cfg.App.MaxLines,
		Bucket:   cfg.Storage.Bucket,
		CacheTTL: cfg.Cache.TTL(),
	}, deps, opts...)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Pipeline = p

	return svc, nil
}

func (s *FileService) track(client interface{}) {
	if c, ok := client.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
}

// Close releases every client in reverse order of creation.
func (s *FileService) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/andresuchdata/filedrop/internal/cache"
	"github.com/andresuchdata/filedrop/internal/domain"
	"github.com/andresuchdata/filedrop/internal/generator"
	"github.com/andresuchdata/filedrop/internal/notify"
	"github.com/andresuchdata/filedrop/internal/queue"
	"github.com/andresuchdata/filedrop/internal/storage"
	"github.com/andresuchdata/filedrop/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunRecorder persists a finished Result.
type RunRecorder interface {
	RecordRun(ctx context.Context, r *Result) error
}

// Dependencies are the external services a Pipeline talks to. Store is
// required; a nil Publisher, Sender or Cache disables that step.
type Dependencies struct {
	Store     storage.ObjectStore
	Publisher notify.Publisher
	Sender    queue.Sender
	Cache     cache.HashSetter
	Recorder  RunRecorder
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRand sets the random source used for names and content.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pipeline) { p.rng = rng }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// Pipeline generates a file, uploads it and fans the metadata out to the
// notification topic, the queue and the cache.
type Pipeline struct {
	cfg  Config
	deps Dependencies
	log  zerolog.Logger
	now  func() time.Time

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New validates cfg and builds a Pipeline.
func New(cfg Config, deps Dependencies, opts ...Option) (*Pipeline, error) {
	if deps.Store == nil {
		return nil, errors.New("object store is required")
	}
	if cfg.MinLines == 0 && cfg.MaxLines == 0 {
		cfg.MinLines, cfg.MaxLines = generator.DefaultMinLines, generator.DefaultMaxLines
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	if cfg.Bucket == "" {
		cfg.Bucket = deps.Store.Bucket()
	}

	p := &Pipeline{
		cfg:  cfg,
		deps: deps,
		log:  logger.Component("pipeline"),
		now:  time.Now,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs one generate/upload/fan-out/cleanup cycle. It never fails:
// step failures, generation errors and panics are reported in the Result.
func (p *Pipeline) Process(ctx context.Context) (res *Result) {
	res = newResult(uuid.NewString(), p.now())
	log := p.log.With().Str("run_id", res.RunID).Logger()

	defer func() {
		if r := recover(); r != nil {
			res.fail(fmt.Errorf("panic during processing: %v", r))
			log.Error().Interface("panic", r).Msg("recovered from panic during processing")
		}
		res.FinishedAt = p.now()
		p.record(ctx, res, log)

		// The completion line is logged even when the upload failed; the
		// Result carries the per-step detail.
		log.Info().
			Bool("uploaded", res.Uploaded()).
			Bool("succeeded", res.Succeeded()).
			Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
			Msg("file processing completed")
	}()

	start := p.now()
	file, err := p.generate()
	if err != nil {
		res.set(domain.StepGenerate, domain.StepFailed, "", err, p.now().Sub(start))
		res.fail(fmt.Errorf("generate: %w", err))
		log.Error().Err(err).Msg("failed to generate file")
		return res
	}
	res.File = &file
	res.set(domain.StepGenerate, domain.StepSucceeded, file.Path, nil, p.now().Sub(start))
	log = log.With().Str("file", file.Name).Int("lines", file.Lines).Logger()
	log.Debug().Str("path", file.Path).Msg("file generated")

	defer p.cleanup(res, file, log)

	if !p.upload(ctx, res, file, log) {
		return res
	}

	p.notify(ctx, res, file, log)
	p.enqueue(ctx, res, file, log)
	p.cache(ctx, res, file, log)

	return res
}

func (p *Pipeline) generate() (domain.GeneratedFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return generator.Generate(p.rng, p.cfg.WorkDir, p.cfg.MinLines, p.cfg.MaxLines)
}

func (p *Pipeline) upload(ctx context.Context, res *Result, file domain.GeneratedFile, log zerolog.Logger) bool {
	start := p.now()
	info, err := p.deps.Store.PutFile(ctx, file.Path, file.Name)
	if err != nil {
		res.set(domain.StepUpload, domain.StepFailed, "", err, p.now().Sub(start))
		log.Error().Err(err).Str("bucket", p.cfg.Bucket).Msg("upload failed, skipping notify/enqueue/cache")
		return false
	}

	detail := fmt.Sprintf("%s/%s", info.Bucket, info.Key)
	res.set(domain.StepUpload, domain.StepSucceeded, detail, nil, p.now().Sub(start))
	log.Info().Str("bucket", info.Bucket).Int64("size", info.Size).Msg("file uploaded")
	return true
}

func (p *Pipeline) notify(ctx context.Context, res *Result, file domain.GeneratedFile, log zerolog.Logger) {
	if p.deps.Publisher == nil {
		res.set(domain.StepNotify, domain.StepSkipped, "topic not configured", nil, 0)
		log.Info().Msg("notification topic not configured")
		return
	}

	start := p.now()
	body := notify.Message{
		FileName:  file.Name,
		Lines:     file.Lines,
		Bucket:    p.cfg.Bucket,
		Timestamp: start,
	}.Body()

	messageID, err := p.deps.Publisher.Publish(ctx, notify.Subject, body)
	if err != nil {
		res.set(domain.StepNotify, domain.StepFailed, "", err, p.now().Sub(start))
		log.Error().Err(err).Msg("failed to publish notification")
		return
	}
	res.set(domain.StepNotify, domain.StepSucceeded, messageID, nil, p.now().Sub(start))
	log.Info().Str("message_id", messageID).Msg("notification published")
}

func (p *Pipeline) enqueue(ctx context.Context, res *Result, file domain.GeneratedFile, log zerolog.Logger) {
	if p.deps.Sender == nil {
		res.set(domain.StepEnqueue, domain.StepSkipped, "queue not configured", nil, 0)
		log.Info().Msg("queue not configured")
		return
	}

	start := p.now()
	body := queue.FormatBody(file.Name, file.Lines)
	if err := p.deps.Sender.Send(ctx, body); err != nil {
		res.set(domain.StepEnqueue, domain.StepFailed, "", err, p.now().Sub(start))
		log.Error().Err(err).Msg("failed to enqueue message")
		return
	}
	res.set(domain.StepEnqueue, domain.StepSucceeded, body, nil, p.now().Sub(start))
	log.Info().Str("body", body).Msg("message enqueued")
}

func (p *Pipeline) cache(ctx context.Context, res *Result, file domain.GeneratedFile, log zerolog.Logger) {
	if p.deps.Cache == nil {
		res.set(domain.StepCache, domain.StepSkipped, "cache client unavailable", nil, 0)
		log.Info().Msg("cache client unavailable")
		return
	}

	start := p.now()
	if err := cache.NewFileInfoCache(p.deps.Cache, p.cfg.CacheTTL).Store(ctx, file); err != nil {
		res.set(domain.StepCache, domain.StepFailed, "", err, p.now().Sub(start))
		log.Error().Err(err).Msg("failed to cache file info")
		return
	}
	res.set(domain.StepCache, domain.StepSucceeded, file.CacheKey(), nil, p.now().Sub(start))
	log.Info().Str("key", file.CacheKey()).Msg("file info cached")
}

// cleanup removes the local file whatever happened upstream.
func (p *Pipeline) cleanup(res *Result, file domain.GeneratedFile, log zerolog.Logger) {
	start := p.now()
	err := os.Remove(file.Path)
	switch {
	case err == nil:
		res.set(domain.StepCleanup, domain.StepSucceeded, file.Path, nil, p.now().Sub(start))
	case errors.Is(err, os.ErrNotExist):
		res.set(domain.StepCleanup, domain.StepSkipped, "file already removed", nil, p.now().Sub(start))
	default:
		res.set(domain.StepCleanup, domain.StepFailed, "", err, p.now().Sub(start))
		log.Error().Err(err).Str("path", file.Path).Msg("failed to remove local file")
	}
}

func (p *Pipeline) record(ctx context.Context, res *Result, log zerolog.Logger) {
	if p.deps.Recorder == nil {
		return
	}
	if err := p.deps.Recorder.RecordRun(ctx, res); err != nil {
		log.Warn().Err(err).Msg("failed to record run")
	}
}

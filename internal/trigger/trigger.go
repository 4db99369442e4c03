// Package trigger exposes the pipeline as Cloud Functions entry points.
package trigger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/andresuchdata/filedrop/internal/pipeline"
	"github.com/andresuchdata/filedrop/internal/service"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/rs/zerolog/log"
)

const completionBody = "Processing completed"

// Response mirrors the status/body pair returned to the invoker.
type Response struct {
	StatusCode int              `json:"statusCode"`
	Body       string           `json:"body"`
	Result     *pipeline.Result `json:"result,omitempty"`
}

// Handler lazily builds the pipeline on first invocation and reuses it for
// every later one.
type Handler struct {
	build func(ctx context.Context) (pipeline.Processor, error)

	once      sync.Once
	processor pipeline.Processor
	initErr   error
}

func NewHandler(build func(ctx context.Context) (pipeline.Processor, error)) *Handler {
	return &Handler{build: build}
}

// Register wires the default handler into the functions framework.
func Register() {
	h := NewHandler(buildFromEnv)
	functions.HTTP("ProcessFile", h.ServeHTTP)
	functions.CloudEvent("ProcessFileEvent", h.HandleEvent)
}

func buildFromEnv(ctx context.Context) (pipeline.Processor, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	svc, err := service.NewFileService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return svc.Pipeline, nil
}

func (h *Handler) init(ctx context.Context) error {
	h.once.Do(func() {
		h.processor, h.initErr = h.build(ctx)
		if h.initErr != nil {
			log.Error().Err(h.initErr).Msg("critical error during function initialization")
		}
	})
	return h.initErr
}

// ServeHTTP ignores the request payload, runs the pipeline once and always
// answers 200 unless the pipeline could not be built.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		_, _ = io.Copy(io.Discard, r.Body)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := h.init(context.Background()); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(Response{StatusCode: http.StatusInternalServerError, Body: err.Error()})
		return
	}

	res := h.processor.Process(r.Context())

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{StatusCode: http.StatusOK, Body: completionBody, Result: res})
}

// HandleEvent runs the pipeline once for any CloudEvent; the event data is
// ignored.
func (h *Handler) HandleEvent(ctx context.Context, e cloudevents.Event) error {
	if err := h.init(context.Background()); err != nil {
		return err
	}

	res := h.processor.Process(ctx)
	log.Info().
		Str("event_id", e.ID()).
		Str("event_type", e.Type()).
		Str("run_id", res.RunID).
		Bool("succeeded", res.Succeeded()).
		Msg(completionBody)
	return nil
}

// internal/api/handlers/process_handler.go
package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/andresuchdata/filedrop/internal/pipeline"
	"github.com/andresuchdata/filedrop/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CompletionMessage is returned by every trigger, whatever the run outcome.
const CompletionMessage = "Processing completed"

type ProcessHandler struct {
	processor pipeline.Processor
	runs      repository.RunRepository
}

// NewProcessHandler creates the trigger handler. runs may be nil when run
// history is disabled.
func NewProcessHandler(processor pipeline.Processor, runs repository.RunRepository) *ProcessHandler {
	return &ProcessHandler{processor: processor, runs: runs}
}

// Process runs the pipeline once. The request body is ignored and the
// response is always 200; the per-step result is included for callers
// that want to inspect it.
func (h *ProcessHandler) Process(c *gin.Context) {
	if c.Request.Body != nil {
		_, _ = io.Copy(io.Discard, c.Request.Body)
	}

	res := h.processor.Process(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"statusCode": http.StatusOK,
		"message":    CompletionMessage,
		"result":     res,
	})
}

// ListRuns returns the most recent recorded runs.
func (h *ProcessHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run history is disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}

	runs, err := h.runs.ListRecentRuns(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

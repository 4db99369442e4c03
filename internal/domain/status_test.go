package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepStatusLabel(t *testing.T) {
	assert.Equal(t, "Succeeded", StepStatusLabel(StepSucceeded))
	assert.Equal(t, "Skipped (not configured)", StepStatusLabel(StepSkipped))
	assert.Equal(t, "Not run", StepStatusLabel(StepNotRun))
	assert.Equal(t, "Unknown", StepStatusLabel("exploded"))
}

func TestParseStepStatus(t *testing.T) {
	status, ok := ParseStepStatus("  FAILED ")
	assert.True(t, ok)
	assert.Equal(t, StepFailed, status)

	_, ok = ParseStepStatus("pending")
	assert.False(t, ok)
}

func TestRunValidate(t *testing.T) {
	run := &Run{
		RunID:         "r1",
		UploadStatus:  StepSucceeded,
		NotifyStatus:  StepSkipped,
		EnqueueStatus: StepFailed,
		CacheStatus:   StepNotRun,
		CleanupStatus: StepSucceeded,
	}
	assert.NoError(t, run.Validate())

	run.CacheStatus = "pending"
	assert.ErrorContains(t, run.Validate(), `unknown cache status "pending"`)
}

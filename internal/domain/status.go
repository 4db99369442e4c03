package domain

import "strings"

// StepStatus is the outcome of a single pipeline step
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	// StepSkipped marks a step whose downstream service is not configured.
	StepSkipped StepStatus = "skipped"
	// StepNotRun marks a step that was never attempted because upload failed.
	StepNotRun StepStatus = "not_run"
)

var stepStatusLabels = map[StepStatus]string{
	StepSucceeded: "Succeeded",
	StepFailed:    "Failed",
	StepSkipped:   "Skipped (not configured)",
	StepNotRun:    "Not run",
}

// StepName identifies a pipeline step
type StepName string

const (
	StepGenerate StepName = "generate"
	StepUpload   StepName = "upload"
	StepNotify   StepName = "notify"
	StepEnqueue  StepName = "enqueue"
	StepCache    StepName = "cache"
	StepCleanup  StepName = "cleanup"
)

// StepOrder lists the steps in execution order.
var StepOrder = []StepName{StepGenerate, StepUpload, StepNotify, StepEnqueue, StepCache, StepCleanup}

// StepStatusLabel returns a human-readable label for a step status.
func StepStatusLabel(status StepStatus) string {
	if label, ok := stepStatusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParseStepStatus returns the status for a given label (case-insensitive).
func ParseStepStatus(label string) (StepStatus, bool) {
	status := StepStatus(strings.ToLower(strings.TrimSpace(label)))
	_, ok := stepStatusLabels[status]

	return status, ok
}

// internal/domain/models.go
package domain

import (
	"fmt"
	"time"
)

// FileExtension is appended to every generated identifier.
const FileExtension = ".txt"

// GeneratedFile represents a locally generated file awaiting upload
type GeneratedFile struct {
	Name  string `json:"name"`
	Lines int    `json:"lines"`
	Path  string `json:"-"`
}

// CacheKey returns the hash key under which the file metadata is cached.
func (f GeneratedFile) CacheKey() string {
	return CacheKeyFor(f.Name)
}

// CacheKeyFor builds the cache hash key for a file name.
func CacheKeyFor(name string) string {
	return fmt.Sprintf("file:%s", name)
}

// CacheRecord is the hash written for each uploaded file
type CacheRecord struct {
	Name  string `json:"name" redis:"name"`
	Lines int    `json:"lines" redis:"lines"`
}

// Fields returns the record as a hash field mapping.
func (r CacheRecord) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":  r.Name,
		"lines": r.Lines,
	}
}

// Run is a persisted summary of a pipeline run
type Run struct {
	RunID         string     `json:"run_id" db:"run_id"`
	FileName      string     `json:"file_name" db:"file_name"`
	Lines         int        `json:"lines" db:"lines"`
	UploadStatus  StepStatus `json:"upload_status" db:"upload_status"`
	NotifyStatus  StepStatus `json:"notify_status" db:"notify_status"`
	EnqueueStatus StepStatus `json:"enqueue_status" db:"enqueue_status"`
	CacheStatus   StepStatus `json:"cache_status" db:"cache_status"`
	CleanupStatus StepStatus `json:"cleanup_status" db:"cleanup_status"`
	Error         string     `json:"error,omitempty" db:"error"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    time.Time  `json:"finished_at" db:"finished_at"`
}

// Statuses returns the recorded status of every step after generation.
func (r *Run) Statuses() map[StepName]StepStatus {
	return map[StepName]StepStatus{
		StepUpload:  r.UploadStatus,
		StepNotify:  r.NotifyStatus,
		StepEnqueue: r.EnqueueStatus,
		StepCache:   r.CacheStatus,
		StepCleanup: r.CleanupStatus,
	}
}

// Validate rejects a run carrying a status this version does not know.
func (r *Run) Validate() error {
	for _, step := range StepOrder {
		status, ok := r.Statuses()[step]
		if !ok {
			continue
		}
		if _, known := ParseStepStatus(string(status)); !known {
			return fmt.Errorf("run %s: unknown %s status %q", r.RunID, step, status)
		}
	}
	return nil
}

package pipeline

import (
	"time"

	"github.com/andresuchdata/filedrop/internal/domain"
)

// Config holds the values resolved once at startup.
type Config struct {
	WorkDir  string
	MinLines int
	MaxLines int
	Bucket   string
	CacheTTL time.Duration
}

// StepOutcome records how a single step ended
type StepOutcome struct {
	Step     domain.StepName   `json:"step"`
	Status   domain.StepStatus `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
}

// Result is the per-step report of a single Process call
type Result struct {
	RunID      string                `json:"run_id"`
	File       *domain.GeneratedFile `json:"file,omitempty"`
	Steps      []StepOutcome         `json:"steps"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Err        error                 `json:"-"`
	ErrMessage string                `json:"error,omitempty"`
	index      map[domain.StepName]int
}

func newResult(runID string, startedAt time.Time) *Result {
	r := &Result{
		RunID:     runID,
		StartedAt: startedAt,
		Steps:     make([]StepOutcome, len(domain.StepOrder)),
		index:     make(map[domain.StepName]int, len(domain.StepOrder)),
	}
	for i, name := range domain.StepOrder {
		r.Steps[i] = StepOutcome{Step: name, Status: domain.StepNotRun}
		r.index[name] = i
	}
	return r
}

func (r *Result) set(step domain.StepName, status domain.StepStatus, detail string, err error, d time.Duration) {
	out := StepOutcome{Step: step, Status: status, Detail: detail, Duration: d}
	if err != nil {
		out.Error = err.Error()
	}
	r.Steps[r.index[step]] = out
}

func (r *Result) fail(err error) {
	r.Err = err
	r.ErrMessage = err.Error()
}

// Step returns the outcome recorded for name.
func (r *Result) Step(name domain.StepName) StepOutcome {
	if i, ok := r.index[name]; ok {
		return r.Steps[i]
	}
	return StepOutcome{Step: name, Status: domain.StepNotRun}
}

// Uploaded reports whether the object store accepted the file.
func (r *Result) Uploaded() bool {
	return r.Step(domain.StepUpload).Status == domain.StepSucceeded
}

// Succeeded reports whether no step failed and nothing panicked.
// Skipped steps do not count as failures.
func (r *Result) Succeeded() bool {
	if r.Err != nil {
		return false
	}
	for _, s := range r.Steps {
		if s.Status == domain.StepFailed {
			return false
		}
	}
	return r.Uploaded()
}

// Run flattens the result for persistence.
func (r *Result) Run() *domain.Run {
	run := &domain.Run{
		RunID:         r.RunID,
		UploadStatus:  r.Step(domain.StepUpload).Status,
		NotifyStatus:  r.Step(domain.StepNotify).Status,
		EnqueueStatus: r.Step(domain.StepEnqueue).Status,
		CacheStatus:   r.Step(domain.StepCache).Status,
		CleanupStatus: r.Step(domain.StepCleanup).Status,
		Error:         r.ErrMessage,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}
	if r.File != nil {
		run.FileName = r.File.Name
		run.Lines = r.File.Lines
	}
	return run
}

// Labels maps every step to its human-readable status.
func (r *Result) Labels() map[domain.StepName]string {
	labels := make(map[domain.StepName]string, len(r.Steps))
	for _, s := range r.Steps {
		labels[s.Step] = domain.StepStatusLabel(s.Status)
	}
	return labels
}

// Metrics aggregates repeated runs
type Metrics struct {
	Runs           int           `json:"runs"`
	Uploaded       int           `json:"uploaded"`
	FullySucceeded int           `json:"fully_succeeded"`
	StepFailures   int           `json:"step_failures"`
	TotalLines     int64         `json:"total_lines"`
	AverageLatency time.Duration `json:"average_latency_ns"`
	LastRunAt      time.Time     `json:"last_run_at"`
}

func (m *Metrics) add(r *Result) {
	m.Runs++
	if r.Uploaded() {
		m.Uploaded++
	}
	if r.Succeeded() {
		m.FullySucceeded++
	}
	for _, s := range r.Steps {
		if s.Status == domain.StepFailed {
			m.StepFailures++
		}
	}
	if r.File != nil {
		m.TotalLines += int64(r.File.Lines)
	}
	latency := r.FinishedAt.Sub(r.StartedAt)
	m.AverageLatency += (latency - m.AverageLatency) / time.Duration(m.Runs)
	m.LastRunAt = r.FinishedAt
}

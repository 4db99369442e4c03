package pipeline

import (
	"context"
	"time"
)

// Processor is satisfied by *Pipeline.
type Processor interface {
	Process(ctx context.Context) *Result
}

// Orchestrator repeats Process a fixed number of times, one run after the
// other, optionally pausing between runs.
type Orchestrator struct {
	p        Processor
	interval time.Duration
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(p Processor, interval time.Duration) *Orchestrator {
	return &Orchestrator{p: p, interval: interval}
}

// Run executes count runs (count < 1 is treated as 1) and returns every
// result plus aggregate metrics. It stops early when ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, count int) ([]*Result, Metrics) {
	if count < 1 {
		count = 1
	}

	var (
		results = make([]*Result, 0, count)
		metrics Metrics
	)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}

		res := o.p.Process(ctx)
		results = append(results, res)
		metrics.add(res)

		if i < count-1 && o.interval > 0 {
			select {
			case <-ctx.Done():
				return results, metrics
			case <-time.After(o.interval):
			}
		}
	}

	return results, metrics
}

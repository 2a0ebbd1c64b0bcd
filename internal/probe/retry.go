package probe

import (
	"context"
	"time"
)

// Retry wraps a probe and re-runs it on transport-level failures.
// Target-reported states (a 500, an expired certificate, an empty record
// set) come back as Success payloads and are never retried; only a probe
// that could not complete at all gets another attempt.
type Retry struct {
	Inner    Probe
	Attempts int
	Backoff  time.Duration
}

func (r *Retry) Kind() Kind { return r.Inner.Kind() }

func (r *Retry) Run(ctx context.Context, target string) Outcome {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last Outcome
	for i := 0; i < attempts; i++ {
		last = r.Inner.Run(ctx, target)
		if last.State == StateSuccess {
			return last
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(r.Backoff):
			}
		}
	}
	return last
}

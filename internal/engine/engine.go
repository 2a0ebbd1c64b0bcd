// Package engine runs site monitor checks: it fans the enabled probes
// out against the target, reduces their terminal states to one verdict,
// and persists the outcome as history plus cached last-known state.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

// ErrMonitorNotFound is returned by RunCheck for an unknown monitor id.
var ErrMonitorNotFound = errors.New("monitor not found")

// Engine is the check pipeline behind both trigger surfaces (the
// on-demand API call and the scheduled sweep): orchestrate, aggregate,
// record.
type Engine struct {
	Monitors repo.MonitorStore
	Orch     *Orchestrator
	Rec      *Recorder
	Metrics  *Metrics
	Log      *zap.Logger
}

func New(ms repo.MonitorStore, orch *Orchestrator, rec *Recorder, metrics *Metrics, log *zap.Logger) *Engine {
	return &Engine{Monitors: ms, Orch: orch, Rec: rec, Metrics: metrics, Log: log}
}

// RunCheck executes one full check invocation for the monitor and
// returns the recorded CheckResult. It either returns a complete,
// persisted result or an error with nothing written; a probe failing is
// data inside the result, never an error here.
func (e *Engine) RunCheck(ctx context.Context, id domain.MonitorID) (*domain.CheckResult, error) {
	mon, err := e.Monitors.Get(ctx, id)
	if err != nil {
		e.countFailure()
		return nil, err
	}
	if mon == nil {
		return nil, ErrMonitorNotFound
	}

	composite := e.Orch.Execute(ctx, mon)

	// The caller went away while probes ran. Abandonment is not a site
	// outage: record nothing and report an execution error instead of
	// writing a verdict the probes never earned.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("check abandoned: %w", err)
	}

	verdict := Aggregate(composite)

	cr, err := e.Rec.Record(ctx, mon, composite, verdict)
	if err != nil {
		e.countFailure()
		return nil, err
	}

	if e.Metrics != nil {
		e.Metrics.ChecksTotal.WithLabelValues(string(verdict)).Inc()
		e.Metrics.observeComposite(composite)
	}
	e.Log.Debug("check_completed",
		zap.String("monitor_id", string(id)),
		zap.String("url", mon.URL),
		zap.String("verdict", string(verdict)),
		zap.Int("probes", len(composite.Outcomes)),
	)
	return cr, nil
}

func (e *Engine) countFailure() {
	if e.Metrics != nil {
		e.Metrics.CheckFailures.Inc()
	}
}

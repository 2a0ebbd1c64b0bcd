package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/probe"
	"github.com/consolehq/sitemonitor/internal/repo"
)

// Recorder persists one completed check: the immutable history row
// first, then the monitor's denormalized cache. The ordering is the
// contract — a reader must never observe a cache pointing at a history
// row that does not exist yet, so a failed Append aborts the cache
// update and the whole call.
type Recorder struct {
	Monitors repo.MonitorStore
	Results  repo.ResultStore
	Log      *zap.Logger
}

func NewRecorder(ms repo.MonitorStore, rs repo.ResultStore, log *zap.Logger) *Recorder {
	return &Recorder{Monitors: ms, Results: rs, Log: log}
}

func (r *Recorder) Record(ctx context.Context, mon *domain.MonitorConfig, c Composite, verdict domain.Verdict) (*domain.CheckResult, error) {
	now := time.Now().UTC()
	cr := buildResult(mon, c, now, verdict)

	if err := r.Results.Append(ctx, cr); err != nil {
		return nil, fmt.Errorf("append check result: %w", err)
	}

	cache := repo.CheckCache{LastCheckedAt: now, LastStatus: verdict}
	if cr.Screenshot != nil {
		u := cr.Screenshot.URL
		cache.LastScreenshotURL = &u
	}
	if err := r.Monitors.UpdateCheckCache(ctx, mon.ID, cache); err != nil {
		// the history row is durable; a stale cache self-heals on the
		// next completed check
		r.Log.Warn("record_cache_update_error",
			zap.String("monitor_id", string(mon.ID)),
			zap.Error(err),
		)
	}
	return cr, nil
}

// buildResult maps the composite onto the stored document. A sub-result
// field is set only when the matching check flag was enabled and the
// probe delivered a payload; a requested probe that failed contributes
// to the verdict but stores no fabricated payload.
func buildResult(mon *domain.MonitorConfig, c Composite, ts time.Time, verdict domain.Verdict) *domain.CheckResult {
	cr := &domain.CheckResult{
		MonitorID:     mon.ID,
		URL:           mon.URL,
		Timestamp:     ts,
		OverallStatus: verdict,
	}

	if mon.Checks.HTTPStatus {
		if out, ok := c.Outcomes[probe.KindHTTPStatus]; ok {
			cr.HTTPStatus = out.HTTPStatus
		}
	}
	if mon.Checks.SSLCertificate {
		if out, ok := c.Outcomes[probe.KindSSLCertificate]; ok {
			cr.SSLCertificate = out.SSLCertificate
		}
	}
	if mon.Checks.DNSRecords {
		if out, ok := c.Outcomes[probe.KindDNSRecords]; ok {
			cr.DNSRecords = out.DNSRecords
		}
	}
	if mon.Checks.MXRecords {
		if out, ok := c.Outcomes[probe.KindMXRecords]; ok {
			cr.MXRecords = out.MXRecords
		}
	}
	if mon.Checks.Screenshot {
		if out, ok := c.Outcomes[probe.KindScreenshot]; ok {
			cr.Screenshot = out.Screenshot
		}
	}
	if mon.Checks.PageInfo {
		if out, ok := c.Outcomes[probe.KindPageInfo]; ok {
			cr.PageInfo = out.PageInfo
		}
	}
	if mon.Checks.ResponseTime {
		if out, ok := c.Outcomes[probe.KindResponseTime]; ok && out.State == probe.StateSuccess {
			ms := out.LatencyMS
			cr.ResponseTimeMS = &ms
		}
	}
	return cr
}

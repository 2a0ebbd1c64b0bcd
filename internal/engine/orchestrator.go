package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/probe"
)

// Timeouts are per-probe budgets. Each probe owns its own deadline: a
// hung screenshot render never starves the HTTP probe, and a check
// invocation's worst case is the slowest single enabled probe, not the
// sum of them.
type Timeouts struct {
	HTTPStatus     time.Duration
	SSLCertificate time.Duration
	DNSRecords     time.Duration
	MXRecords      time.Duration
	Screenshot     time.Duration
	PageInfo       time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		HTTPStatus:     10 * time.Second,
		SSLCertificate: 10 * time.Second,
		DNSRecords:     5 * time.Second,
		MXRecords:      5 * time.Second,
		Screenshot:     30 * time.Second,
		PageInfo:       10 * time.Second,
	}
}

func (t Timeouts) forKind(k probe.Kind) time.Duration {
	var d time.Duration
	switch k {
	case probe.KindHTTPStatus:
		d = t.HTTPStatus
	case probe.KindSSLCertificate:
		d = t.SSLCertificate
	case probe.KindDNSRecords:
		d = t.DNSRecords
	case probe.KindMXRecords:
		d = t.MXRecords
	case probe.KindScreenshot:
		d = t.Screenshot
	case probe.KindPageInfo:
		d = t.PageInfo
	}
	if d <= 0 {
		d = 10 * time.Second
	}
	return d
}

// Composite is the fan-in of one invocation: every probe that ran, keyed
// by kind, each in a terminal state. When the responseTime check is
// enabled the HTTP probe's outcome also appears under KindResponseTime,
// so the aggregator and recorder can treat the seven check dimensions
// uniformly.
type Composite struct {
	Outcomes map[probe.Kind]probe.Outcome
}

// Orchestrator fans the enabled probes out concurrently and joins on all
// of their terminal states. It never cancels siblings on a failure;
// partial results stay usable.
type Orchestrator struct {
	Probes   map[probe.Kind]probe.Probe
	Timeouts Timeouts
	Log      *zap.Logger
}

func NewOrchestrator(probes []probe.Probe, timeouts Timeouts, log *zap.Logger) *Orchestrator {
	m := make(map[probe.Kind]probe.Probe, len(probes))
	for _, p := range probes {
		m[p.Kind()] = p
	}
	return &Orchestrator{Probes: m, Timeouts: timeouts, Log: log}
}

// Execute runs the probes selected by the monitor's check flags. The
// responseTime flag rides on the HTTP probe: enabling it alone still
// runs that probe once, and enabling both never runs it twice.
func (o *Orchestrator) Execute(ctx context.Context, mon *domain.MonitorConfig) Composite {
	kinds := selectedKinds(mon.Checks)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[probe.Kind]probe.Outcome, len(kinds))
	)

	for _, k := range kinds {
		p := o.Probes[k]
		if p == nil {
			o.Log.Warn("probe_not_registered",
				zap.String("monitor_id", string(mon.ID)),
				zap.String("kind", string(k)),
			)
			continue
		}
		wg.Add(1)
		go func(k probe.Kind, p probe.Probe) {
			defer wg.Done()

			// Each probe runs on its own budget, detached from the
			// caller's cancellation: an abandoned request must not
			// turn in-flight probes into timed-out outcomes.
			pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.Timeouts.forKind(k))
			defer cancel()

			started := time.Now()
			res := p.Run(pctx, mon.URL)
			res.Elapsed = time.Since(started)

			mu.Lock()
			out[k] = res
			mu.Unlock()
		}(k, p)
	}
	wg.Wait()

	if ho, ok := out[probe.KindHTTPStatus]; ok && mon.Checks.ResponseTime {
		out[probe.KindResponseTime] = ho
	}
	if !mon.Checks.HTTPStatus {
		delete(out, probe.KindHTTPStatus)
	}

	return Composite{Outcomes: out}
}

// selectedKinds maps check flags to the probes that must run. There is
// no responseTime probe of its own; the flag pulls in the HTTP probe.
func selectedKinds(c domain.EnabledChecks) []probe.Kind {
	var kinds []probe.Kind
	if c.HTTPStatus || c.ResponseTime {
		kinds = append(kinds, probe.KindHTTPStatus)
	}
	if c.SSLCertificate {
		kinds = append(kinds, probe.KindSSLCertificate)
	}
	if c.DNSRecords {
		kinds = append(kinds, probe.KindDNSRecords)
	}
	if c.MXRecords {
		kinds = append(kinds, probe.KindMXRecords)
	}
	if c.Screenshot {
		kinds = append(kinds, probe.KindScreenshot)
	}
	if c.PageInfo {
		kinds = append(kinds, probe.KindPageInfo)
	}
	return kinds
}

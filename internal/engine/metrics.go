package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/consolehq/sitemonitor/internal/probe"
)

type Metrics struct {
	ChecksTotal   *prometheus.CounterVec
	CheckFailures prometheus.Counter
	ProbeDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitemonitor",
			Name:      "checks_total",
			Help:      "Completed check invocations by verdict.",
		}, []string{"verdict"}),
		CheckFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitemonitor",
			Name:      "check_failures_total",
			Help:      "Check invocations that aborted before a result was recorded.",
		}),
		ProbeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sitemonitor",
			Name:      "probe_duration_seconds",
			Help:      "Wall clock of individual probe runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"probe", "state"}),
	}
	if reg != nil {
		reg.MustRegister(m.ChecksTotal, m.CheckFailures, m.ProbeDuration)
	}
	return m
}

func (m *Metrics) observeComposite(c Composite) {
	if m == nil {
		return
	}
	for kind, out := range c.Outcomes {
		if kind == probe.KindResponseTime {
			continue // alias of the HTTP probe, already counted
		}
		m.ProbeDuration.WithLabelValues(string(kind), string(out.State)).
			Observe(out.Elapsed.Seconds())
	}
}

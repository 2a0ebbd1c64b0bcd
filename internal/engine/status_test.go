package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/probe"
)

func httpOutcome(code int) probe.Outcome {
	return probe.Outcome{
		State: probe.StateSuccess,
		HTTPStatus: &domain.HTTPStatusResult{
			StatusCode: code,
			IsOk:       code >= 200 && code < 400,
		},
	}
}

func sslOutcome(valid bool, days int) probe.Outcome {
	return probe.Outcome{
		State:          probe.StateSuccess,
		SSLCertificate: &domain.SSLCertificateResult{Valid: valid, DaysUntilExpiry: days},
	}
}

func dnsOutcome(aRecords ...string) probe.Outcome {
	return probe.Outcome{
		State:      probe.StateSuccess,
		DNSRecords: &domain.DNSRecordsResult{ARecords: aRecords},
	}
}

func composite(m map[probe.Kind]probe.Outcome) Composite {
	return Composite{Outcomes: m}
}

func TestAggregate_AllHealthy(t *testing.T) {
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus:     httpOutcome(200),
		probe.KindSSLCertificate: sslOutcome(true, 90),
		probe.KindDNSRecords:     dnsOutcome("93.184.216.34"),
	}))
	assert.Equal(t, domain.VerdictHealthy, v)
}

func TestAggregate_NoChecksRequested(t *testing.T) {
	// nothing was asked, nothing failed
	assert.Equal(t, domain.VerdictHealthy, Aggregate(composite(nil)))
}

func TestAggregate_HTTP503IsError(t *testing.T) {
	// monitor with only httpStatus enabled, target answers 503
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus: httpOutcome(503),
	}))
	assert.Equal(t, domain.VerdictError, v)
}

func TestAggregate_HTTP404IsWarning(t *testing.T) {
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus: httpOutcome(404),
	}))
	assert.Equal(t, domain.VerdictWarning, v)
}

func TestAggregate_HTTPTransportFailureIsError(t *testing.T) {
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus: {State: probe.StateFailed, Err: "connection refused"},
	}))
	assert.Equal(t, domain.VerdictError, v)
}

func TestAggregate_ExpiringCertIsWarning(t *testing.T) {
	// cert expires in 10 days, everything else healthy
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus:     httpOutcome(200),
		probe.KindSSLCertificate: sslOutcome(true, 10),
		probe.KindDNSRecords:     dnsOutcome("93.184.216.34"),
	}))
	assert.Equal(t, domain.VerdictWarning, v)
}

func TestAggregate_InvalidOrExpiredCertIsError(t *testing.T) {
	assert.Equal(t, domain.VerdictError, Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindSSLCertificate: sslOutcome(false, 90),
	})))
	assert.Equal(t, domain.VerdictError, Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindSSLCertificate: sslOutcome(true, -3),
	})))
}

func TestAggregate_ScreenshotTimeoutStaysHealthy(t *testing.T) {
	// screenshot capture timing out must not degrade a reachable site
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus: httpOutcome(200),
		probe.KindScreenshot: {State: probe.StateTimedOut, Err: "context deadline exceeded"},
	}))
	assert.Equal(t, domain.VerdictHealthy, v)
}

func TestAggregate_ScreenshotServiceErrorIsWarningAtMost(t *testing.T) {
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus: httpOutcome(200),
		probe.KindScreenshot: {State: probe.StateFailed, Err: "render crashed"},
	}))
	assert.Equal(t, domain.VerdictWarning, v)
}

func TestAggregate_EmptyDNSIsWarning_FailedDNSIsError(t *testing.T) {
	assert.Equal(t, domain.VerdictWarning, Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus: httpOutcome(200),
		probe.KindDNSRecords: dnsOutcome(), // resolved to nothing
	})))
	assert.Equal(t, domain.VerdictError, Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus: httpOutcome(200),
		probe.KindDNSRecords: {State: probe.StateFailed, Err: "server misbehaving"},
	})))
}

func TestAggregate_EmptyMXIsWarning(t *testing.T) {
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindMXRecords: {State: probe.StateSuccess, MXRecords: &domain.MXRecordsResult{}},
	}))
	assert.Equal(t, domain.VerdictWarning, v)
}

func TestAggregate_SlowResponseIsWarningNotError(t *testing.T) {
	slow := httpOutcome(200)
	slow.LatencyMS = 3500
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindResponseTime: slow,
	}))
	assert.Equal(t, domain.VerdictWarning, v)
}

func TestAggregate_ErrorPrecedesWarning(t *testing.T) {
	// one error-eligible probe wins no matter how many others are fine
	v := Aggregate(composite(map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus:     httpOutcome(503),
		probe.KindSSLCertificate: sslOutcome(true, 10), // warning-eligible
		probe.KindDNSRecords:     dnsOutcome("93.184.216.34"),
		probe.KindPageInfo:       {State: probe.StateSuccess, PageInfo: &domain.PageInfoResult{}},
	}))
	assert.Equal(t, domain.VerdictError, v)
}

func TestAggregate_CommutativeOverProbeSet(t *testing.T) {
	outcomes := map[probe.Kind]probe.Outcome{
		probe.KindHTTPStatus:     httpOutcome(404),
		probe.KindSSLCertificate: sslOutcome(true, 10),
		probe.KindDNSRecords:     dnsOutcome("93.184.216.34"),
		probe.KindMXRecords:      {State: probe.StateSuccess, MXRecords: &domain.MXRecordsResult{Records: []domain.MXRecord{{Exchange: "mx1", Priority: 10}}}},
	}
	want := Aggregate(composite(outcomes))
	// rebuild the composite a few times; map iteration order varies per run
	for i := 0; i < 10; i++ {
		rebuilt := make(map[probe.Kind]probe.Outcome, len(outcomes))
		for k, v := range outcomes {
			rebuilt[k] = v
		}
		assert.Equal(t, want, Aggregate(composite(rebuilt)))
	}
}

func TestLatencyBand(t *testing.T) {
	assert.Equal(t, "fast", LatencyBand(120))
	assert.Equal(t, "medium", LatencyBand(900))
	assert.Equal(t, "slow", LatencyBand(2500))
}

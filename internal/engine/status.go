package engine

import (
	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/probe"
)

// Classification thresholds. Latency bands classify the end-to-end HTTP
// wall clock; slow is warning-eligible, never error-eligible on its own.
const (
	SSLExpiryWarnDays = 14

	LatencyFastMS = 500
	LatencySlowMS = 2000
)

// LatencyBand buckets a response time reading: fast, medium or slow.
func LatencyBand(ms float64) string {
	switch {
	case ms < LatencyFastMS:
		return "fast"
	case ms <= LatencySlowMS:
		return "medium"
	default:
		return "slow"
	}
}

// Aggregate reduces a composite outcome to one verdict. Precedence is
// fixed and evaluated top-down: any error-eligible probe wins, then any
// warning-eligible one, else healthy. Probe order within the composite
// cannot change the answer. An empty composite (no checks requested) is
// healthy by convention: nothing was asked, nothing failed.
func Aggregate(c Composite) domain.Verdict {
	for kind, out := range c.Outcomes {
		if errorEligible(kind, out) {
			return domain.VerdictError
		}
	}
	for kind, out := range c.Outcomes {
		if warningEligible(kind, out) {
			return domain.VerdictWarning
		}
	}
	return domain.VerdictHealthy
}

// errorEligible per probe kind. Page info and screenshots are best-effort
// enrichment and must never make a reachable site look down; response
// time alone never escalates past warning.
func errorEligible(kind probe.Kind, out probe.Outcome) bool {
	switch kind {
	case probe.KindPageInfo, probe.KindScreenshot, probe.KindResponseTime:
		return false
	case probe.KindHTTPStatus:
		if out.State != probe.StateSuccess {
			return true // connection refused, transport timeout
		}
		return out.HTTPStatus.StatusCode >= 500
	case probe.KindSSLCertificate:
		if out.State != probe.StateSuccess {
			return true
		}
		return !out.SSLCertificate.Valid || out.SSLCertificate.DaysUntilExpiry < 0
	case probe.KindDNSRecords, probe.KindMXRecords:
		// a resolver that could not answer is an outage signal; an
		// empty answer is handled as a warning below
		return out.State != probe.StateSuccess
	}
	return false
}

func warningEligible(kind probe.Kind, out probe.Outcome) bool {
	switch kind {
	case probe.KindHTTPStatus:
		return out.State == probe.StateSuccess &&
			out.HTTPStatus.StatusCode >= 400 && out.HTTPStatus.StatusCode < 500
	case probe.KindSSLCertificate:
		return out.State == probe.StateSuccess &&
			out.SSLCertificate.Valid &&
			out.SSLCertificate.DaysUntilExpiry <= SSLExpiryWarnDays
	case probe.KindDNSRecords:
		return out.State == probe.StateSuccess &&
			len(out.DNSRecords.ARecords)+len(out.DNSRecords.AAAARecords) == 0
	case probe.KindMXRecords:
		return out.State == probe.StateSuccess && len(out.MXRecords.Records) == 0
	case probe.KindPageInfo, probe.KindScreenshot:
		// a renderer/fetcher that answered with an error is worth a
		// warning; one that simply ran out of budget is not a health
		// signal at all
		return out.State == probe.StateFailed
	case probe.KindResponseTime:
		if out.State != probe.StateSuccess {
			return true
		}
		return out.LatencyMS > LatencySlowMS
	}
	return false
}

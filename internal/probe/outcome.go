package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// Kind names one probe dimension. Values match the check flag names so
// results and configuration line up in logs and stored documents.
type Kind string

const (
	KindHTTPStatus     Kind = "httpStatus"
	KindSSLCertificate Kind = "sslCertificate"
	KindDNSRecords     Kind = "dnsRecords"
	KindMXRecords      Kind = "mxRecords"
	KindScreenshot     Kind = "screenshot"
	KindPageInfo       Kind = "pageInfo"
	KindResponseTime   Kind = "responseTime"
)

// State is the terminal state of one probe run.
type State string

const (
	StateSuccess  State = "success"
	StateFailed   State = "failed"
	StateTimedOut State = "timed_out"
)

// Outcome is the unified envelope a probe returns. Exactly one payload
// pointer is set on success, matching the probe's kind; none on failure.
// A probe never returns an error past its own boundary: transport and
// resolver failures become StateFailed, an exceeded deadline becomes
// StateTimedOut.
//
// LatencyMS is only meaningful for the HTTP probe (end-to-end wall clock
// of the request). Elapsed is set by the orchestrator for every probe.
type Outcome struct {
	State State
	Err   string

	HTTPStatus     *domain.HTTPStatusResult
	SSLCertificate *domain.SSLCertificateResult
	DNSRecords     *domain.DNSRecordsResult
	MXRecords      *domain.MXRecordsResult
	Screenshot     *domain.ScreenshotResult
	PageInfo       *domain.PageInfoResult

	LatencyMS float64
	Elapsed   time.Duration
}

// Probe inspects one dimension of a target URL. Run must honor ctx
// cancellation and return a terminal Outcome; it must not panic or leak
// an error for anything the target did.
type Probe interface {
	Kind() Kind
	Run(ctx context.Context, target string) Outcome
}

// failedOutcome classifies an operational error: a blown deadline is
// TimedOut, everything else Failed.
func failedOutcome(err error) Outcome {
	st := StateFailed
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		st = StateTimedOut
	}
	return Outcome{State: st, Err: err.Error()}
}

// hostOf pulls the hostname out of a URL string; bare hostnames pass
// through unchanged.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

package domain

import "time"

// HTTPStatusResult is the payload of the HTTP reachability probe.
// IsOk covers 2xx/3xx; a 500 here is still a completed probe, the site
// reporting an error is signal, not a probe failure.
type HTTPStatusResult struct {
	StatusCode int    `json:"statusCode"`
	StatusText string `json:"statusText"`
	IsOk       bool   `json:"isOk"`
}

type SSLCertificateResult struct {
	Valid           bool      `json:"valid"`
	Issuer          string    `json:"issuer"`
	Subject         string    `json:"subject"`
	ValidFrom       time.Time `json:"validFrom"`
	ValidTo         time.Time `json:"validTo"`
	DaysUntilExpiry int       `json:"daysUntilExpiry"`
	Protocol        string    `json:"protocol"`
}

type DNSRecordsResult struct {
	ARecords     []string `json:"aRecords"`
	AAAARecords  []string `json:"aaaaRecords"`
	NSRecords    []string `json:"nsRecords"`
	TXTRecords   []string `json:"txtRecords"`
	CNAMERecords []string `json:"cnameRecords"`
}

type MXRecord struct {
	Exchange string `json:"exchange"`
	Priority uint16 `json:"priority"`
}

type MXRecordsResult struct {
	Records []MXRecord `json:"records"`
}

type ScreenshotResult struct {
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CapturedAt   time.Time `json:"capturedAt"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
}

type PageInfoResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Favicon     string   `json:"favicon,omitempty"`
	OGImage     string   `json:"ogImage,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Language    string   `json:"language,omitempty"`
	Charset     string   `json:"charset,omitempty"`
	Generator   string   `json:"generator,omitempty"`
	LoadTimeMS  float64  `json:"loadTime"`
}

// CheckResult is one immutable history entry for one executed check.
// A sub-result pointer is non-nil only when the corresponding check flag
// was enabled for that invocation AND the probe produced a payload;
// absence means "not requested" (or the probe could not run, which is
// reflected in OverallStatus instead).
type CheckResult struct {
	MonitorID MonitorID `json:"monitor_id"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`

	HTTPStatus     *HTTPStatusResult     `json:"httpStatus,omitempty"`
	SSLCertificate *SSLCertificateResult `json:"sslCertificate,omitempty"`
	DNSRecords     *DNSRecordsResult     `json:"dnsRecords,omitempty"`
	MXRecords      *MXRecordsResult      `json:"mxRecords,omitempty"`
	Screenshot     *ScreenshotResult     `json:"screenshot,omitempty"`
	PageInfo       *PageInfoResult       `json:"pageInfo,omitempty"`

	ResponseTimeMS *float64 `json:"responseTime,omitempty"`

	OverallStatus Verdict `json:"overallStatus"`
}

package domain

import "time"

type OrgID string

type MonitorID string

// EnabledChecks selects which probes run for a monitor. This is
// configuration, not outcome: a false flag means the corresponding
// sub-result is absent from every CheckResult produced for the monitor.
type EnabledChecks struct {
	HTTPStatus     bool `json:"httpStatus"`
	SSLCertificate bool `json:"sslCertificate"`
	DNSRecords     bool `json:"dnsRecords"`
	MXRecords      bool `json:"mxRecords"`
	Screenshot     bool `json:"screenshot"`
	PageInfo       bool `json:"pageInfo"`
	ResponseTime   bool `json:"responseTime"`
}

// None reports whether no probe is enabled at all.
func (c EnabledChecks) None() bool {
	return !c.HTTPStatus && !c.SSLCertificate && !c.DNSRecords &&
		!c.MXRecords && !c.Screenshot && !c.PageInfo && !c.ResponseTime
}

// MonitorConfig is one organization-owned target. The CRUD side of the
// product owns creation and edits; the check engine only reads it, except
// for the Last* cache fields which the recorder overwrites on every
// completed check.
type MonitorConfig struct {
	ID        MonitorID     `json:"id"`
	OrgID     OrgID         `json:"org_id"`
	URL       string        `json:"url"`
	Name      string        `json:"name"`
	Checks    EnabledChecks `json:"checks"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`

	LastCheckedAt     *time.Time `json:"last_checked_at,omitempty"`
	LastStatus        *Verdict   `json:"last_status,omitempty"`
	LastScreenshotURL *string    `json:"last_screenshot_url,omitempty"`
}

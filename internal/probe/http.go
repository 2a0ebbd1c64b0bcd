package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// HTTPProbe performs the primary reachability request. It also measures
// end-to-end wall clock, which doubles as the response-time reading when
// that check is enabled.
type HTTPProbe struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPProbe(timeout time.Duration, userAgent string) *HTTPProbe {
	return &HTTPProbe{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

func (p *HTTPProbe) Kind() Kind { return KindHTTPStatus }

func (p *HTTPProbe) Run(ctx context.Context, target string) Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failedOutcome(err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := p.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		out := failedOutcome(err)
		out.LatencyMS = latency
		return out
	}
	defer resp.Body.Close()

	return Outcome{
		State: StateSuccess,
		HTTPStatus: &domain.HTTPStatusResult{
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			IsOk:       resp.StatusCode >= 200 && resp.StatusCode < 400,
		},
		LatencyMS: latency,
	}
}

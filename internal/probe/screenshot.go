package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// ScreenshotProbe asks the external capture service to render the target
// and hands back the hosted image metadata. The renderer is a black box;
// anything it cannot do comes back as a Failed outcome, which the
// aggregator treats as warning-eligible at worst.
type ScreenshotProbe struct {
	Endpoint string
	Client   *http.Client
}

func NewScreenshotProbe(endpoint string, timeout time.Duration) *ScreenshotProbe {
	return &ScreenshotProbe{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (p *ScreenshotProbe) Kind() Kind { return KindScreenshot }

type captureRequest struct {
	URL string `json:"url"`
}

type captureResponse struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

func (p *ScreenshotProbe) Run(ctx context.Context, target string) Outcome {
	if p.Endpoint == "" {
		return Outcome{State: StateFailed, Err: "capture service not configured"}
	}

	body, _ := json.Marshal(captureRequest{URL: target})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return failedOutcome(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return failedOutcome(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return Outcome{State: StateFailed, Err: "capture service returned " + resp.Status}
	}

	var cr captureResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Outcome{State: StateFailed, Err: "capture service payload: " + err.Error()}
	}
	if cr.URL == "" {
		return Outcome{State: StateFailed, Err: "capture service returned no image url"}
	}

	return Outcome{
		State: StateSuccess,
		Screenshot: &domain.ScreenshotResult{
			URL:          cr.URL,
			ThumbnailURL: cr.ThumbnailURL,
			CapturedAt:   time.Now().UTC(),
			Width:        cr.Width,
			Height:       cr.Height,
		},
	}
}

package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScreenshotProbe_Capture(t *testing.T) {
	var gotURL string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req captureRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotURL = req.URL
		json.NewEncoder(w).Encode(captureResponse{
			URL:          "https://img.capture.test/abc.png",
			ThumbnailURL: "https://img.capture.test/abc_t.png",
			Width:        1280,
			Height:       800,
		})
	}))
	defer s.Close()

	p := NewScreenshotProbe(s.URL, 2*time.Second)
	out := p.Run(context.Background(), "https://example.com")
	if out.State != StateSuccess {
		t.Fatalf("want success, got %+v", out)
	}
	if gotURL != "https://example.com" {
		t.Fatalf("capture service got %q", gotURL)
	}
	ss := out.Screenshot
	if ss.URL != "https://img.capture.test/abc.png" || ss.Width != 1280 || ss.Height != 800 {
		t.Fatalf("unexpected payload: %+v", ss)
	}
	if ss.CapturedAt.IsZero() {
		t.Fatalf("captured_at should be set")
	}
}

func TestScreenshotProbe_ServiceError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "render crashed", 500)
	}))
	defer s.Close()

	p := NewScreenshotProbe(s.URL, 2*time.Second)
	out := p.Run(context.Background(), "https://example.com")
	if out.State != StateFailed {
		t.Fatalf("want failed, got %+v", out)
	}
}

func TestScreenshotProbe_Unconfigured(t *testing.T) {
	p := NewScreenshotProbe("", time.Second)
	out := p.Run(context.Background(), "https://example.com")
	if out.State != StateFailed {
		t.Fatalf("want failed when no endpoint configured, got %+v", out)
	}
}

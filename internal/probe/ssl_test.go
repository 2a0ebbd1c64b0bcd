package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSSLProbe_SelfSignedCertCapturedAsInvalid(t *testing.T) {
	s := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer s.Close()

	p := NewSSLProbe()
	out := p.Run(context.Background(), s.URL)
	if out.State != StateSuccess {
		t.Fatalf("cert details should be captured even when verification fails, got %+v", out)
	}
	cert := out.SSLCertificate
	if cert.Valid {
		t.Fatalf("self-signed cert must not be valid: %+v", cert)
	}
	if cert.ValidTo.IsZero() || cert.Protocol == "" {
		t.Fatalf("expected expiry and protocol metadata, got %+v", cert)
	}
}

func TestSSLProbe_NoListener(t *testing.T) {
	p := NewSSLProbe()
	out := p.Run(context.Background(), "https://127.0.0.1:1")
	if out.State != StateFailed {
		t.Fatalf("want failed, got %+v", out)
	}
	if out.SSLCertificate != nil {
		t.Fatalf("no payload expected, got %+v", out.SSLCertificate)
	}
}

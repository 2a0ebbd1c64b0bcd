package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// SSLProbe inspects the certificate presented on the target's TLS port.
// A chain that fails verification is still inspected (second dial without
// verification) so the stored payload carries issuer/expiry details with
// Valid=false instead of nothing at all.
type SSLProbe struct {
	Dialer *net.Dialer
}

func NewSSLProbe() *SSLProbe {
	return &SSLProbe{Dialer: &net.Dialer{}}
}

func (p *SSLProbe) Kind() Kind { return KindSSLCertificate }

func (p *SSLProbe) Run(ctx context.Context, target string) Outcome {
	host, port := tlsAddr(target)
	addr := net.JoinHostPort(host, port)

	conn, err := p.dial(ctx, addr, &tls.Config{ServerName: host})
	valid := true
	if err != nil {
		if isTimeout(err) {
			return failedOutcome(err)
		}
		// verification failure or handshake quirk: retry without
		// verification to still capture the certificate
		valid = false
		conn, err = p.dial(ctx, addr, &tls.Config{ServerName: host, InsecureSkipVerify: true})
		if err != nil {
			return failedOutcome(err)
		}
	}
	defer conn.Close()

	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return Outcome{State: StateFailed, Err: "no peer certificate presented"}
	}
	cert := state.PeerCertificates[0]

	now := time.Now()
	days := int(cert.NotAfter.Sub(now).Hours() / 24)
	if now.After(cert.NotAfter) && days == 0 {
		days = -1 // expired within the last day still reads as expired
	}

	return Outcome{
		State: StateSuccess,
		SSLCertificate: &domain.SSLCertificateResult{
			Valid:           valid && now.After(cert.NotBefore) && now.Before(cert.NotAfter),
			Issuer:          cert.Issuer.String(),
			Subject:         cert.Subject.String(),
			ValidFrom:       cert.NotBefore,
			ValidTo:         cert.NotAfter,
			DaysUntilExpiry: days,
			Protocol:        tls.VersionName(state.Version),
		},
	}
}

func (p *SSLProbe) dial(ctx context.Context, addr string, cfg *tls.Config) (*tls.Conn, error) {
	d := &tls.Dialer{NetDialer: p.Dialer, Config: cfg}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return conn.(*tls.Conn), nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
}

// tlsAddr extracts host and TLS port from a monitor URL; the explicit
// port wins when the URL carries one, otherwise 443.
func tlsAddr(raw string) (host, port string) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw, "443"
	}
	port = u.Port()
	if port == "" || u.Scheme == "http" {
		port = "443"
	}
	return u.Hostname(), port
}

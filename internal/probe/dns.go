package probe

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// Resolver is the subset of net.Resolver the DNS and MX probes use.
// Injectable so tests can run without touching the network.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupNS(ctx context.Context, host string) ([]*net.NS, error)
	LookupTXT(ctx context.Context, host string) ([]string, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupMX(ctx context.Context, host string) ([]*net.MX, error)
}

// DNSProbe gathers the record sets for the target's hostname. A name
// that resolves to nothing is a successful probe with empty sets (the
// aggregator classifies that); a resolver that cannot answer is Failed.
type DNSProbe struct {
	Resolver Resolver
}

func NewDNSProbe() *DNSProbe {
	return &DNSProbe{Resolver: &net.Resolver{}}
}

func (p *DNSProbe) Kind() Kind { return KindDNSRecords }

func (p *DNSProbe) Run(ctx context.Context, target string) Outcome {
	host := hostOf(target)
	res := &domain.DNSRecordsResult{}

	ips, err := p.Resolver.LookupIP(ctx, "ip", host)
	if err != nil && !isNotFound(err) {
		return failedOutcome(err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			res.ARecords = append(res.ARecords, v4.String())
		} else {
			res.AAAARecords = append(res.AAAARecords, ip.String())
		}
	}

	if ns, err := p.Resolver.LookupNS(ctx, host); err == nil {
		for _, n := range ns {
			res.NSRecords = append(res.NSRecords, strings.TrimSuffix(n.Host, "."))
		}
	}
	if txt, err := p.Resolver.LookupTXT(ctx, host); err == nil {
		res.TXTRecords = txt
	}
	if cname, err := p.Resolver.LookupCNAME(ctx, host); err == nil &&
		!strings.EqualFold(cname, host+".") && cname != "" {
		res.CNAMERecords = []string{strings.TrimSuffix(cname, ".")}
	}

	return Outcome{State: StateSuccess, DNSRecords: res}
}

// MXProbe resolves the mail exchangers for the target's hostname.
type MXProbe struct {
	Resolver Resolver
}

func NewMXProbe() *MXProbe {
	return &MXProbe{Resolver: &net.Resolver{}}
}

func (p *MXProbe) Kind() Kind { return KindMXRecords }

func (p *MXProbe) Run(ctx context.Context, target string) Outcome {
	host := hostOf(target)

	mxs, err := p.Resolver.LookupMX(ctx, host)
	if err != nil && !isNotFound(err) {
		return failedOutcome(err)
	}

	res := &domain.MXRecordsResult{}
	for _, mx := range mxs {
		res.Records = append(res.Records, domain.MXRecord{
			Exchange: strings.TrimSuffix(mx.Host, "."),
			Priority: mx.Pref,
		})
	}
	return Outcome{State: StateSuccess, MXRecords: res}
}

// isNotFound: NXDOMAIN / no-such-record answers are data (empty sets),
// not resolver failures.
func isNotFound(err error) bool {
	var de *net.DNSError
	return errors.As(err, &de) && de.IsNotFound
}

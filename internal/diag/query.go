package diag

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"

	"github.com/indracloudin/setup-bind9-centos/internal/config"
)

// ServerReport is the diagnostic result for one nameserver.
type ServerReport struct {
	Server       string
	Address      string
	Serial       uint32
	NSNames      []string
	ServiceAddrs []string
	WWWTarget    string
	Errors       []string
}

// Report is the combined diagnostic result for the pair.
type Report struct {
	Primary   ServerReport
	Secondary ServerReport
}

// InSync reports whether both servers answered and agree on the zone serial.
func (r *Report) InSync() bool {
	return len(r.Primary.Errors) == 0 &&
		len(r.Secondary.Errors) == 0 &&
		r.Primary.Serial == r.Secondary.Serial
}

// Checker runs post-deployment queries against both nameservers of a pair.
// It replaces the manual dig/nslookup verification of the original
// procedure and is never part of the automated setup flow.
type Checker struct {
	logger zerolog.Logger

	// exchange is swappable in tests; the default sends the query over UDP
	// with a miekg/dns client.
	exchange func(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, error)
}

// NewChecker creates a Checker using a UDP DNS client.
func NewChecker(logger zerolog.Logger) *Checker {
	client := &dns.Client{Timeout: 5 * time.Second}
	return &Checker{
		logger: logger.With().Str("component", "diag").Logger(),
		exchange: func(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, error) {
			resp, _, err := client.ExchangeContext(ctx, msg, addr)
			return resp, err
		},
	}
}

// Check queries both nameservers for the zone's SOA, NS set, service pool
// and www alias.
func (c *Checker) Check(ctx context.Context, dep *config.Deployment) (*Report, error) {
	report := &Report{
		Primary:   c.checkServer(ctx, dep, dep.Primary),
		Secondary: c.checkServer(ctx, dep, dep.Secondary),
	}

	if report.InSync() {
		c.logger.Info().Uint32("serial", report.Primary.Serial).Msg("nameservers are in sync")
	} else {
		c.logger.Warn().
			Uint32("primary_serial", report.Primary.Serial).
			Uint32("secondary_serial", report.Secondary.Serial).
			Msg("nameservers disagree or failed to answer")
	}
	return report, nil
}

func (c *Checker) checkServer(ctx context.Context, dep *config.Deployment, ns config.NameServer) ServerReport {
	report := ServerReport{
		Server:  ns.Hostname,
		Address: ns.IP,
	}
	addr := net.JoinHostPort(ns.IP, "53")
	zone := dns.Fqdn(dep.Domain)

	if soa := c.query(ctx, addr, zone, dns.TypeSOA, &report); soa != nil {
		for _, rr := range soa.Answer {
			if s, ok := rr.(*dns.SOA); ok {
				report.Serial = s.Serial
			}
		}
	}

	if resp := c.query(ctx, addr, zone, dns.TypeNS, &report); resp != nil {
		for _, rr := range resp.Answer {
			if n, ok := rr.(*dns.NS); ok {
				report.NSNames = append(report.NSNames, strings.TrimSuffix(n.Ns, "."))
			}
		}
	}

	service := dns.Fqdn(dep.ServiceLabel + "." + dep.Domain)
	if resp := c.query(ctx, addr, service, dns.TypeA, &report); resp != nil {
		for _, rr := range resp.Answer {
			if a, ok := rr.(*dns.A); ok {
				report.ServiceAddrs = append(report.ServiceAddrs, a.A.String())
			}
		}
	}

	www := dns.Fqdn("www." + dep.Domain)
	if resp := c.query(ctx, addr, www, dns.TypeCNAME, &report); resp != nil {
		for _, rr := range resp.Answer {
			if cname, ok := rr.(*dns.CNAME); ok {
				report.WWWTarget = strings.TrimSuffix(cname.Target, ".")
			}
		}
	}

	return report
}

func (c *Checker) query(ctx context.Context, addr, name string, qtype uint16, report *ServerReport) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(name, qtype)

	resp, err := c.exchange(ctx, msg, addr)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("%s %s: %v", dns.TypeToString[qtype], name, err))
		return nil
	}
	if resp.Rcode != dns.RcodeSuccess {
		report.Errors = append(report.Errors, fmt.Sprintf("%s %s: %s", dns.TypeToString[qtype], name, dns.RcodeToString[resp.Rcode]))
		return nil
	}
	return resp
}

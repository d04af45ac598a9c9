package bind

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"text/template"
	"time"

	"github.com/indracloudin/setup-bind9-centos/internal/config"
)

const forwardZoneTemplate = `$TTL 86400
@	IN	SOA	{{ .PrimaryHost }}. {{ .Hostmaster }} (
		{{ .Serial }}	; serial
		86400	; refresh, 1 day
		3600	; retry, 1 hour
		604800	; expire, 1 week
		10800	; minimum TTL, 3 hours
)

; name servers
@	IN	NS	{{ .PrimaryHost }}.
@	IN	NS	{{ .SecondaryHost }}.

; name server addresses
{{ .PrimaryHost }}.	IN	A	{{ .PrimaryIP }}
{{ .SecondaryHost }}.	IN	A	{{ .SecondaryIP }}

; {{ .ServiceLabel }} pool
{{- range .ServiceAddresses }}
{{ $.ServiceLabel }}	IN	A	{{ . }}
{{- end }}

; aliases
www	IN	CNAME	{{ .Domain }}.
`

const reverseZoneTemplate = `$TTL 86400
@	IN	SOA	{{ .PrimaryHost }}. {{ .Hostmaster }} (
		{{ .Serial }}	; serial
		86400	; refresh, 1 day
		3600	; retry, 1 hour
		604800	; expire, 1 week
		10800	; minimum TTL, 3 hours
)

; name servers
@	IN	NS	{{ .PrimaryHost }}.
@	IN	NS	{{ .SecondaryHost }}.

; pointer records
{{ .PrimaryOctet }}	IN	PTR	{{ .PrimaryHost }}.
{{ .SecondaryOctet }}	IN	PTR	{{ .SecondaryHost }}.
`

var (
	forwardZoneTmpl = template.Must(template.New("forward").Parse(forwardZoneTemplate))
	reverseZoneTmpl = template.Must(template.New("reverse").Parse(reverseZoneTemplate))
)

type zoneData struct {
	Domain           string
	Hostmaster       string
	Serial           string
	PrimaryHost      string
	SecondaryHost    string
	PrimaryIP        string
	SecondaryIP      string
	PrimaryOctet     int
	SecondaryOctet   int
	ServiceLabel     string
	ServiceAddresses []string
}

func newZoneData(dep *config.Deployment, serial string) (zoneData, error) {
	primaryOctet, err := lastOctet(dep.Primary.IP)
	if err != nil {
		return zoneData{}, err
	}
	secondaryOctet, err := lastOctet(dep.Secondary.IP)
	if err != nil {
		return zoneData{}, err
	}

	return zoneData{
		Domain:           dep.Domain,
		Hostmaster:       dep.Hostmaster(),
		Serial:           serial,
		PrimaryHost:      dep.Primary.Hostname,
		SecondaryHost:    dep.Secondary.Hostname,
		PrimaryIP:        dep.Primary.IP,
		SecondaryIP:      dep.Secondary.IP,
		PrimaryOctet:     primaryOctet,
		SecondaryOctet:   secondaryOctet,
		ServiceLabel:     dep.ServiceLabel,
		ServiceAddresses: dep.ServiceAddresses,
	}, nil
}

// RenderForwardZone produces the forward zone file: SOA, two NS records, one
// A record per nameserver, the load-balanced service pool, and the www alias.
func RenderForwardZone(dep *config.Deployment, serial string) (string, error) {
	data, err := newZoneData(dep, serial)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := forwardZoneTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render forward zone: %w", err)
	}
	return buf.String(), nil
}

// RenderReverseZone produces the reverse zone file: SOA, two NS records, and
// one PTR per nameserver keyed by its last IPv4 octet.
func RenderReverseZone(dep *config.Deployment, serial string) (string, error) {
	data, err := newZoneData(dep, serial)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := reverseZoneTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render reverse zone: %w", err)
	}
	return buf.String(), nil
}

func lastOctet(addr string) (int, error) {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return 0, fmt.Errorf("invalid IPv4 address %q", addr)
	}
	return int(ip.To4()[3]), nil
}

var serialRe = regexp.MustCompile(`(\d{10})\s*;\s*serial`)

// Serial computes the zone serial for this run. Under the date policy it is
// always YYYYMMDD01, so a second run on the same day repeats the serial.
// Under the bump policy the serial in existingZonePath is read and, when its
// date prefix matches today, the two-digit suffix is incremented so
// secondaries always see the zone as updated.
func Serial(policy config.SerialPolicy, now time.Time, existingZonePath string) (string, error) {
	prefix := now.Format("20060102")
	base := prefix + "01"

	if policy == config.SerialPolicyDate {
		return base, nil
	}

	data, err := os.ReadFile(existingZonePath)
	if err != nil {
		// First run; nothing to bump.
		return base, nil
	}

	m := serialRe.FindSubmatch(data)
	if m == nil {
		return base, nil
	}
	existing := string(m[1])
	if existing[:8] != prefix {
		return base, nil
	}

	suffix, err := strconv.Atoi(existing[8:])
	if err != nil {
		return base, nil
	}
	if suffix >= 99 {
		return "", fmt.Errorf("serial %s: daily sequence exhausted", existing)
	}
	return fmt.Sprintf("%s%02d", prefix, suffix+1), nil
}

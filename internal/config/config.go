package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SerialPolicy selects how zone serial numbers are generated across runs.
type SerialPolicy string

const (
	// SerialPolicyDate emits YYYYMMDD01 on every run. Two runs on the same
	// calendar day produce the same serial, which secondaries treat as
	// "no update".
	SerialPolicyDate SerialPolicy = "date"

	// SerialPolicyBump reads the serial from the existing zone file and
	// increments the two-digit suffix when the date prefix matches today.
	SerialPolicyBump SerialPolicy = "bump"
)

// NameServer pairs a nameserver hostname with its IPv4 address.
type NameServer struct {
	Hostname string `yaml:"hostname" validate:"required,fqdn"`
	IP       string `yaml:"ip" validate:"required,ip4_addr"`
}

// Paths holds the filesystem locations the tool writes to. They default to
// the standard CentOS BIND layout and are overridable so tests and the
// render command can target a scratch directory.
type Paths struct {
	NamedConf   string `yaml:"named_conf"`
	NamedBackup string `yaml:"named_backup"`
	ZoneDir     string `yaml:"zone_dir"`
	SlaveDir    string `yaml:"slave_dir"`
}

// Deployment is the full set of parameters describing the nameserver pair.
// It replaces the hardcoded deployment identity of the original procedure;
// callers load it from YAML or start from Default().
type Deployment struct {
	Domain    string     `yaml:"domain" validate:"required,fqdn"`
	Primary   NameServer `yaml:"primary"`
	Secondary NameServer `yaml:"secondary"`

	// ServiceLabel is the load-balanced record name inside the zone; each
	// address in ServiceAddresses becomes one A record under it.
	ServiceLabel     string   `yaml:"service_label" validate:"required"`
	ServiceAddresses []string `yaml:"service_addresses" validate:"min=1,dive,ip4_addr"`

	SerialPolicy SerialPolicy `yaml:"serial_policy" validate:"oneof=date bump"`

	Paths Paths `yaml:"paths"`

	LogLevel string `yaml:"log_level"`
}

var validate = validator.New()

// Default returns the reference deployment the original procedure shipped
// with. It is a fully valid configuration on its own.
func Default() *Deployment {
	return &Deployment{
		Domain: "local.mydomainz.id",
		Primary: NameServer{
			Hostname: "ns1.local.mydomainz.id",
			IP:       "172.30.0.53",
		},
		Secondary: NameServer{
			Hostname: "ns2.local.mydomainz.id",
			IP:       "172.30.0.56",
		},
		ServiceLabel:     "webserver",
		ServiceAddresses: []string{"172.30.0.52", "172.30.0.53", "172.30.0.54"},
		SerialPolicy:     SerialPolicyDate,
		Paths: Paths{
			NamedConf:   "/etc/named.conf",
			NamedBackup: "/etc/named.conf.bak",
			ZoneDir:     "/var/named",
			SlaveDir:    "/var/named/slaves",
		},
		LogLevel: "info",
	}
}

// Load reads a deployment definition from a YAML file. Fields left out of
// the file keep their defaults.
func Load(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deployment file: %w", err)
	}

	dep := Default()
	if err := yaml.Unmarshal(data, dep); err != nil {
		return nil, fmt.Errorf("parse deployment file: %w", err)
	}

	if err := dep.Validate(); err != nil {
		return nil, err
	}
	return dep, nil
}

// Validate checks the deployment for structural problems beyond what the
// struct tags express.
func (d *Deployment) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("validate deployment: %w", err)
	}
	if d.Primary.IP == d.Secondary.IP {
		return fmt.Errorf("validate deployment: primary and secondary share IP %s", d.Primary.IP)
	}
	if d.Primary.Hostname == d.Secondary.Hostname {
		return fmt.Errorf("validate deployment: primary and secondary share hostname %s", d.Primary.Hostname)
	}
	return nil
}

// ForwardZoneFile is the path of the primary's forward zone file.
func (d *Deployment) ForwardZoneFile() string {
	return filepath.Join(d.Paths.ZoneDir, "forward."+d.Domain)
}

// ReverseZoneFile is the path of the primary's reverse zone file.
func (d *Deployment) ReverseZoneFile() string {
	return filepath.Join(d.Paths.ZoneDir, "reverse."+d.Domain)
}

// ReverseZoneName derives the in-addr.arpa zone from the primary address:
// the first three IPv4 octets in reverse order, e.g. 172.30.0.53 ->
// 0.30.172.in-addr.arpa.
func (d *Deployment) ReverseZoneName() (string, error) {
	ip := net.ParseIP(d.Primary.IP)
	if ip == nil {
		return "", fmt.Errorf("reverse zone: invalid primary IP %q", d.Primary.IP)
	}
	v4 := ip.To4()
	if v4 == nil {
		return "", fmt.Errorf("reverse zone: primary IP %q is not IPv4", d.Primary.IP)
	}
	return fmt.Sprintf("%d.%d.%d.in-addr.arpa", v4[2], v4[1], v4[0]), nil
}

// Hostmaster returns the SOA administrator mailbox in zone-file notation,
// derived from the domain (admin.<domain>.).
func (d *Deployment) Hostmaster() string {
	return "admin." + strings.TrimSuffix(d.Domain, ".") + "."
}

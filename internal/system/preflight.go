package system

import (
	"fmt"
	"os"
	"strings"
)

// Supported OS families, matched against ID and ID_LIKE in os-release.
var rhelFamily = map[string]bool{
	"rhel":      true,
	"centos":    true,
	"fedora":    true,
	"rocky":     true,
	"almalinux": true,
}

// Preflight verifies the host preconditions: elevated privilege and a
// RHEL-family operating system.
type Preflight struct {
	// OSReleasePath defaults to /etc/os-release; tests point it elsewhere.
	OSReleasePath string

	// EUID is swappable in tests.
	EUID func() int
}

// NewPreflight creates a Preflight with production defaults.
func NewPreflight() *Preflight {
	return &Preflight{
		OSReleasePath: "/etc/os-release",
		EUID:          os.Geteuid,
	}
}

// Check runs all precondition checks and returns the first failure.
func (p *Preflight) Check() error {
	if p.EUID() != 0 {
		return fmt.Errorf("preflight: must run as root (euid %d)", p.EUID())
	}

	data, err := os.ReadFile(p.OSReleasePath)
	if err != nil {
		return fmt.Errorf("preflight: read %s: %w", p.OSReleasePath, err)
	}
	id, ok := osFamilySupported(string(data))
	if !ok {
		return fmt.Errorf("preflight: unsupported OS %q, need a RHEL-family distribution", id)
	}
	return nil
}

// osFamilySupported parses os-release content and reports whether ID or any
// ID_LIKE entry names a RHEL-family distribution. The returned id is the
// parsed ID value, for error reporting.
func osFamilySupported(content string) (string, bool) {
	var id string
	var like []string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if k, v, ok := strings.Cut(line, "="); ok {
			v = strings.Trim(v, `"`)
			switch k {
			case "ID":
				id = v
			case "ID_LIKE":
				like = strings.Fields(v)
			}
		}
	}

	if rhelFamily[id] {
		return id, true
	}
	for _, l := range like {
		if rhelFamily[l] {
			return id, true
		}
	}
	return id, false
}

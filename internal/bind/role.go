package bind

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/indracloudin/setup-bind9-centos/internal/config"
)

// Role is the part this host plays in the nameserver pair.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// ErrRoleAmbiguous is returned when the observed address matches neither
// configured nameserver. Callers decide whether to prompt or fail fast.
var ErrRoleAmbiguous = errors.New("host address matches neither nameserver")

// ParseRole accepts exactly the two role literals, case-sensitively.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePrimary, RoleSecondary:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q, want primary or secondary", s)
}

// DetectRole maps the host's observed address onto a role. It is a pure
// function of its inputs; the ambiguous case surfaces as ErrRoleAmbiguous.
func DetectRole(observed string, dep *config.Deployment) (Role, error) {
	switch observed {
	case dep.Primary.IP:
		return RolePrimary, nil
	case dep.Secondary.IP:
		return RoleSecondary, nil
	}
	return "", fmt.Errorf("observed %s: %w", observed, ErrRoleAmbiguous)
}

// RolePrompter asks the operator for the role when detection is ambiguous.
// It re-prompts until one of the two exact literals is supplied.
type RolePrompter struct {
	In  io.Reader
	Out io.Writer
}

// Prompt blocks until the operator enters a valid role. Input exhaustion
// (EOF) is the only other way out.
func (p *RolePrompter) Prompt() (Role, error) {
	scanner := bufio.NewScanner(p.In)
	for {
		fmt.Fprint(p.Out, "Role of this host (primary/secondary): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read role: %w", err)
			}
			return "", fmt.Errorf("read role: input closed")
		}
		role, err := ParseRole(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintf(p.Out, "%v\n", err)
			continue
		}
		return role, nil
	}
}

// ObservedAddress returns the host's primary IPv4 address: the first global
// unicast IPv4 found on a non-loopback interface that is up.
func ObservedAddress() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP.To4()
			if ip == nil || !ip.IsGlobalUnicast() {
				continue
			}
			return ip.String(), nil
		}
	}
	return "", fmt.Errorf("no global unicast IPv4 address found")
}

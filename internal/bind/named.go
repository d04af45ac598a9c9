package bind

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/indracloudin/setup-bind9-centos/internal/config"
)

const namedConfTemplate = `//
// named.conf
//
// Generated by bind9-setup; manual edits will be overwritten on the next run.
//

options {
	listen-on port 53 { any; };
	listen-on-v6 port 53 { any; };
	directory	"{{ .ZoneDir }}";
	dump-file	"{{ .ZoneDir }}/data/cache_dump.db";
	statistics-file	"{{ .ZoneDir }}/data/named_stats.txt";
	memstatistics-file "{{ .ZoneDir }}/data/named_mem_stats.txt";

	allow-query	{ any; };
	allow-transfer	{ {{ .SecondaryIP }}; };

	recursion yes;

	dnssec-enable yes;
	dnssec-validation yes;

	bindkeys-file "/etc/named.iscdlv.key";
	managed-keys-directory "{{ .ZoneDir }}/dynamic";

	pid-file "/run/named/named.pid";
	session-keyfile "/run/named/session.key";
};

logging {
	channel default_debug {
		file "data/named.run";
		severity dynamic;
	};
};

zone "." IN {
	type hint;
	file "named.ca";
};

{{ if .IsPrimary -}}
zone "{{ .Domain }}" IN {
	type master;
	file "{{ .ForwardFile }}";
	allow-transfer { {{ .SecondaryIP }}; };
	also-notify { {{ .SecondaryIP }}; };
	notify yes;
};

zone "{{ .ReverseZone }}" IN {
	type master;
	file "{{ .ReverseFile }}";
	allow-transfer { {{ .SecondaryIP }}; };
	also-notify { {{ .SecondaryIP }}; };
	notify yes;
};
{{- else -}}
zone "{{ .Domain }}" IN {
	type slave;
	file "slaves/{{ .ForwardFile }}";
	masters { {{ .PrimaryIP }}; };
};

zone "{{ .ReverseZone }}" IN {
	type slave;
	file "slaves/{{ .ReverseFile }}";
	masters { {{ .PrimaryIP }}; };
};
{{- end }}

include "/etc/named.rfc1912.zones";
include "/etc/named.root.key";
`

var namedConfTmpl = template.Must(template.New("namedconf").Parse(namedConfTemplate))

type namedConfData struct {
	Domain      string
	ReverseZone string
	PrimaryIP   string
	SecondaryIP string
	ZoneDir     string
	ForwardFile string
	ReverseFile string
	IsPrimary   bool
}

// RenderNamedConf produces the full named.conf for the given role: the fixed
// options preamble plus the role's zone declarations.
func RenderNamedConf(dep *config.Deployment, role Role) (string, error) {
	reverseZone, err := dep.ReverseZoneName()
	if err != nil {
		return "", err
	}

	data := namedConfData{
		Domain:      dep.Domain,
		ReverseZone: reverseZone,
		PrimaryIP:   dep.Primary.IP,
		SecondaryIP: dep.Secondary.IP,
		ZoneDir:     dep.Paths.ZoneDir,
		ForwardFile: filepath.Base(dep.ForwardZoneFile()),
		ReverseFile: filepath.Base(dep.ReverseZoneFile()),
		IsPrimary:   role == RolePrimary,
	}

	var buf bytes.Buffer
	if err := namedConfTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render named.conf: %w", err)
	}
	return buf.String(), nil
}

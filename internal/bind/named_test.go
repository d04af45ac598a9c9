package bind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indracloudin/setup-bind9-centos/internal/config"
)

func TestRenderNamedConf_Primary(t *testing.T) {
	dep := config.Default()

	conf, err := RenderNamedConf(dep, RolePrimary)
	require.NoError(t, err)

	assert.Contains(t, conf, `zone "local.mydomainz.id" IN {`)
	assert.Contains(t, conf, `zone "0.30.172.in-addr.arpa" IN {`)
	assert.Equal(t, 2, strings.Count(conf, "type master;"))
	assert.NotContains(t, conf, "type slave;")

	assert.Contains(t, conf, `file "forward.local.mydomainz.id";`)
	assert.Contains(t, conf, `file "reverse.local.mydomainz.id";`)
	assert.Contains(t, conf, "also-notify { 172.30.0.56; };")
	assert.Contains(t, conf, "notify yes;")
}

func TestRenderNamedConf_Secondary(t *testing.T) {
	dep := config.Default()

	conf, err := RenderNamedConf(dep, RoleSecondary)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(conf, "type slave;"))
	assert.NotContains(t, conf, "type master;")
	assert.Equal(t, 2, strings.Count(conf, "masters { 172.30.0.53; };"))
	assert.Contains(t, conf, `file "slaves/forward.local.mydomainz.id";`)
	assert.Contains(t, conf, `file "slaves/reverse.local.mydomainz.id";`)
}

func TestRenderNamedConf_FixedPreamble(t *testing.T) {
	dep := config.Default()

	for _, role := range []Role{RolePrimary, RoleSecondary} {
		conf, err := RenderNamedConf(dep, role)
		require.NoError(t, err)

		assert.Contains(t, conf, "listen-on port 53 { any; };")
		assert.Contains(t, conf, "listen-on-v6 port 53 { any; };")
		assert.Contains(t, conf, `directory	"/var/named";`)
		assert.Contains(t, conf, "allow-query	{ any; };")
		assert.Contains(t, conf, "allow-transfer	{ 172.30.0.56; };")
		assert.Contains(t, conf, "recursion yes;")
		assert.Contains(t, conf, "dnssec-validation yes;")
		assert.Contains(t, conf, `zone "." IN {`)
		assert.Contains(t, conf, "type hint;")
	}
}

func TestRenderNamedConf_CustomDeployment(t *testing.T) {
	dep := config.Default()
	dep.Domain = "corp.example.net"
	dep.Primary = config.NameServer{Hostname: "ns1.corp.example.net", IP: "10.1.2.3"}
	dep.Secondary = config.NameServer{Hostname: "ns2.corp.example.net", IP: "10.1.2.4"}

	conf, err := RenderNamedConf(dep, RoleSecondary)
	require.NoError(t, err)

	assert.Contains(t, conf, `zone "corp.example.net" IN {`)
	assert.Contains(t, conf, `zone "2.1.10.in-addr.arpa" IN {`)
	assert.Contains(t, conf, "masters { 10.1.2.3; };")
}

package bind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indracloudin/setup-bind9-centos/internal/config"
)

func TestDetectRole(t *testing.T) {
	dep := config.Default()

	role, err := DetectRole("172.30.0.53", dep)
	require.NoError(t, err)
	assert.Equal(t, RolePrimary, role)

	role, err = DetectRole("172.30.0.56", dep)
	require.NoError(t, err)
	assert.Equal(t, RoleSecondary, role)

	_, err = DetectRole("192.168.1.1", dep)
	assert.ErrorIs(t, err, ErrRoleAmbiguous)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"primary", RolePrimary, false},
		{"secondary", RoleSecondary, false},
		{"Primary", "", true},
		{"SECONDARY", "", true},
		{"master", "", true},
		{"", "", true},
		{" primary", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			role, err := ParseRole(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, role)
		})
	}
}

func TestRolePrompter_RepromptsUntilValid(t *testing.T) {
	var out strings.Builder
	p := &RolePrompter{
		In:  strings.NewReader("master\nPrimary\n\nsecondary\n"),
		Out: &out,
	}

	role, err := p.Prompt()
	require.NoError(t, err)
	assert.Equal(t, RoleSecondary, role)

	// Three rejected inputs mean four prompts were printed.
	assert.Equal(t, 4, strings.Count(out.String(), "Role of this host"))
}

func TestRolePrompter_InputClosed(t *testing.T) {
	var out strings.Builder
	p := &RolePrompter{
		In:  strings.NewReader("nonsense\n"),
		Out: &out,
	}

	_, err := p.Prompt()
	assert.Error(t, err)
}

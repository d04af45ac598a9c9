package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFamilySupported(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			"centos",
			"NAME=\"CentOS Linux\"\nID=\"centos\"\nID_LIKE=\"rhel fedora\"\n",
			true,
		},
		{
			"rocky via id_like",
			"ID=\"rocky\"\nID_LIKE=\"rhel centos fedora\"\n",
			true,
		},
		{
			"ubuntu",
			"ID=ubuntu\nID_LIKE=debian\n",
			false,
		},
		{
			"debian no id_like",
			"ID=debian\n",
			false,
		},
		{
			"derivative of rhel only via id_like",
			"ID=myforkos\nID_LIKE=\"rhel\"\n",
			true,
		},
		{
			"empty",
			"",
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := osFamilySupported(tc.content)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestPreflight_NotRoot(t *testing.T) {
	p := NewPreflight()
	p.EUID = func() int { return 1000 }

	err := p.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")
}

func TestPreflight_UnsupportedOS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte("ID=ubuntu\nID_LIKE=debian\n"), 0o644))

	p := NewPreflight()
	p.EUID = func() int { return 0 }
	p.OSReleasePath = path

	err := p.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported OS")
}

func TestPreflight_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte("ID=\"centos\"\nID_LIKE=\"rhel fedora\"\n"), 0o644))

	p := NewPreflight()
	p.EUID = func() int { return 0 }
	p.OSReleasePath = path

	assert.NoError(t, p.Check())
}

func TestPreflight_MissingOSRelease(t *testing.T) {
	p := NewPreflight()
	p.EUID = func() int { return 0 }
	p.OSReleasePath = filepath.Join(t.TempDir(), "absent")

	assert.Error(t, p.Check())
}

package system

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and scripts failures per command name.
type fakeRunner struct {
	calls  []string
	failOn string
	output string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.Contains(call, f.failOn) {
		return []byte(f.output), fmt.Errorf("%s: exit status 1", call)
	}
	return []byte(f.output), nil
}

func (f *fakeRunner) Stream(ctx context.Context, name string, args ...string) error {
	_, err := f.Run(ctx, name, args...)
	return err
}

func TestSystemdManager_Enable(t *testing.T) {
	runner := &fakeRunner{}
	mgr := NewSystemdManager(zerolog.Nop(), runner)

	require.NoError(t, mgr.Enable(context.Background(), "named"))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "systemctl enable named", runner.calls[0])
}

func TestSystemdManager_Restart(t *testing.T) {
	runner := &fakeRunner{}
	mgr := NewSystemdManager(zerolog.Nop(), runner)

	require.NoError(t, mgr.Restart(context.Background(), "named"))
	assert.Equal(t, "systemctl restart named", runner.calls[0])
}

func TestSystemdManager_RestartFailure(t *testing.T) {
	runner := &fakeRunner{failOn: "restart"}
	mgr := NewSystemdManager(zerolog.Nop(), runner)

	assert.Error(t, mgr.Restart(context.Background(), "named"))
}

func TestSystemdManager_Status(t *testing.T) {
	runner := &fakeRunner{output: "active (running)"}
	mgr := NewSystemdManager(zerolog.Nop(), runner)

	status, err := mgr.Status(context.Background(), "named")
	require.NoError(t, err)
	assert.Contains(t, status, "active")
	assert.Equal(t, "systemctl status named --no-pager", runner.calls[0])
}

func TestYumManager_Install(t *testing.T) {
	runner := &fakeRunner{}
	mgr := NewYumManager(zerolog.Nop(), runner)

	require.NoError(t, mgr.Install(context.Background(), "bind", "bind-utils"))
	assert.Equal(t, "yum -y install bind bind-utils", runner.calls[0])
}

func TestYumManager_IsInstalled(t *testing.T) {
	runner := &fakeRunner{}
	mgr := NewYumManager(zerolog.Nop(), runner)

	assert.True(t, mgr.IsInstalled(context.Background(), "bind"))
	assert.Equal(t, "rpm -q bind", runner.calls[0])

	runner.failOn = "rpm -q"
	assert.False(t, mgr.IsInstalled(context.Background(), "bind"))
}

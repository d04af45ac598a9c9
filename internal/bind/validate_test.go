package bind

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts per-command results for validator tests.
type fakeRunner struct {
	calls []string
	errs  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return nil, nil
}

func (f *fakeRunner) Stream(ctx context.Context, name string, args ...string) error {
	_, err := f.Run(ctx, name, args...)
	return err
}

func TestValidator_CheckConf(t *testing.T) {
	runner := &fakeRunner{}
	v := NewValidator(zerolog.Nop(), runner)

	require.NoError(t, v.CheckConf(context.Background(), "/etc/named.conf"))
	assert.Equal(t, "named-checkconf /etc/named.conf", runner.calls[0])
}

func TestValidator_CheckConfFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"named-checkconf": fmt.Errorf("zone error: exit status 1"),
	}}
	v := NewValidator(zerolog.Nop(), runner)

	assert.Error(t, v.CheckConf(context.Background(), "/etc/named.conf"))
}

func TestValidator_CheckZone(t *testing.T) {
	runner := &fakeRunner{}
	v := NewValidator(zerolog.Nop(), runner)

	require.NoError(t, v.CheckZone(context.Background(), "local.mydomainz.id", "/var/named/forward.local.mydomainz.id"))
	assert.Equal(t, "named-checkzone local.mydomainz.id /var/named/forward.local.mydomainz.id", runner.calls[0])
}

func TestValidator_CheckZoneMissingChecker(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"named-checkzone": fmt.Errorf("named-checkzone: %w", exec.ErrNotFound),
	}}
	v := NewValidator(zerolog.Nop(), runner)

	// Checker absence is a warning, not a failure.
	assert.NoError(t, v.CheckZone(context.Background(), "local.mydomainz.id", "zone"))
}

func TestValidator_CheckZoneSyntaxError(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"named-checkzone": fmt.Errorf("dns_rdata_fromtext: near eol: exit status 1"),
	}}
	v := NewValidator(zerolog.Nop(), runner)

	assert.Error(t, v.CheckZone(context.Background(), "local.mydomainz.id", "zone"))
}

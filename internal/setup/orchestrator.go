package setup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/indracloudin/setup-bind9-centos/internal/bind"
	"github.com/indracloudin/setup-bind9-centos/internal/config"
	"github.com/indracloudin/setup-bind9-centos/internal/system"
)

// Packages installed before configuration begins.
var bindPackages = []string{"bind", "bind-utils"}

// ServiceName is the systemd unit this tool manages.
const ServiceName = "named"

// Deps collects the host capabilities the orchestrator drives. Tests
// substitute fakes; production wiring lives in the CLI.
type Deps struct {
	Preflight *system.Preflight
	Packages  system.PackageManager
	Services  system.ServiceManager
	Runner    system.Runner
	Validator *bind.Validator

	// Prompter resolves the ambiguous-role case interactively. Nil means
	// non-interactive: ambiguity is fatal.
	Prompter *bind.RolePrompter

	// ObservedAddress defaults to bind.ObservedAddress.
	ObservedAddress func() (string, error)

	// Now defaults to time.Now; fixed in tests for serial assertions.
	Now func() time.Time
}

// Options adjust a run without changing its fixed step order.
type Options struct {
	// Role preselects the role and skips address detection entirely.
	Role bind.Role

	// SkipInstall leaves the package manager alone, for hosts where BIND
	// is already present.
	SkipInstall bool

	// DryRun renders into a staging directory and validates there; the
	// host is not touched at all.
	DryRun bool

	// Idempotent compares each rendered artifact with what is on disk and
	// only rewrites on change; the service is only restarted when at
	// least one file changed.
	Idempotent bool
}

// Result reports what a run did.
type Result struct {
	Role    bind.Role
	Serial  string
	Changed []string
}

// Orchestrator sequences the full setup flow: preflight, install, role
// detection, rendering, validation, service restart. The first failing step
// aborts the run.
type Orchestrator struct {
	logger zerolog.Logger
	dep    *config.Deployment
	deps   Deps
	opts   Options

	// out carries the write targets. It equals dep except under dry run,
	// where paths are redirected into a staging directory.
	out *config.Deployment
}

// New creates an Orchestrator.
func New(logger zerolog.Logger, dep *config.Deployment, deps Deps, opts Options) *Orchestrator {
	if deps.ObservedAddress == nil {
		deps.ObservedAddress = bind.ObservedAddress
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{
		logger: logger.With().Str("component", "orchestrator").Logger(),
		dep:    dep,
		deps:   deps,
		opts:   opts,
		out:    dep,
	}
}

// Run executes the flow and returns what changed.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	if o.opts.DryRun {
		staging, err := os.MkdirTemp("", "bind9-setup-dryrun-")
		if err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
		staged := *o.dep
		staged.Paths = config.Paths{
			NamedConf:   filepath.Join(staging, "named.conf"),
			NamedBackup: filepath.Join(staging, "named.conf.bak"),
			ZoneDir:     filepath.Join(staging, "named"),
			SlaveDir:    filepath.Join(staging, "named", "slaves"),
		}
		o.out = &staged
		o.logger.Info().Str("dir", staging).Msg("dry run, staging output")
	}

	if !o.opts.DryRun {
		if err := o.deps.Preflight.Check(); err != nil {
			return nil, err
		}
	}

	if !o.opts.DryRun && !o.opts.SkipInstall {
		if err := o.deps.Packages.Install(ctx, bindPackages...); err != nil {
			return nil, fmt.Errorf("install packages: %w", err)
		}
		if err := o.deps.Services.Enable(ctx, ServiceName); err != nil {
			return nil, fmt.Errorf("enable %s: %w", ServiceName, err)
		}
	}

	role, err := o.resolveRole()
	if err != nil {
		return nil, err
	}
	o.logger.Info().Str("role", string(role)).Msg("configuring host")

	result := &Result{Role: role}

	if err := o.backupNamedConf(); err != nil {
		return nil, err
	}

	conf, err := bind.RenderNamedConf(o.dep, role)
	if err != nil {
		return nil, err
	}
	if err := o.writeArtifact(ctx, o.out.Paths.NamedConf, conf, 0o644, false, result); err != nil {
		return nil, err
	}

	if role == bind.RolePrimary {
		if err := o.writeZones(ctx, result); err != nil {
			return nil, err
		}
	} else {
		if err := o.provisionSlaveDir(ctx); err != nil {
			return nil, err
		}
	}

	if err := o.deps.Validator.CheckConf(ctx, o.out.Paths.NamedConf); err != nil {
		return nil, err
	}
	if role == bind.RolePrimary {
		if err := o.deps.Validator.CheckZone(ctx, o.dep.Domain, o.out.ForwardZoneFile()); err != nil {
			return nil, err
		}
		reverseZone, err := o.dep.ReverseZoneName()
		if err != nil {
			return nil, err
		}
		if err := o.deps.Validator.CheckZone(ctx, reverseZone, o.out.ReverseZoneFile()); err != nil {
			return nil, err
		}
	}

	if o.opts.DryRun {
		o.logger.Info().Msg("dry run, not restarting service")
		return result, nil
	}
	if o.opts.Idempotent && len(result.Changed) == 0 {
		o.logger.Info().Msg("nothing changed, not restarting service")
		return result, nil
	}

	if err := o.deps.Services.Restart(ctx, ServiceName); err != nil {
		return nil, fmt.Errorf("restart %s: %w", ServiceName, err)
	}
	status, err := o.deps.Services.Status(ctx, ServiceName)
	if err != nil {
		return nil, fmt.Errorf("status %s: %w", ServiceName, err)
	}
	o.logger.Info().Str("status", firstLine(status)).Msg("service restarted")

	return result, nil
}

// resolveRole applies the precedence: explicit option, address detection,
// interactive prompt. Without a prompter the ambiguous case is fatal so
// unattended runs fail fast instead of blocking on stdin.
func (o *Orchestrator) resolveRole() (bind.Role, error) {
	if o.opts.Role != "" {
		return o.opts.Role, nil
	}

	observed, err := o.deps.ObservedAddress()
	if err != nil {
		return "", fmt.Errorf("detect address: %w", err)
	}
	o.logger.Info().Str("address", observed).Msg("observed host address")

	role, err := bind.DetectRole(observed, o.dep)
	if err == nil {
		return role, nil
	}
	o.logger.Warn().Str("address", observed).Msg("address matches neither nameserver")

	if o.deps.Prompter == nil {
		return "", fmt.Errorf("%w; pass --role in non-interactive mode", err)
	}
	return o.deps.Prompter.Prompt()
}

// backupNamedConf keeps a single-generation copy of the previous
// configuration. Repeated runs overwrite the same backup.
func (o *Orchestrator) backupNamedConf() error {
	data, err := os.ReadFile(o.out.Paths.NamedConf)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read existing config: %w", err)
	}
	if err := os.WriteFile(o.out.Paths.NamedBackup, data, 0o644); err != nil {
		return fmt.Errorf("backup config: %w", err)
	}
	o.logger.Info().Str("path", o.out.Paths.NamedBackup).Msg("backed up existing configuration")
	return nil
}

func (o *Orchestrator) writeZones(ctx context.Context, result *Result) error {
	if err := os.MkdirAll(o.out.Paths.ZoneDir, 0o755); err != nil {
		return fmt.Errorf("create zone dir: %w", err)
	}

	// The serial is read from the live zone file before it is overwritten
	// so the bump policy can see the previous value.
	serial, err := bind.Serial(o.dep.SerialPolicy, o.deps.Now(), o.dep.ForwardZoneFile())
	if err != nil {
		return err
	}
	result.Serial = serial

	forward, err := bind.RenderForwardZone(o.dep, serial)
	if err != nil {
		return err
	}
	reverse, err := bind.RenderReverseZone(o.dep, serial)
	if err != nil {
		return err
	}

	if err := o.writeArtifact(ctx, o.out.ForwardZoneFile(), forward, 0o640, true, result); err != nil {
		return err
	}
	return o.writeArtifact(ctx, o.out.ReverseZoneFile(), reverse, 0o640, true, result)
}

// provisionSlaveDir prepares the directory named populates via zone
// transfer. It is left empty; the primary fills it.
func (o *Orchestrator) provisionSlaveDir(ctx context.Context) error {
	if err := os.MkdirAll(o.out.Paths.SlaveDir, 0o770); err != nil {
		return fmt.Errorf("create slave dir: %w", err)
	}
	if o.opts.DryRun {
		return nil
	}
	return o.chownNamed(ctx, o.out.Paths.SlaveDir)
}

// writeArtifact writes a rendered document, honoring idempotent mode by
// comparing against the current content first. Zone files are additionally
// handed to the named user.
func (o *Orchestrator) writeArtifact(ctx context.Context, path, content string, mode os.FileMode, ownedByNamed bool, result *Result) error {
	if o.opts.Idempotent {
		existing, err := os.ReadFile(path)
		if err == nil && bytes.Equal(existing, []byte(content)) {
			o.logger.Info().Str("path", path).Msg("unchanged")
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	result.Changed = append(result.Changed, path)
	o.logger.Info().Str("path", path).Msg("wrote")

	if ownedByNamed && !o.opts.DryRun {
		return o.chownNamed(ctx, path)
	}
	return nil
}

func (o *Orchestrator) chownNamed(ctx context.Context, path string) error {
	if _, err := o.deps.Runner.Run(ctx, "chown", "named:named", path); err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

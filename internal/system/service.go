package system

import (
	"context"

	"github.com/rs/zerolog"
)

// ServiceManager abstracts system service control so orchestration works the
// same against a real host and a fake in tests.
type ServiceManager interface {
	// Enable marks a service for start at boot.
	Enable(ctx context.Context, unit string) error

	// Restart fully stops and starts a service.
	Restart(ctx context.Context, unit string) error

	// Status returns the service manager's status report for a unit.
	Status(ctx context.Context, unit string) (string, error)
}

// SystemdManager implements ServiceManager using systemctl.
type SystemdManager struct {
	logger zerolog.Logger
	runner Runner
}

// NewSystemdManager creates a ServiceManager backed by systemd.
func NewSystemdManager(logger zerolog.Logger, runner Runner) *SystemdManager {
	return &SystemdManager{
		logger: logger.With().Str("svc_mgr", "systemd").Logger(),
		runner: runner,
	}
}

func (s *SystemdManager) Enable(ctx context.Context, unit string) error {
	s.logger.Info().Str("unit", unit).Msg("enabling service")
	_, err := s.runner.Run(ctx, "systemctl", "enable", unit)
	return err
}

func (s *SystemdManager) Restart(ctx context.Context, unit string) error {
	s.logger.Info().Str("unit", unit).Msg("restarting service")
	_, err := s.runner.Run(ctx, "systemctl", "restart", unit)
	return err
}

func (s *SystemdManager) Status(ctx context.Context, unit string) (string, error) {
	output, err := s.runner.Run(ctx, "systemctl", "status", unit, "--no-pager")
	return string(output), err
}

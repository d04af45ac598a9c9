package bind

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/indracloudin/setup-bind9-centos/internal/system"
)

// Validator wraps the BIND syntax checkers. A failing check aborts the whole
// run; only a missing named-checkzone binary is downgraded to a warning.
type Validator struct {
	logger zerolog.Logger
	runner system.Runner
}

// NewValidator creates a Validator using the given runner.
func NewValidator(logger zerolog.Logger, runner system.Runner) *Validator {
	return &Validator{
		logger: logger.With().Str("component", "validator").Logger(),
		runner: runner,
	}
}

// CheckConf runs named-checkconf against the configuration file. Any
// failure, including a missing checker, is fatal: a config that cannot be
// verified must not reach the service.
func (v *Validator) CheckConf(ctx context.Context, confPath string) error {
	v.logger.Info().Str("path", confPath).Msg("checking configuration syntax")
	if _, err := v.runner.Run(ctx, "named-checkconf", confPath); err != nil {
		return fmt.Errorf("named-checkconf: %w", err)
	}
	return nil
}

// CheckZone runs named-checkzone against a zone file. A missing checker is a
// warning, a reported syntax error is fatal.
func (v *Validator) CheckZone(ctx context.Context, zone, zoneFile string) error {
	v.logger.Info().Str("zone", zone).Str("path", zoneFile).Msg("checking zone syntax")
	if _, err := v.runner.Run(ctx, "named-checkzone", zone, zoneFile); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			v.logger.Warn().Str("zone", zone).Msg("named-checkzone not found, skipping zone validation")
			return nil
		}
		return fmt.Errorf("named-checkzone %s: %w", zone, err)
	}
	return nil
}

package system

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// PackageManager installs OS packages.
type PackageManager interface {
	Install(ctx context.Context, packages ...string) error
	IsInstalled(ctx context.Context, pkg string) bool
}

// YumManager implements PackageManager using yum.
type YumManager struct {
	logger zerolog.Logger
	runner Runner
}

// NewYumManager creates a PackageManager backed by yum.
func NewYumManager(logger zerolog.Logger, runner Runner) *YumManager {
	return &YumManager{
		logger: logger.With().Str("pkg_mgr", "yum").Logger(),
		runner: runner,
	}
}

func (y *YumManager) Install(ctx context.Context, packages ...string) error {
	y.logger.Info().Str("packages", strings.Join(packages, " ")).Msg("installing packages")
	args := append([]string{"-y", "install"}, packages...)
	return y.runner.Stream(ctx, "yum", args...)
}

func (y *YumManager) IsInstalled(ctx context.Context, pkg string) bool {
	_, err := y.runner.Run(ctx, "rpm", "-q", pkg)
	return err == nil
}

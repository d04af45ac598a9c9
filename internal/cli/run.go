package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/indracloudin/setup-bind9-centos/internal/bind"
	"github.com/indracloudin/setup-bind9-centos/internal/config"
	"github.com/indracloudin/setup-bind9-centos/internal/setup"
	"github.com/indracloudin/setup-bind9-centos/internal/system"
)

func newRunCmd() *cobra.Command {
	var (
		roleFlag       string
		skipInstall    bool
		dryRun         bool
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Install and configure this host (procedural, overwrites on every run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dep, logger, err := loadDeployment()
			if err != nil {
				return err
			}

			opts := setup.Options{
				SkipInstall: skipInstall,
				DryRun:      dryRun,
			}
			if roleFlag != "" {
				role, err := bind.ParseRole(roleFlag)
				if err != nil {
					return err
				}
				opts.Role = role
			}

			deps := productionDeps(logger)
			if !nonInteractive {
				deps.Prompter = &bind.RolePrompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			}

			result, err := setup.New(logger, dep, deps, opts).Run(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().
				Str("role", string(result.Role)).
				Str("serial", result.Serial).
				Msg("setup complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&roleFlag, "role", "", "host role (primary or secondary); skips address detection")
	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "assume bind packages are already installed")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render and validate into a staging directory, touch nothing")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "fail instead of prompting when the role is ambiguous")

	return cmd
}

func newApplyCmd() *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge this host to the deployment (idempotent, restart only on change)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dep, logger, err := loadDeployment()
			if err != nil {
				return err
			}

			// Apply is for unattended use: never prompt, never reinstall
			// what is already present.
			opts := setup.Options{Idempotent: true, SkipInstall: installedAlready(cmd, logger)}
			if roleFlag != "" {
				role, err := bind.ParseRole(roleFlag)
				if err != nil {
					return err
				}
				opts.Role = role
			}

			result, err := setup.New(logger, dep, productionDeps(logger), opts).Run(cmd.Context())
			if err != nil {
				return err
			}

			if len(result.Changed) == 0 {
				logger.Info().Msg("already converged")
			} else {
				logger.Info().Strs("changed", result.Changed).Msg("converged")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&roleFlag, "role", "", "host role (primary or secondary); skips address detection")

	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		roleFlag  string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render named.conf and zone files to a directory without touching the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			dep, logger, err := loadDeployment()
			if err != nil {
				return err
			}
			role, err := bind.ParseRole(roleFlag)
			if err != nil {
				return err
			}

			if err := renderTo(dep, role, outputDir); err != nil {
				return err
			}
			logger.Info().Str("dir", outputDir).Str("role", string(role)).Msg("rendered")
			return nil
		},
	}

	cmd.Flags().StringVar(&roleFlag, "role", "", "role to render for (primary or secondary)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

// timeNow is fixed in tests for stable render serials.
var timeNow = time.Now

// productionDeps wires the real host capabilities.
func productionDeps(logger zerolog.Logger) setup.Deps {
	runner := system.NewExecRunner(logger)
	return setup.Deps{
		Preflight: system.NewPreflight(),
		Packages:  system.NewYumManager(logger, runner),
		Services:  system.NewSystemdManager(logger, runner),
		Runner:    runner,
		Validator: bind.NewValidator(logger, runner),
	}
}

// installedAlready probes for the bind package so apply can skip yum when
// there is nothing to install.
func installedAlready(cmd *cobra.Command, logger zerolog.Logger) bool {
	runner := system.NewExecRunner(logger)
	return system.NewYumManager(logger, runner).IsInstalled(cmd.Context(), "bind")
}

// renderTo writes the three artifacts for a role into dir, using the
// current date serial. It never invokes system tools.
func renderTo(dep *config.Deployment, role bind.Role, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	conf, err := bind.RenderNamedConf(dep, role)
	if err != nil {
		return err
	}
	if err := writeRendered(dir, "named.conf", conf); err != nil {
		return err
	}

	if role != bind.RolePrimary {
		return nil
	}

	serial, err := bind.Serial(dep.SerialPolicy, timeNow(), dep.ForwardZoneFile())
	if err != nil {
		return err
	}
	forward, err := bind.RenderForwardZone(dep, serial)
	if err != nil {
		return err
	}
	if err := writeRendered(dir, "forward."+dep.Domain, forward); err != nil {
		return err
	}
	reverse, err := bind.RenderReverseZone(dep, serial)
	if err != nil {
		return err
	}
	return writeRendered(dir, "reverse."+dep.Domain, reverse)
}

func writeRendered(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

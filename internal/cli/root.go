package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/indracloudin/setup-bind9-centos/internal/config"
	"github.com/indracloudin/setup-bind9-centos/internal/logging"
)

var (
	configPath string
	logLevel   string
)

// NewRootCmd builds the bind9-setup command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bind9-setup",
		Short: "Install and configure a BIND 9 nameserver pair on CentOS/RHEL",
		Long: `bind9-setup installs the bind packages, renders named.conf and zone
files for the primary/secondary nameserver pair described in the deployment
file, validates them with named-checkconf/named-checkzone, and restarts the
named service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "deployment YAML file (defaults to the built-in reference deployment)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newApplyCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCheckCmd())

	return root
}

// loadDeployment resolves the deployment parameters and the logger for a
// command invocation.
func loadDeployment() (*config.Deployment, zerolog.Logger, error) {
	dep := config.Default()
	if configPath != "" {
		var err error
		dep, err = config.Load(configPath)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
	}

	level := dep.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return dep, logging.NewLogger(level), nil
}

// Execute runs the CLI and returns the process exit code. Every failure
// class maps to 1.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

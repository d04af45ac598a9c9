package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/indracloudin/setup-bind9-centos/internal/diag"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Query both nameservers and compare their answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			dep, logger, err := loadDeployment()
			if err != nil {
				return err
			}

			report, err := diag.NewChecker(logger).Check(cmd.Context(), dep)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, sr := range []diag.ServerReport{report.Primary, report.Secondary} {
				fmt.Fprintf(out, "%s (%s)\n", sr.Server, sr.Address)
				fmt.Fprintf(out, "  serial:  %d\n", sr.Serial)
				fmt.Fprintf(out, "  ns:      %v\n", sr.NSNames)
				fmt.Fprintf(out, "  service: %v\n", sr.ServiceAddrs)
				fmt.Fprintf(out, "  www:     %s\n", sr.WWWTarget)
				for _, e := range sr.Errors {
					fmt.Fprintf(out, "  error:   %s\n", e)
				}
			}

			if !report.InSync() {
				return fmt.Errorf("nameservers are not in sync")
			}
			fmt.Fprintln(out, "nameservers are in sync")
			return nil
		},
	}
	return cmd
}

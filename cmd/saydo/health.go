package main

import (
	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the automation daemon, tesseract, Chrome and the whitelist",
		Long: `Run every health check concurrently. The automation daemon is critical:
when it is down the report is unhealthy and the exit status is 1. Missing
tesseract or Chrome only degrades the report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			rep := a.checker().Run(cmd.Context())
			if jsonOut {
				if err := printJSON(cmd, rep); err != nil {
					return err
				}
			} else {
				renderer(cmd).Health(rep)
			}
			if !rep.OK() {
				return exitCode(1)
			}
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivlev/alertkit/internal/logging"
)

func Execute(version string) {
	os.Exit(execute(newRootCmd(version)))
}

// execute runs cmd and reports a failure on a single "[-]" line.
func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[-] %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(version string) *cobra.Command {
	var logLevel, logFormat string

	cmd := &cobra.Command{
		Use:           "alertkit",
		Short:         "Countdown banner generator and image upload service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if cmd.Name() != "serve" {
				logging.InitLogger(logLevel, logFormat)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json")

	cmd.AddCommand(generateCmd(version))
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(configCmd())
	return cmd
}

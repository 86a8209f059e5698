package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/alertkit/internal/config"
)

func configCmd() *cobra.Command {
	var output string

	c := &cobra.Command{
		Use:   "config",
		Short: "Print the default job file, or write it with --output",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if output != "" {
				if err := config.Write(cfg, output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[+++] Job file written: %s\n", output)
				return nil
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	c.Flags().StringVarP(&output, "output", "o", "", "Write the job file to this path instead of stdout")
	return c
}

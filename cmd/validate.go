package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/filter"
)

func newValidateCmd(_ *options) *cobra.Command {
	var file string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file without capturing anything.

The capture filter, if any, is compiled as well.

Examples:
  layerspy validate -f /etc/layerspy/config.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(file)
			if err != nil {
				return fmt.Errorf("INVALID: %w", err)
			}
			f, err := filter.Compile(cfg.Capture.Filter)
			if err != nil {
				return fmt.Errorf("INVALID: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "VALID: engine=%s interface=%s format=%s filter=%q\n",
				cfg.Capture.Engine, cfg.Capture.Interface, cfg.Output.Format, f.String())
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&file, "file", "f", "", "configuration file to validate (required)")
	validateCmd.MarkFlagRequired("file")
	return validateCmd
}

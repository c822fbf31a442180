package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/layerspy/internal/log"
	"firestige.xyz/layerspy/internal/source"
)

func newReadCmd(opts *options) *cobra.Command {
	var file string

	readCmd := &cobra.Command{
		Use:   "read",
		Short: "Decode every packet of a capture file",
		Long: `Decode every packet of a pcap or pcapng capture file.

The format is detected from the file magic. Only Ethernet captures are
supported.

Examples:
  layerspy read -r trace.pcap
  layerspy read -r trace.pcapng --filter "tcp and port 80" --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			src, err := source.OpenFile(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer src.Close()

			log.GetLogger().WithFields(map[string]interface{}{
				"file":   file,
				"format": src.Format(),
			}).Debug("reading capture file")

			_, err = runPipeline(cmd.Context(), cmd, cfg, src)
			return err
		},
	}

	readCmd.Flags().StringVarP(&file, "file", "r", "", "capture file to read (required)")
	readCmd.MarkFlagRequired("file")
	addOutputFlags(readCmd.Flags(), opts, true)
	return readCmd
}

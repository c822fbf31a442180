package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/layerspy/internal/log"
	"firestige.xyz/layerspy/internal/metrics"
	"firestige.xyz/layerspy/internal/source/live"
)

func newCaptureCmd(opts *options) *cobra.Command {
	var iface string

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Decode live traffic from a network interface",
		Long: `Decode live traffic from a network interface until interrupted.

The capture engine (pcap or afpacket) and ring sizing come from the config
file. A filter is installed in the kernel and checked again in userspace.

Examples:
  layerspy capture -i eth0
  layerspy capture -i eth0 --filter "udp or icmp" --count 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interface") {
				cfg.Capture.Interface = iface
			}

			src, err := live.Open(cfg.Capture)
			if err != nil {
				return err
			}
			defer src.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.GetLogger().WithFields(map[string]interface{}{
				"interface": cfg.Capture.Interface,
				"engine":    cfg.Capture.Engine,
				"filter":    cfg.Capture.Filter,
			}).Info("capture started")

			_, runErr := runPipeline(ctx, cmd, cfg, src)
			reportDrops(src)
			return runErr
		},
	}

	captureCmd.Flags().StringVarP(&iface, "interface", "i", "eth0", "network interface to capture on")
	addOutputFlags(captureCmd.Flags(), opts, true)
	return captureCmd
}

// reportDrops logs the kernel counters and feeds drops into the metrics.
func reportDrops(src live.StatsSource) {
	st, err := src.Stats()
	if err != nil {
		log.GetLogger().WithError(err).Warn("failed to read capture statistics")
		return
	}
	metrics.Default.Dropped(st.Dropped)
	log.GetLogger().WithFields(map[string]interface{}{
		"received": st.Received,
		"dropped":  st.Dropped,
	}).Info("capture stopped")
}

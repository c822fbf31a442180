// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/log"
)

// options holds the flag values shared by the subcommands.
type options struct {
	configFile string
	logLevel   string

	filter  string
	count   int
	format  string
	hexdump bool
}

// NewRootCommand builds the layerspy command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "layerspy",
		Short: "LayerSpy - layered packet decoder",
		Long: `LayerSpy decodes raw Ethernet frames into a tree of protocol headers:
Ethernet II, IPv4/IPv6, TCP/UDP/ICMP and HTTP.

Packets come from a pcap/pcapng file, a live interface, or a hex string on
the command line. Decoded trees are printed as text, JSON or YAML.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"config file path (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level: trace/debug/info/warn/error")

	rootCmd.AddCommand(newReadCmd(opts))
	rootCmd.AddCommand(newCaptureCmd(opts))
	rootCmd.AddCommand(newDecodeCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return NewRootCommand().Execute()
}

// addOutputFlags registers the flags that override the capture and output
// sections of the config.
func addOutputFlags(flags *pflag.FlagSet, opts *options, withCapture bool) {
	flags.StringVar(&opts.format, "format", config.FormatText, "output format: text/json/yaml")
	flags.BoolVar(&opts.hexdump, "hexdump", false, "append a hex dump of every frame")
	if withCapture {
		flags.StringVar(&opts.filter, "filter", "",
			`capture filter, e.g. "tcp and port 80 or icmp"`)
		flags.IntVar(&opts.count, "count", 0, "stop after this many matching packets (0 = unlimited)")
	}
}

// loadConfig loads the config file, applies the command line overrides and
// initializes logging.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("filter") {
		cfg.Capture.Filter = o.filter
	}
	if flags.Changed("count") {
		cfg.Capture.Count = o.count
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("hexdump") {
		cfg.Output.Hexdump = o.hexdump
	}
	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, err
	}

	if err := log.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

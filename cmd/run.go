package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/filter"
	"firestige.xyz/layerspy/internal/log"
	"firestige.xyz/layerspy/internal/metrics"
	"firestige.xyz/layerspy/internal/pipeline"
	"firestige.xyz/layerspy/internal/sink/console"
	"firestige.xyz/layerspy/internal/source"
)

// runPipeline decodes src into the command's stdout and prints a summary
// line on stderr.
func runPipeline(ctx context.Context, cmd *cobra.Command, cfg *config.Config, src source.Source) (pipeline.Stats, error) {
	f, err := filter.Compile(cfg.Capture.Filter)
	if err != nil {
		return pipeline.Stats{}, err
	}
	if f != nil {
		sizes, err := programSizes(f)
		if err != nil {
			return pipeline.Stats{}, err
		}
		log.GetLogger().WithFields(map[string]interface{}{
			"filter":   f.String(),
			"programs": sizes,
		}).Debug("capture filter compiled")
	}
	sink, err := console.New(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.Hexdump)
	if err != nil {
		return pipeline.Stats{}, err
	}

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path, nil)
		if err := srv.Start(ctx); err != nil {
			return pipeline.Stats{}, err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				log.GetLogger().WithError(err).Warn("metrics server stop failed")
			}
		}()
	}

	p, err := pipeline.NewBuilder().
		WithSource(src).
		WithFilter(f).
		WithSink(sink).
		WithMetrics(metrics.Default).
		WithCount(cfg.Capture.Count).
		Build()
	if err != nil {
		return pipeline.Stats{}, err
	}

	stats, err := p.Run(ctx)
	log.GetLogger().WithFields(map[string]interface{}{
		"handed":   stats.Written(),
		"rendered": sink.Written(),
	}).Debug("pipeline finished")
	fmt.Fprintf(cmd.ErrOrStderr(), "%d packets read, %d filtered, %d decoded, %d truncated\n",
		stats.Read, stats.Filtered, stats.Decoded, stats.Truncated)
	return stats, err
}

// programSizes maps each primitive of f to its BPF instruction count.
func programSizes(f *filter.Filter) (map[string]int, error) {
	sizes := make(map[string]int)
	for _, term := range f.Primitives() {
		for _, name := range term {
			raw, err := filter.Assemble(name)
			if err != nil {
				return nil, err
			}
			sizes[name] = len(raw)
		}
	}
	return sizes, nil
}

// Package live opens packet sources on network interfaces.
package live

import (
	"fmt"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/core"
	"firestige.xyz/layerspy/internal/log"
	"firestige.xyz/layerspy/internal/source"
)

// Stats are the kernel-side counters of a live source.
type Stats struct {
	Received uint64
	Dropped  uint64
}

// StatsSource is implemented by sources that expose kernel counters.
type StatsSource interface {
	source.Source
	Stats() (Stats, error)
}

// Open starts capturing on cfg.Interface with the configured engine. A
// non-empty cfg.Filter is installed in the kernel as well; its grammar is a
// subset of pcap-filter(7).
func Open(cfg config.CaptureConfig) (StatsSource, error) {
	if cfg.Interface == "" {
		return nil, fmt.Errorf("%w: capture interface is required", core.ErrConfigInvalid)
	}
	log.GetLogger().WithFields(map[string]interface{}{
		"engine":    cfg.Engine,
		"interface": cfg.Interface,
		"snap_len":  cfg.SnapLen,
	}).Debug("opening live source")

	switch cfg.Engine {
	case "", config.EnginePcap:
		src, err := OpenPcap(cfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.EngineAFPacket:
		src, err := OpenAFPacket(cfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: unknown capture engine %q", core.ErrConfigInvalid, cfg.Engine)
	}
}

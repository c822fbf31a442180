//go:build !linux

package live

import (
	"fmt"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/core"
)

// AFPacket is unavailable off Linux.
type AFPacket struct{ StatsSource }

// OpenAFPacket always fails off Linux.
func OpenAFPacket(cfg config.CaptureConfig) (*AFPacket, error) {
	return nil, fmt.Errorf("%w: the afpacket engine requires linux", core.ErrConfigInvalid)
}

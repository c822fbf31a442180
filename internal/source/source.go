// Package source provides packet sources that feed the decoder.
package source

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Source yields link-layer frames. Every returned slice is owned by the
// caller.
type Source interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
	Close() error
}

// ErrTimeout is returned by live sources when a read timed out with no
// packet. Callers retry.
var ErrTimeout = errors.New("layerspy: read timeout")

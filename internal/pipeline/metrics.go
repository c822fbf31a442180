package pipeline

import (
	"sync/atomic"
)

// counters are the per-run packet counters.
type counters struct {
	read      atomic.Uint64
	filtered  atomic.Uint64
	decoded   atomic.Uint64
	truncated atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Read:      c.read.Load(),
		Filtered:  c.filtered.Load(),
		Decoded:   c.decoded.Load(),
		Truncated: c.truncated.Load(),
	}
}

// Stats represents pipeline statistics. Every read packet is either
// filtered, decoded or truncated, except those still queued when the run
// was cancelled.
type Stats struct {
	Read      uint64
	Filtered  uint64
	Decoded   uint64
	Truncated uint64
}

// Written returns the number of packets handed to the sink.
func (s Stats) Written() uint64 { return s.Decoded + s.Truncated }

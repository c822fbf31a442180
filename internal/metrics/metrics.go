// Package metrics implements Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/layerspy/internal/core"
)

// Packet results.
const (
	ResultDecoded   = "decoded"
	ResultTruncated = "truncated"
	ResultFiltered  = "filtered"
)

// Metrics holds the decode counters.
type Metrics struct {
	// PacketsTotal counts packets by result
	PacketsTotal *prometheus.CounterVec

	// LayersTotal counts decoded layers by name
	LayersTotal *prometheus.CounterVec

	// RawBytesTotal counts bytes left undecoded below the innermost layer
	RawBytesTotal prometheus.Counter

	// DecodeSeconds measures per-packet decode latency
	DecodeSeconds prometheus.Histogram

	// CaptureDropsTotal counts packets the kernel dropped
	CaptureDropsTotal prometheus.Counter
}

// Default is registered with the default Prometheus registerer.
var Default = New(prometheus.DefaultRegisterer)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PacketsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layerspy_packets_total",
				Help: "Total number of packets by decode result",
			},
			[]string{"result"},
		),
		LayersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layerspy_layers_total",
				Help: "Total number of decoded protocol layers",
			},
			[]string{"layer"},
		),
		RawBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "layerspy_raw_bytes_total",
				Help: "Total number of payload bytes no parser consumed",
			},
		),
		DecodeSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "layerspy_decode_seconds",
				Help:    "Latency of decoding one packet in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0000001, 2, 20), // 100ns to ~50ms
			},
		),
		CaptureDropsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "layerspy_capture_drops_total",
				Help: "Total number of packets dropped by the kernel",
			},
		),
	}
}

// Observe records one decoded tree. A nil root counts as truncated.
func (m *Metrics) Observe(root core.Layer, d time.Duration) {
	m.DecodeSeconds.Observe(d.Seconds())
	if root == nil {
		m.PacketsTotal.WithLabelValues(ResultTruncated).Inc()
		return
	}
	m.PacketsTotal.WithLabelValues(ResultDecoded).Inc()
	core.Walk(root, func(l core.Layer) bool {
		m.LayersTotal.WithLabelValues(l.Name()).Inc()
		return true
	})
	if inner := core.Innermost(root); inner != nil {
		m.RawBytesTotal.Add(float64(len(inner.Raw())))
	}
}

// Filtered records a packet rejected by the capture filter.
func (m *Metrics) Filtered() {
	m.PacketsTotal.WithLabelValues(ResultFiltered).Inc()
}

// Dropped adds kernel drops.
func (m *Metrics) Dropped(n uint64) {
	if n > 0 {
		m.CaptureDropsTotal.Add(float64(n))
	}
}

package pipeline

import (
	"firestige.xyz/layerspy/internal/core/decoder"
	"firestige.xyz/layerspy/internal/filter"
	"firestige.xyz/layerspy/internal/metrics"

	"github.com/google/gopacket"
)

// Builder provides a fluent interface for building pipelines.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			BufferSize: defaultBufferSize,
		},
	}
}

// WithSource sets the packet source.
func (b *Builder) WithSource(src gopacket.PacketDataSource) *Builder {
	b.config.Source = src
	return b
}

// WithFilter sets the capture filter. A nil filter passes every frame.
func (b *Builder) WithFilter(f *filter.Filter) *Builder {
	b.config.Filter = f
	return b
}

// WithDecoder sets the packet decoder.
func (b *Builder) WithDecoder(d decoder.Decoder) *Builder {
	b.config.Decoder = d
	return b
}

// WithSink sets the output sink.
func (b *Builder) WithSink(s Sink) *Builder {
	b.config.Sink = s
	return b
}

// WithMetrics sets the Prometheus collectors to update.
func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.config.Metrics = m
	return b
}

// WithCount stops the run after n packets pass the filter. Zero means
// unlimited.
func (b *Builder) WithCount(n int) *Builder {
	b.config.Count = n
	return b
}

// WithBufferSize sets the raw packet channel buffer size.
func (b *Builder) WithBufferSize(size int) *Builder {
	b.config.BufferSize = size
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	return New(b.config)
}

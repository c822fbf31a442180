// Package pipeline moves packets from a source through the filter and the
// decoder into a sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/gopacket"

	"firestige.xyz/layerspy/internal/core"
	"firestige.xyz/layerspy/internal/core/decoder"
	"firestige.xyz/layerspy/internal/filter"
	"firestige.xyz/layerspy/internal/log"
	"firestige.xyz/layerspy/internal/metrics"
	"firestige.xyz/layerspy/internal/source"
)

const defaultBufferSize = 1024

// Sink receives every packet that passed the filter. root is nil for frames
// too short to decode.
type Sink interface {
	Write(n int, ci gopacket.CaptureInfo, data []byte, root core.Layer) error
}

// Config contains pipeline configuration.
type Config struct {
	Source     gopacket.PacketDataSource
	Filter     *filter.Filter
	Decoder    decoder.Decoder // defaults to the standard decoder
	Sink       Sink
	Metrics    *metrics.Metrics // optional
	Count      int              // stop after this many packets pass the filter, 0 for no limit
	BufferSize int              // raw packet channel buffer size
}

type rawPacket struct {
	data []byte
	ci   gopacket.CaptureInfo
}

// Pipeline is a two-goroutine capture and decode chain. A Pipeline runs
// once.
type Pipeline struct {
	source  gopacket.PacketDataSource
	filter  *filter.Filter
	decoder decoder.Decoder
	sink    Sink
	metrics *metrics.Metrics
	count   int
	bufSize int

	counters counters
	once     sync.Once
}

// New creates a new pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("%w: pipeline requires a source", core.ErrConfigInvalid)
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("%w: pipeline requires a sink", core.ErrConfigInvalid)
	}
	if cfg.Count < 0 {
		return nil, fmt.Errorf("%w: negative packet count %d", core.ErrConfigInvalid, cfg.Count)
	}
	if cfg.Decoder == nil {
		cfg.Decoder = decoder.NewStandardDecoder()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	return &Pipeline{
		source:  cfg.Source,
		filter:  cfg.Filter,
		decoder: cfg.Decoder,
		sink:    cfg.Sink,
		metrics: cfg.Metrics,
		count:   cfg.Count,
		bufSize: cfg.BufferSize,
	}, nil
}

// Run reads until the source is exhausted, ctx is cancelled or Count
// packets were written. Cancellation is not an error.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	err := errors.New("pipeline already ran")
	p.once.Do(func() { err = p.run(ctx) })
	return p.counters.snapshot(), err
}

func (p *Pipeline) run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	log.GetLogger().WithFields(map[string]interface{}{
		"filter": p.filter.String(),
		"count":  p.count,
	}).Debug("pipeline starting")

	packets := make(chan rawPacket, p.bufSize)
	var (
		wg         sync.WaitGroup
		captureErr error
		processErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(packets)
		captureErr = p.captureLoop(ctx, packets)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		processErr = p.processLoop(ctx, packets)
		// Unblocks the capture loop when processing ends first.
		cancel()
	}()

	wg.Wait()

	st := p.counters.snapshot()
	log.GetLogger().WithFields(map[string]interface{}{
		"read":      st.Read,
		"filtered":  st.Filtered,
		"decoded":   st.Decoded,
		"truncated": st.Truncated,
	}).Debug("pipeline stopped")

	if processErr != nil {
		return processErr
	}
	return captureErr
}

// captureLoop reads packets from the source into the processing channel.
func (p *Pipeline) captureLoop(ctx context.Context, out chan<- rawPacket) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		data, ci, err := p.source.ReadPacketData()
		switch {
		case err == nil:
		case errors.Is(err, source.ErrTimeout):
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read packet: %w", err)
		}
		p.counters.read.Add(1)

		select {
		case out <- rawPacket{data: data, ci: ci}:
		case <-ctx.Done():
			return nil
		}
	}
}

// processLoop is the main processing loop.
func (p *Pipeline) processLoop(ctx context.Context, in <-chan rawPacket) error {
	written := 0
	for {
		select {
		case <-ctx.Done():
			return nil

		case raw, ok := <-in:
			if !ok {
				return nil
			}
			if !p.filter.Match(raw.data) {
				p.counters.filtered.Add(1)
				if p.metrics != nil {
					p.metrics.Filtered()
				}
				continue
			}

			written++
			if err := p.processPacket(written, raw); err != nil {
				return err
			}
			if p.count > 0 && written >= p.count {
				return nil
			}
		}
	}
}

// processPacket decodes one frame and hands it to the sink.
func (p *Pipeline) processPacket(n int, raw rawPacket) error {
	start := time.Now()
	root := p.decoder.Decode(raw.data)
	elapsed := time.Since(start)

	if root == nil {
		p.counters.truncated.Add(1)
		log.GetLogger().WithField("length", len(raw.data)).Trace("frame too short for ethernet")
	} else {
		p.counters.decoded.Add(1)
	}
	if p.metrics != nil {
		p.metrics.Observe(root, elapsed)
	}

	if err := p.sink.Write(n, raw.ci, raw.data, root); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	return nil
}

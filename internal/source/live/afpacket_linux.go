//go:build linux

package live

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/core"
	"firestige.xyz/layerspy/internal/source"
)

// AFPacket captures from a TPACKET_V3 memory-mapped ring.
type AFPacket struct {
	handle *afpacket.TPacket
	once   sync.Once
}

// OpenAFPacket opens a raw socket ring on cfg.Interface, sized from
// cfg.BufferSizeMB and cfg.SnapLen.
func OpenAFPacket(cfg config.CaptureConfig) (*AFPacket, error) {
	ring, err := computeRing(cfg.BufferSizeMB, cfg.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, err
	}

	opts := []interface{}{
		afpacket.OptInterface(cfg.Interface),
		afpacket.OptFrameSize(ring.frameSize),
		afpacket.OptBlockSize(ring.blockSize),
		afpacket.OptNumBlocks(ring.numBlocks),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	}
	if cfg.Timeout > 0 {
		opts = append(opts, afpacket.OptPollTimeout(cfg.Timeout))
	}
	tp, err := afpacket.NewTPacket(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open ring on %s: %w", cfg.Interface, err)
	}

	if cfg.Filter != "" {
		if err := setKernelFilter(tp, ring.frameSize, cfg.Filter); err != nil {
			tp.Close()
			return nil, err
		}
	}
	return &AFPacket{handle: tp}, nil
}

// setKernelFilter compiles expr with libpcap and attaches it to the socket.
func setKernelFilter(tp *afpacket.TPacket, snapLen int, expr string) error {
	pcapBPF, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snapLen, expr)
	if err != nil {
		return fmt.Errorf("%w: kernel filter %q: %v", core.ErrConfigInvalid, expr, err)
	}
	rawBPF := make([]bpf.RawInstruction, len(pcapBPF))
	for i, inst := range pcapBPF {
		rawBPF[i] = bpf.RawInstruction{
			Op: inst.Code,
			Jt: inst.Jt,
			Jf: inst.Jf,
			K:  inst.K,
		}
	}
	return tp.SetBPF(rawBPF)
}

// ReadPacketData implements gopacket.PacketDataSource. The returned slice
// is a copy of the ring slot.
func (s *AFPacket) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		if errors.Is(err, afpacket.ErrTimeout) {
			return nil, ci, source.ErrTimeout
		}
		return nil, ci, err
	}
	return data, ci, nil
}

// LinkType is always Ethernet for a raw AF_PACKET socket.
func (s *AFPacket) LinkType() layers.LinkType { return layers.LinkTypeEthernet }

// Stats implements StatsSource.
func (s *AFPacket) Stats() (Stats, error) {
	_, v3, err := s.handle.SocketStats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Received: uint64(v3.Packets()), Dropped: uint64(v3.Drops())}, nil
}

func (s *AFPacket) Close() error {
	s.once.Do(s.handle.Close)
	return nil
}

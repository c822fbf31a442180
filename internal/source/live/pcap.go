package live

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/core"
	"firestige.xyz/layerspy/internal/source"
)

// Pcap captures through libpcap.
type Pcap struct {
	handle *pcap.Handle
	once   sync.Once
}

// OpenPcap opens cfg.Interface with pcap.OpenLive. A zero timeout blocks
// until a packet arrives.
func OpenPcap(cfg config.CaptureConfig) (*Pcap, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pcap.BlockForever
	}
	handle, err := pcap.OpenLive(cfg.Interface, int32(cfg.SnapLen), cfg.Promiscuous, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open interface %s: %w", cfg.Interface, err)
	}

	if lt := handle.LinkType(); lt != layers.LinkTypeEthernet {
		handle.Close()
		return nil, fmt.Errorf("%w: %s has link type %s", core.ErrUnsupportedLink, cfg.Interface, lt)
	}

	if cfg.Filter != "" {
		if err := handle.SetBPFFilter(cfg.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("%w: kernel filter %q: %v", core.ErrConfigInvalid, cfg.Filter, err)
		}
	}

	return &Pcap{handle: handle}, nil
}

// ReadPacketData implements gopacket.PacketDataSource. A read timeout is
// reported as source.ErrTimeout.
func (p *Pcap) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := p.handle.ReadPacketData()
	if err != nil {
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			return nil, ci, source.ErrTimeout
		}
		return nil, ci, err
	}
	return data, ci, nil
}

func (p *Pcap) LinkType() layers.LinkType { return p.handle.LinkType() }

// Stats implements StatsSource.
func (p *Pcap) Stats() (Stats, error) {
	st, err := p.handle.Stats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Received: uint64(st.PacketsReceived), Dropped: uint64(st.PacketsDropped)}, nil
}

func (p *Pcap) Close() error {
	p.once.Do(p.handle.Close)
	return nil
}

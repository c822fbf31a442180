package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/layerspy/internal/core"
)

// File formats recognized by magic number.
const (
	FormatPcap   = "pcap"
	FormatPcapNG = "pcapng"
)

const (
	magicPcapMicros uint32 = 0xa1b2c3d4
	magicPcapNanos  uint32 = 0xa1b23c4d
	magicPcapNG     uint32 = 0x0a0d0d0a
)

type packetReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// File reads frames from a pcap or pcapng capture.
type File struct {
	path   string
	format string
	closer io.Closer
	reader packetReader

	mu     sync.Mutex
	closed bool
}

// OpenFile opens a capture file, detecting the format from its magic number.
// Captures whose link type is not Ethernet are rejected.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file %s: %w", path, err)
	}
	src, err := NewFileReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.path = path
	src.closer = f
	return src, nil
}

// NewFileReader reads a capture from r. Close does not close r.
func NewFileReader(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read magic: %v", core.ErrUnsupportedFormat, err)
	}

	src := &File{}
	switch {
	case isPcapMagic(magic):
		rd, err := pcapgo.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read pcap header: %w", err)
		}
		src.format, src.reader = FormatPcap, rd
	case binary.BigEndian.Uint32(magic) == magicPcapNG:
		rd, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to read pcapng header: %w", err)
		}
		src.format, src.reader = FormatPcapNG, rd
	default:
		return nil, fmt.Errorf("%w: magic % x", core.ErrUnsupportedFormat, magic)
	}

	if lt := src.reader.LinkType(); lt != layers.LinkTypeEthernet {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedLink, lt)
	}
	return src, nil
}

// isPcapMagic accepts microsecond and nanosecond magic in either byte order.
func isPcapMagic(b []byte) bool {
	for _, m := range []uint32{binary.BigEndian.Uint32(b), binary.LittleEndian.Uint32(b)} {
		if m == magicPcapMicros || m == magicPcapNanos {
			return true
		}
	}
	return false
}

// ReadPacketData implements gopacket.PacketDataSource. It returns io.EOF at
// the end of the capture.
func (s *File) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, gopacket.CaptureInfo{}, core.ErrSourceClosed
	}

	data, ci, err := s.reader.ReadPacketData()
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, gopacket.CaptureInfo{}, io.EOF
		}
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("failed to read packet: %w", err)
	}
	return data, ci, nil
}

// LinkType reports the capture's link type.
func (s *File) LinkType() layers.LinkType { return s.reader.LinkType() }

// Format reports "pcap" or "pcapng".
func (s *File) Format() string { return s.format }

// Path is "" for readers built by NewFileReader.
func (s *File) Path() string { return s.path }

// Close releases the file. It is idempotent.
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

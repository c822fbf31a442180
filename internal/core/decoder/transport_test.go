package decoder

import (
	"bytes"
	"errors"
	"testing"

	"firestige.xyz/layerspy/internal/core"
)

func TestDecodeTCPBasic(t *testing.T) {
	data := []byte{
		0x04, 0xD2, // Src Port: 1234
		0x01, 0xBB, // Dst Port: 443
		0x00, 0x00, 0x00, 0x01, // Seq Num: 1
		0x00, 0x00, 0x00, 0x02, // Ack Num: 2
		0x50,       // Data Offset: 5 (20 bytes)
		0x18,       // Flags: ACK + PSH
		0x20, 0x00, // Window Size: 8192
		0x12, 0x34, // Checksum
		0x00, 0x00, // Urgent Pointer
		0x16, 0x03, 0x01, 0x00, // Payload: TLS record
	}

	l, err := decodeTCP(newView(data))
	if err != nil {
		t.Fatalf("decodeTCP failed: %v", err)
	}
	tcp := l.(*core.TCP)

	if tcp.SrcPort != 1234 {
		t.Errorf("Expected src port 1234, got %d", tcp.SrcPort)
	}
	if tcp.DstPort != 443 {
		t.Errorf("Expected dst port 443, got %d", tcp.DstPort)
	}
	if tcp.Seq != 1 || tcp.Ack != 2 {
		t.Errorf("Expected seq 1 ack 2, got seq %d ack %d", tcp.Seq, tcp.Ack)
	}
	if tcp.HeaderLen() != 20 {
		t.Errorf("Expected header length 20, got %d", tcp.HeaderLen())
	}
	if !tcp.ACK || !tcp.PSH || tcp.SYN || tcp.FIN || tcp.RST {
		t.Errorf("Expected ACK|PSH, got %s", tcp.FlagString())
	}
	if tcp.FlagString() != "ACK|PSH" {
		t.Errorf("Expected flag string ACK|PSH, got %s", tcp.FlagString())
	}
	if tcp.Window != 8192 {
		t.Errorf("Expected window 8192, got %d", tcp.Window)
	}
	if tcp.Checksum != 0x1234 {
		t.Errorf("Expected checksum 0x1234, got 0x%04x", tcp.Checksum)
	}
	if tcp.IsHTTPCandidate() {
		t.Error("Port 443 must not be an HTTP candidate")
	}
	if tcp.Child() != nil {
		t.Errorf("Expected no child, got %s", tcp.Child().Name())
	}
	if !bytes.Equal(tcp.Raw(), []byte{0x16, 0x03, 0x01, 0x00}) {
		t.Errorf("Expected raw payload, got % x", tcp.Raw())
	}
}

func TestDecodeTCPFlags(t *testing.T) {
	tests := []struct {
		name    string
		b12     byte
		b13     byte
		want    string
		synOnly bool
	}{
		{"syn", 0x50, 0x02, "SYN", true},
		{"syn ack", 0x50, 0x12, "ACK|SYN", false},
		{"fin ack", 0x50, 0x11, "ACK|FIN", false},
		{"rst", 0x50, 0x04, "RST", false},
		{"ecn syn", 0x51, 0xC2, "NS|CWR|ECE|SYN", true},
		{"all", 0x51, 0xFF, "NS|CWR|ECE|URG|ACK|PSH|RST|SYN|FIN", false},
		{"none", 0x50, 0x00, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tcpHeader(1000, 2000)
			data[12], data[13] = tt.b12, tt.b13

			l, err := decodeTCP(newView(data))
			if err != nil {
				t.Fatalf("decodeTCP failed: %v", err)
			}
			tcp := l.(*core.TCP)
			if got := tcp.FlagString(); got != tt.want {
				t.Errorf("Expected flags %q, got %q", tt.want, got)
			}
			if tcp.IsSYNOnly() != tt.synOnly {
				t.Errorf("Expected IsSYNOnly=%v", tt.synOnly)
			}
		})
	}
}

func TestDecodeTCPWithOptions(t *testing.T) {
	data := tcpHeader(1000, 2000)
	data[12] = 0x60 // Data Offset: 6
	data = append(data, 0x02, 0x04, 0x05, 0xB4) // MSS 1460
	data = append(data, 0xAA)

	l, err := decodeTCP(newView(data))
	if err != nil {
		t.Fatalf("decodeTCP failed: %v", err)
	}
	tcp := l.(*core.TCP)

	if tcp.HeaderLen() != 24 {
		t.Errorf("Expected header length 24, got %d", tcp.HeaderLen())
	}
	if !bytes.Equal(tcp.Options, []byte{0x02, 0x04, 0x05, 0xB4}) {
		t.Errorf("Expected MSS option, got % x", tcp.Options)
	}
	if !bytes.Equal(tcp.Raw(), []byte{0xAA}) {
		t.Errorf("Expected raw payload aa, got % x", tcp.Raw())
	}
}

func TestDecodeTCPErrors(t *testing.T) {
	badOffset := tcpHeader(1, 2)
	badOffset[12] = 0x40

	truncated := tcpHeader(1, 2)
	truncated[12] = 0x80 // 32 bytes claimed

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"too short", []byte{0x00, 0x50, 0x00}, core.ErrPacketTooShort},
		{"data offset below minimum", badOffset, core.ErrMalformed},
		{"options truncated", truncated, core.ErrPacketTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeTCP(newView(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeTCPHTTPPorts(t *testing.T) {
	request := []byte("GET / HTTP/1.1\r\nHost: a\r\n\r\n")

	for _, ports := range [][2]uint16{{80, 40000}, {40000, 80}, {8080, 40000}, {40000, 8080}} {
		data := append(tcpHeader(ports[0], ports[1]), request...)
		l, err := decodeTCP(newView(data))
		if err != nil {
			t.Fatalf("decodeTCP failed: %v", err)
		}
		if _, ok := l.Child().(*core.HTTP); !ok {
			t.Errorf("Ports %d->%d: expected HTTP child, got %v", ports[0], ports[1], l.Child())
		}
	}

	data := append(tcpHeader(40000, 8443), request...)
	l, err := decodeTCP(newView(data))
	if err != nil {
		t.Fatalf("decodeTCP failed: %v", err)
	}
	if l.Child() != nil {
		t.Errorf("Expected no HTTP on port 8443, got %s", l.Child().Name())
	}
}

func TestDecodeUDP(t *testing.T) {
	data := []byte{
		0x00, 0x35, // Src Port: 53
		0xC3, 0x50, // Dst Port: 50000
		0x00, 0x0C, // Length: 12
		0xFF, 0xFF, // Checksum
		0x01, 0x02, 0x03, 0x04,
	}

	l, err := decodeUDP(newView(data))
	if err != nil {
		t.Fatalf("decodeUDP failed: %v", err)
	}
	udp := l.(*core.UDP)

	if udp.SrcPort != 53 {
		t.Errorf("Expected src port 53, got %d", udp.SrcPort)
	}
	if udp.DstPort != 50000 {
		t.Errorf("Expected dst port 50000, got %d", udp.DstPort)
	}
	if udp.Length != 12 {
		t.Errorf("Expected length 12, got %d", udp.Length)
	}
	if udp.Checksum != 0xFFFF {
		t.Errorf("Expected checksum 0xffff, got 0x%04x", udp.Checksum)
	}
	if !bytes.Equal(udp.Raw(), []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("Expected raw payload, got % x", udp.Raw())
	}

	if _, err := decodeUDP(newView(data[:7])); !errors.Is(err, core.ErrPacketTooShort) {
		t.Errorf("Expected ErrPacketTooShort, got %v", err)
	}
}

func TestDecodeICMPEcho(t *testing.T) {
	data := []byte{
		0x08,       // Type: Echo Request
		0x00,       // Code
		0xF7, 0xFD, // Checksum
		0x00, 0x01, // Identifier
		0x00, 0x02, // Sequence
	}

	l, err := decodeICMPv4(newView(data))
	if err != nil {
		t.Fatalf("decodeICMPv4 failed: %v", err)
	}
	icmp := l.(*core.ICMP)

	if icmp.Version != 4 || icmp.Type != 8 || icmp.Code != 0 {
		t.Errorf("Expected v4 type 8 code 0, got v%d type %d code %d", icmp.Version, icmp.Type, icmp.Code)
	}
	if icmp.Checksum != 0xF7FD {
		t.Errorf("Expected checksum 0xf7fd, got 0x%04x", icmp.Checksum)
	}
	if !icmp.IsEcho() {
		t.Error("Expected echo message")
	}
	if id, ok := icmp.Identifier(); !ok || id != 1 {
		t.Errorf("Expected identifier 1, got %d (%v)", id, ok)
	}
	if seq, ok := icmp.Sequence(); !ok || seq != 2 {
		t.Errorf("Expected sequence 2, got %d (%v)", seq, ok)
	}
	if len(icmp.Contents()) != 4 || len(icmp.Raw()) != 4 {
		t.Errorf("Expected 4-byte header and 4-byte body, got %d and %d", len(icmp.Contents()), len(icmp.Raw()))
	}

	// Type 8 means nothing special to ICMPv6
	l, err = decodeICMPv6(newView(data))
	if err != nil {
		t.Fatalf("decodeICMPv6 failed: %v", err)
	}
	if l.(*core.ICMP).IsEcho() {
		t.Error("ICMPv6 type 8 is not an echo")
	}
}

func TestDecodeICMPTooShort(t *testing.T) {
	_, err := decodeICMPv4(newView([]byte{0x08, 0x00, 0x00}))
	if !errors.Is(err, core.ErrPacketTooShort) {
		t.Errorf("Expected ErrPacketTooShort, got %v", err)
	}
}

func BenchmarkDecodeTCP(b *testing.B) {
	data := tcpHeader(1234, 443)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := decodeTCP(newView(data))
		if err != nil {
			b.Fatal(err)
		}
	}
}

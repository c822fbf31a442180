package decoder

import (
	"bytes"
	"errors"
	"testing"

	"firestige.xyz/layerspy/internal/core"
)

func TestDecodeIPv4Basic(t *testing.T) {
	// IPv4 header: 192.168.1.1 -> 192.168.1.2, UDP
	data := []byte{
		0x45,       // Version 4, IHL 5
		0xB9,       // DSCP 46, ECN 1
		0x00, 0x1C, // Total Length: 28
		0x12, 0x34, // Identification
		0x40, 0x00, // Flags: DF
		0x40,       // TTL: 64
		0x11,       // Protocol: UDP
		0xAB, 0xCD, // Checksum
		0xC0, 0xA8, 0x01, 0x01, // Src IP: 192.168.1.1
		0xC0, 0xA8, 0x01, 0x02, // Dst IP: 192.168.1.2
		0x01, 0x02, 0x03, 0x04, // Payload, too short for UDP
	}

	l, err := decodeIPv4(newView(data))
	if err != nil {
		t.Fatalf("decodeIPv4 failed: %v", err)
	}
	ip := l.(*core.IPv4)

	if ip.Version != 4 {
		t.Errorf("Expected version 4, got %d", ip.Version)
	}
	if ip.HeaderLen() != 20 {
		t.Errorf("Expected header length 20, got %d", ip.HeaderLen())
	}
	if ip.DSCP != 46 || ip.ECN != 1 {
		t.Errorf("Expected DSCP 46 ECN 1, got DSCP %d ECN %d", ip.DSCP, ip.ECN)
	}
	if ip.TotalLength != 28 {
		t.Errorf("Expected total length 28, got %d", ip.TotalLength)
	}
	if ip.Identification != 0x1234 {
		t.Errorf("Expected identification 0x1234, got 0x%04x", ip.Identification)
	}
	if !ip.DontFragment || ip.MoreFragments || ip.IsFragment() {
		t.Errorf("Expected DF only, got DF=%v MF=%v", ip.DontFragment, ip.MoreFragments)
	}
	if ip.TTL != 64 {
		t.Errorf("Expected TTL 64, got %d", ip.TTL)
	}
	if ip.Protocol != core.ProtocolUDP {
		t.Errorf("Expected protocol 17, got %d", ip.Protocol)
	}
	if ip.Checksum != 0xABCD {
		t.Errorf("Expected checksum 0xabcd, got 0x%04x", ip.Checksum)
	}
	if ip.SrcIP.String() != "192.168.1.1" {
		t.Errorf("Expected SrcIP 192.168.1.1, got %s", ip.SrcIP)
	}
	if ip.DstIP.String() != "192.168.1.2" {
		t.Errorf("Expected DstIP 192.168.1.2, got %s", ip.DstIP)
	}
	if ip.SrcIP.Uint32() != 0xC0A80101 {
		t.Errorf("Expected SrcIP value 0xc0a80101, got 0x%08x", ip.SrcIP.Uint32())
	}
	if ip.Options != nil {
		t.Errorf("Expected no options, got % x", ip.Options)
	}

	// UDP needs 8 bytes, so the payload stays raw
	if ip.Child() != nil {
		t.Errorf("Expected no child, got %s", ip.Child().Name())
	}
	if !bytes.Equal(ip.Raw(), []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("Expected raw payload 01 02 03 04, got % x", ip.Raw())
	}
}

func TestDecodeIPv4WithOptions(t *testing.T) {
	data := ipv4Header(core.ProtocolUDP, 12)
	data[0] = 0x46 // IHL 6
	data = append(data, 0x94, 0x04, 0x00, 0x00) // Router Alert option
	data = append(data, udpHeader(1000, 2000, 0)...)

	l, err := decodeIPv4(newView(data))
	if err != nil {
		t.Fatalf("decodeIPv4 failed: %v", err)
	}
	ip := l.(*core.IPv4)

	if ip.HeaderLen() != 24 {
		t.Errorf("Expected header length 24, got %d", ip.HeaderLen())
	}
	if !bytes.Equal(ip.Options, []byte{0x94, 0x04, 0x00, 0x00}) {
		t.Errorf("Expected router alert option, got % x", ip.Options)
	}
	if len(ip.Contents()) != 24 {
		t.Errorf("Expected 24 header bytes, got %d", len(ip.Contents()))
	}
	udp, ok := ip.Child().(*core.UDP)
	if !ok {
		t.Fatalf("Expected UDP child, got %v", ip.Child())
	}
	if udp.SrcPort != 1000 || udp.DstPort != 2000 {
		t.Errorf("Expected ports 1000->2000, got %d->%d", udp.SrcPort, udp.DstPort)
	}
}

func TestDecodeIPv4Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"too short", []byte{0x45, 0x00, 0x00}, core.ErrPacketTooShort},
		{"wrong version", append([]byte{0x65}, ipv4Header(6, 0)[1:]...), core.ErrMalformed},
		{"ihl below minimum", append([]byte{0x44}, ipv4Header(6, 0)[1:]...), core.ErrMalformed},
		{"options truncated", append([]byte{0x47}, ipv4Header(6, 0)[1:]...), core.ErrPacketTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newView(tt.data)
			l, err := decodeIPv4(v)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if l != nil {
				t.Errorf("Expected nil layer, got %v", l)
			}
			if v.Len() != len(tt.data) {
				t.Errorf("Failed parse must not consume")
			}
		})
	}
}

func TestDecodeIPv4Fragments(t *testing.T) {
	payload := tcpHeader(1234, 80)

	// First fragment: MF set, offset 0, transport header present
	first := ipv4Header(core.ProtocolTCP, len(payload))
	first[6], first[7] = 0x20, 0x00
	l, err := decodeIPv4(newView(append(first, payload...)))
	if err != nil {
		t.Fatalf("decodeIPv4 failed: %v", err)
	}
	ip := l.(*core.IPv4)
	if !ip.MoreFragments || !ip.IsFragment() {
		t.Error("Expected MF fragment")
	}
	if _, ok := ip.Child().(*core.TCP); !ok {
		t.Errorf("Expected TCP child on first fragment, got %v", ip.Child())
	}

	// Later fragment: offset 185 (1480 bytes)
	later := ipv4Header(core.ProtocolTCP, len(payload))
	later[6], later[7] = 0x00, 0xB9
	l, err = decodeIPv4(newView(append(later, payload...)))
	if err != nil {
		t.Fatalf("decodeIPv4 failed: %v", err)
	}
	ip = l.(*core.IPv4)
	if ip.FragmentOffset != 185 {
		t.Errorf("Expected fragment offset 185, got %d", ip.FragmentOffset)
	}
	tcp, ok := ip.Child().(*core.TCP)
	if !ok {
		t.Fatalf("Expected TCP child on later fragment, got %v", ip.Child())
	}
	if tcp.SrcPort != 1234 || tcp.DstPort != 80 {
		t.Errorf("Expected ports 1234->80, got %d->%d", tcp.SrcPort, tcp.DstPort)
	}
	if len(ip.Raw()) != 0 {
		t.Errorf("Expected no IPv4 trailing bytes, got %d", len(ip.Raw()))
	}

	// Offset field 0x0010: 16 units, still handed to TCP
	odd := ipv4Header(core.ProtocolTCP, len(payload))
	odd[6], odd[7] = 0x00, 0x10
	l, err = decodeIPv4(newView(append(odd, payload...)))
	if err != nil {
		t.Fatalf("decodeIPv4 failed: %v", err)
	}
	if _, ok := l.Child().(*core.TCP); !ok {
		t.Errorf("Expected TCP child for offset 16, got %v", l.Child())
	}
}

func TestDecodeIPv4UnknownProtocol(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	data := append(ipv4Header(47, len(payload)), payload...) // GRE

	l, err := decodeIPv4(newView(data))
	if err != nil {
		t.Fatalf("decodeIPv4 failed: %v", err)
	}
	if l.Child() != nil {
		t.Errorf("Expected no child, got %s", l.Child().Name())
	}
	if !bytes.Equal(l.Raw(), payload) {
		t.Errorf("Expected raw payload de ad be ef, got % x", l.Raw())
	}
}

func TestDecodeIPv6Basic(t *testing.T) {
	udp := udpHeader(5353, 5353, 0)
	data := append(ipv6Header(core.ProtocolUDP, len(udp)), udp...)

	// Traffic Class 0xAB, Flow Label 0xCDEF1
	data[0], data[1], data[2], data[3] = 0x6A, 0xBC, 0xDE, 0xF1

	l, err := decodeIPv6(newView(data))
	if err != nil {
		t.Fatalf("decodeIPv6 failed: %v", err)
	}
	ip := l.(*core.IPv6)

	if ip.Version != 6 {
		t.Errorf("Expected version 6, got %d", ip.Version)
	}
	if ip.TrafficClass != 0xAB {
		t.Errorf("Expected traffic class 0xab, got 0x%02x", ip.TrafficClass)
	}
	if ip.FlowLabel != 0xCDEF1 {
		t.Errorf("Expected flow label 0xcdef1, got 0x%05x", ip.FlowLabel)
	}
	if ip.PayloadLength != 8 {
		t.Errorf("Expected payload length 8, got %d", ip.PayloadLength)
	}
	if ip.HopLimit != 64 {
		t.Errorf("Expected hop limit 64, got %d", ip.HopLimit)
	}
	if ip.SrcIP.String() != "2001:db8::1" {
		t.Errorf("Expected SrcIP 2001:db8::1, got %s", ip.SrcIP)
	}
	if ip.DstIP.String() != "2001:db8::2" {
		t.Errorf("Expected DstIP 2001:db8::2, got %s", ip.DstIP)
	}
	if ip.IsTCPImmediate() {
		t.Error("Expected UDP next header, not TCP")
	}
	if _, ok := ip.Child().(*core.UDP); !ok {
		t.Errorf("Expected UDP child, got %v", ip.Child())
	}
}

func TestDecodeIPv6ExtensionHeaderNotWalked(t *testing.T) {
	hopByHop := []byte{core.ProtocolTCP, 0x00, 0x01, 0x04, 0x00, 0x00, 0x00, 0x00}
	data := append(ipv6Header(core.NextHeaderHopByHop, len(hopByHop)), hopByHop...)

	l, err := decodeIPv6(newView(data))
	if err != nil {
		t.Fatalf("decodeIPv6 failed: %v", err)
	}
	if l.Child() != nil {
		t.Errorf("Expected no child behind an extension header, got %s", l.Child().Name())
	}
	if !bytes.Equal(l.Raw(), hopByHop) {
		t.Error("Expected extension header to stay raw")
	}
}

func TestDecodeIPv6Errors(t *testing.T) {
	short := ipv6Header(core.ProtocolTCP, 0)[:39]
	if _, err := decodeIPv6(newView(short)); !errors.Is(err, core.ErrPacketTooShort) {
		t.Errorf("Expected ErrPacketTooShort, got %v", err)
	}

	wrong := ipv6Header(core.ProtocolTCP, 0)
	wrong[0] = 0x40
	if _, err := decodeIPv6(newView(wrong)); !errors.Is(err, core.ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func BenchmarkDecodeIPv4(b *testing.B) {
	data := append(ipv4Header(core.ProtocolUDP, 8), udpHeader(53, 53, 0)...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := decodeIPv4(newView(data))
		if err != nil {
			b.Fatal(err)
		}
	}
}

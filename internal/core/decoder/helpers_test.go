package decoder

import "encoding/binary"

var (
	testDstMAC = []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	testSrcMAC = []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
)

// ethernetFrame builds a 14-byte Ethernet II header followed by payload.
func ethernetFrame(etherType uint16, payload ...[]byte) []byte {
	frame := make([]byte, 14)
	copy(frame[0:6], testDstMAC)
	copy(frame[6:12], testSrcMAC)
	binary.BigEndian.PutUint16(frame[12:14], etherType)
	for _, p := range payload {
		frame = append(frame, p...)
	}
	return frame
}

// ipv4Header builds a 20-byte IPv4 header 192.168.1.1 -> 192.168.1.2.
func ipv4Header(protocol uint8, payloadLen int) []byte {
	h := []byte{
		0x45,       // Version 4, IHL 5
		0x00,       // DSCP, ECN
		0x00, 0x00, // Total Length (set below)
		0x12, 0x34, // Identification
		0x40, 0x00, // Flags: DF
		0x40,       // TTL: 64
		protocol,   // Protocol
		0x00, 0x00, // Checksum
		192, 168, 1, 1, // Src IP
		192, 168, 1, 2, // Dst IP
	}
	binary.BigEndian.PutUint16(h[2:4], uint16(20+payloadLen))
	return h
}

// ipv6Header builds a 40-byte IPv6 header 2001:db8::1 -> 2001:db8::2.
func ipv6Header(nextHeader uint8, payloadLen int) []byte {
	h := make([]byte, 40)
	h[0] = 0x60 // Version 6
	binary.BigEndian.PutUint16(h[4:6], uint16(payloadLen))
	h[6] = nextHeader
	h[7] = 64 // Hop Limit
	copy(h[8:24], []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01})
	copy(h[24:40], []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x02})
	return h
}

// tcpHeader builds a 20-byte TCP header with ACK+PSH set.
func tcpHeader(srcPort, dstPort uint16) []byte {
	h := []byte{
		0x00, 0x00, // Src Port
		0x00, 0x00, // Dst Port
		0x00, 0x00, 0x00, 0x01, // Seq Num: 1
		0x00, 0x00, 0x00, 0x02, // Ack Num: 2
		0x50,       // Data Offset: 5 (20 bytes)
		0x18,       // Flags: ACK + PSH
		0x20, 0x00, // Window Size
		0x00, 0x00, // Checksum
		0x00, 0x00, // Urgent Pointer
	}
	binary.BigEndian.PutUint16(h[0:2], srcPort)
	binary.BigEndian.PutUint16(h[2:4], dstPort)
	return h
}

// udpHeader builds an 8-byte UDP header.
func udpHeader(srcPort, dstPort uint16, payloadLen int) []byte {
	h := make([]byte, 8)
	binary.BigEndian.PutUint16(h[0:2], srcPort)
	binary.BigEndian.PutUint16(h[2:4], dstPort)
	binary.BigEndian.PutUint16(h[4:6], uint16(8+payloadLen))
	return h
}

package decoder

import (
	"encoding/binary"

	"firestige.xyz/layerspy/internal/core"
)

// decodeTCP decodes a TCP header including options. Segments on port 80 or
// 8080 are offered to the HTTP parser.
func decodeTCP(v *view) (core.Layer, error) {
	if v.Len() < core.TCPMinHeaderLen {
		return nil, core.ErrPacketTooShort
	}
	data := v.Bytes()

	// Data Offset (upper 4 bits of byte 12) in 32-bit words
	dataOffset := data[12] >> 4
	if dataOffset < 5 {
		return nil, core.ErrMalformed
	}
	headerLen := int(dataOffset) * 4
	if v.Len() < headerLen {
		return nil, core.ErrPacketTooShort
	}

	// Byte 12 low bit: NS. Byte 13: CWR ECE URG ACK PSH RST SYN FIN
	flags := data[13]
	tcp := &core.TCP{
		SrcPort:    binary.BigEndian.Uint16(data[0:2]),
		DstPort:    binary.BigEndian.Uint16(data[2:4]),
		Seq:        binary.BigEndian.Uint32(data[4:8]),
		Ack:        binary.BigEndian.Uint32(data[8:12]),
		DataOffset: dataOffset,
		NS:         data[12]&0x01 != 0,
		CWR:        flags&0x80 != 0,
		ECE:        flags&0x40 != 0,
		URG:        flags&0x20 != 0,
		ACK:        flags&0x10 != 0,
		PSH:        flags&0x08 != 0,
		RST:        flags&0x04 != 0,
		SYN:        flags&0x02 != 0,
		FIN:        flags&0x01 != 0,
		Window:     binary.BigEndian.Uint16(data[14:16]),
		Checksum:   binary.BigEndian.Uint16(data[16:18]),
		Urgent:     binary.BigEndian.Uint16(data[18:20]),
	}
	if headerLen > core.TCPMinHeaderLen {
		tcp.Options = data[core.TCPMinHeaderLen:headerLen:headerLen]
	}
	tcp.SetContents(v.header(headerLen))

	if err := v.Consume(headerLen); err != nil {
		return nil, err
	}

	var next decodeFunc
	if tcp.IsHTTPCandidate() {
		next = decodeHTTP
	}
	descend(v, &tcp.Base, next)
	return tcp, nil
}

// decodeUDP decodes the 8-byte UDP header. The payload stays raw.
func decodeUDP(v *view) (core.Layer, error) {
	if v.Len() < core.UDPHeaderLen {
		return nil, core.ErrPacketTooShort
	}
	data := v.Bytes()

	udp := &core.UDP{
		SrcPort:  binary.BigEndian.Uint16(data[0:2]),
		DstPort:  binary.BigEndian.Uint16(data[2:4]),
		Length:   binary.BigEndian.Uint16(data[4:6]),
		Checksum: binary.BigEndian.Uint16(data[6:8]),
	}
	udp.SetContents(v.header(core.UDPHeaderLen))

	if err := v.Consume(core.UDPHeaderLen); err != nil {
		return nil, err
	}
	descend(v, &udp.Base, nil)
	return udp, nil
}

func decodeICMPv4(v *view) (core.Layer, error) { return decodeICMP(v, 4) }

func decodeICMPv6(v *view) (core.Layer, error) { return decodeICMP(v, 6) }

// decodeICMP decodes the type/code/checksum header shared by ICMP and
// ICMPv6. The message body stays raw.
func decodeICMP(v *view, version uint8) (core.Layer, error) {
	if v.Len() < core.ICMPHeaderLen {
		return nil, core.ErrPacketTooShort
	}
	data := v.Bytes()

	icmp := &core.ICMP{
		Version:  version,
		Type:     data[0],
		Code:     data[1],
		Checksum: binary.BigEndian.Uint16(data[2:4]),
	}
	icmp.SetContents(v.header(core.ICMPHeaderLen))

	if err := v.Consume(core.ICMPHeaderLen); err != nil {
		return nil, err
	}
	descend(v, &icmp.Base, nil)
	return icmp, nil
}

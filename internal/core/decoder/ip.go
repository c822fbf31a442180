package decoder

import (
	"encoding/binary"

	"firestige.xyz/layerspy/internal/core"
)

// ipv4Decoders maps the IPv4 protocol number to the transport parser.
var ipv4Decoders = map[uint8]decodeFunc{
	core.ProtocolTCP:  decodeTCP,
	core.ProtocolUDP:  decodeUDP,
	core.ProtocolICMP: decodeICMPv4,
}

// ipv6Decoders maps the IPv6 next-header value to the transport parser.
// Extension headers are not walked, so a packet carrying one keeps its
// payload raw.
var ipv6Decoders = map[uint8]decodeFunc{
	core.ProtocolTCP:    decodeTCP,
	core.ProtocolUDP:    decodeUDP,
	core.ProtocolICMPv6: decodeICMPv6,
}

// decodeIPv4 decodes an IPv4 header including options.
func decodeIPv4(v *view) (core.Layer, error) {
	if v.Len() < core.IPv4MinHeaderLen {
		return nil, core.ErrPacketTooShort
	}
	data := v.Bytes()

	// Version and IHL share the first byte
	if data[0]>>4 != 4 {
		return nil, core.ErrMalformed
	}
	ihl := data[0] & 0x0F
	if ihl < 5 {
		return nil, core.ErrMalformed
	}
	headerLen := int(ihl) * 4
	if v.Len() < headerLen {
		return nil, core.ErrPacketTooShort
	}

	// Flags (3 bits) + Fragment Offset (13 bits)
	flagsOffset := binary.BigEndian.Uint16(data[6:8])

	ip := &core.IPv4{
		Version:        4,
		IHL:            ihl,
		DSCP:           data[1] >> 2,
		ECN:            data[1] & 0x03,
		TotalLength:    binary.BigEndian.Uint16(data[2:4]),
		Identification: binary.BigEndian.Uint16(data[4:6]),
		DontFragment:   flagsOffset&0x4000 != 0,
		MoreFragments:  flagsOffset&0x2000 != 0,
		FragmentOffset: flagsOffset & 0x1FFF,
		TTL:            data[8],
		Protocol:       data[9],
		Checksum:       binary.BigEndian.Uint16(data[10:12]),
		SrcIP:          core.IPv4AddressFromUint32(binary.BigEndian.Uint32(data[12:16])),
		DstIP:          core.IPv4AddressFromUint32(binary.BigEndian.Uint32(data[16:20])),
	}
	if headerLen > core.IPv4MinHeaderLen {
		ip.Options = data[core.IPv4MinHeaderLen:headerLen:headerLen]
	}
	ip.SetContents(v.header(headerLen))

	if err := v.Consume(headerLen); err != nil {
		return nil, err
	}

	// Dispatch is by protocol alone, fragments included
	descend(v, &ip.Base, ipv4Decoders[ip.Protocol])
	return ip, nil
}

// decodeIPv6 decodes the fixed 40-byte IPv6 header.
func decodeIPv6(v *view) (core.Layer, error) {
	if v.Len() < core.IPv6HeaderLen {
		return nil, core.ErrPacketTooShort
	}
	data := v.Bytes()

	if data[0]>>4 != 6 {
		return nil, core.ErrMalformed
	}

	ip := &core.IPv6{
		Version:       6,
		TrafficClass:  data[0]<<4 | data[1]>>4,
		FlowLabel:     uint32(data[1]&0x0F)<<16 | uint32(binary.BigEndian.Uint16(data[2:4])),
		PayloadLength: binary.BigEndian.Uint16(data[4:6]),
		NextHeader:    data[6],
		HopLimit:      data[7],
		SrcIP:         core.IPv6AddressFromArray([core.IPv6Length]byte(data[8:24])),
		DstIP:         core.IPv6AddressFromArray([core.IPv6Length]byte(data[24:40])),
	}
	ip.SetContents(v.header(core.IPv6HeaderLen))

	if err := v.Consume(core.IPv6HeaderLen); err != nil {
		return nil, err
	}
	descend(v, &ip.Base, ipv6Decoders[ip.NextHeader])
	return ip, nil
}

package core

// IP protocol / next-header numbers the decoder dispatches on.
const (
	ProtocolICMP   uint8 = 1
	ProtocolTCP    uint8 = 6
	ProtocolUDP    uint8 = 17
	ProtocolICMPv6 uint8 = 58

	// Extension headers, recognized by name only. They are not walked.
	NextHeaderHopByHop uint8 = 0
	NextHeaderRouting  uint8 = 43
	NextHeaderFragment uint8 = 44
)

// Header sizes.
const (
	IPv4MinHeaderLen = 20
	IPv6HeaderLen    = 40
)

// IPv4 is an IPv4 header.
type IPv4 struct {
	Base
	Version        uint8
	IHL            uint8 // header length in 32-bit words
	DSCP           uint8
	ECN            uint8
	TotalLength    uint16
	Identification uint16
	DontFragment   bool
	MoreFragments  bool
	FragmentOffset uint16 // in 8-byte units
	TTL            uint8
	Protocol       uint8
	Checksum       uint16 // not validated
	SrcIP          IPv4Address
	DstIP          IPv4Address
	Options        []byte
}

func (*IPv4) Kind() Kind   { return KindIPv4 }
func (*IPv4) Name() string { return KindIPv4.String() }

// HeaderLen returns the header size in bytes.
func (ip *IPv4) HeaderLen() int { return int(ip.IHL) * 4 }

// IsFragment reports whether the packet is part of a fragmented datagram.
func (ip *IPv4) IsFragment() bool {
	return ip.MoreFragments || ip.FragmentOffset != 0
}

// Fields implements Layer.
func (ip *IPv4) Fields() []Field {
	flags := ""
	if ip.DontFragment {
		flags = "DF"
	}
	if ip.MoreFragments {
		if flags != "" {
			flags += "|"
		}
		flags += "MF"
	}
	return []Field{
		{Name: "Version", Value: dec(ip.Version)},
		{Name: "Header Length", Value: dec(uint32(ip.HeaderLen())) + " bytes"},
		{Name: "DSCP", Value: dec(ip.DSCP)},
		{Name: "ECN", Value: dec(ip.ECN)},
		{Name: "Total Length", Value: dec(ip.TotalLength)},
		{Name: "Identification", Value: hex16(ip.Identification)},
		{Name: "Flags", Value: flags},
		{Name: "Fragment Offset", Value: dec(ip.FragmentOffset)},
		{Name: "TTL", Value: dec(ip.TTL)},
		{Name: "Protocol", Value: dec(ip.Protocol) + protocolName(ip.Protocol)},
		{Name: "Checksum", Value: hex16(ip.Checksum)},
		{Name: "Source", Value: ip.SrcIP.String()},
		{Name: "Destination", Value: ip.DstIP.String()},
	}
}

// IPv6 is the fixed IPv6 header. Extension headers are not decoded; the
// NextHeader value is reported as found.
type IPv6 struct {
	Base
	Version       uint8
	TrafficClass  uint8
	FlowLabel     uint32 // 20 bits
	PayloadLength uint16
	NextHeader    uint8
	HopLimit      uint8
	SrcIP         IPv6Address
	DstIP         IPv6Address
}

func (*IPv6) Kind() Kind   { return KindIPv6 }
func (*IPv6) Name() string { return KindIPv6.String() }

// IsTCPImmediate reports whether TCP directly follows the fixed header.
func (ip *IPv6) IsTCPImmediate() bool { return ip.NextHeader == ProtocolTCP }

// Fields implements Layer.
func (ip *IPv6) Fields() []Field {
	return []Field{
		{Name: "Version", Value: dec(ip.Version)},
		{Name: "Traffic Class", Value: hex8(ip.TrafficClass)},
		{Name: "Flow Label", Value: "0x" + pad(hexString(uint64(ip.FlowLabel)), 5)},
		{Name: "Payload Length", Value: dec(ip.PayloadLength)},
		{Name: "Next Header", Value: dec(ip.NextHeader) + protocolName(ip.NextHeader)},
		{Name: "Hop Limit", Value: dec(ip.HopLimit)},
		{Name: "Source", Value: ip.SrcIP.String()},
		{Name: "Destination", Value: ip.DstIP.String()},
	}
}

func protocolName(p uint8) string {
	switch p {
	case NextHeaderHopByHop:
		return " (Hop-by-Hop)"
	case ProtocolICMP:
		return " (ICMP)"
	case ProtocolTCP:
		return " (TCP)"
	case ProtocolUDP:
		return " (UDP)"
	case NextHeaderRouting:
		return " (Routing)"
	case NextHeaderFragment:
		return " (Fragment)"
	case ProtocolICMPv6:
		return " (ICMPv6)"
	default:
		return ""
	}
}

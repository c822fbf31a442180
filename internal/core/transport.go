package core

import "strings"

// Header sizes.
const (
	TCPMinHeaderLen = 20
	UDPHeaderLen    = 8
	ICMPHeaderLen   = 4
)

// Ports that promote a TCP payload to the HTTP parser.
const (
	PortHTTP    uint16 = 80
	PortHTTPAlt uint16 = 8080
)

// TCP is a TCP segment header.
type TCP struct {
	Base
	SrcPort    uint16
	DstPort    uint16
	Seq        uint32
	Ack        uint32
	DataOffset uint8 // header length in 32-bit words
	NS         bool
	CWR        bool
	ECE        bool
	URG        bool
	ACK        bool
	PSH        bool
	RST        bool
	SYN        bool
	FIN        bool
	Window     uint16
	Checksum   uint16 // not validated
	Urgent     uint16 // meaningful only when URG is set
	Options    []byte
}

func (*TCP) Kind() Kind   { return KindTCP }
func (*TCP) Name() string { return KindTCP.String() }

// HeaderLen returns the header size in bytes, options included.
func (t *TCP) HeaderLen() int { return int(t.DataOffset) * 4 }

// IsSYNOnly reports a bare connection-opening segment.
func (t *TCP) IsSYNOnly() bool {
	return t.SYN && !t.ACK && !t.FIN && !t.RST
}

// IsHTTPCandidate reports whether either port is 80 or 8080. TLS on 443 is
// not considered HTTP.
func (t *TCP) IsHTTPCandidate() bool {
	return t.SrcPort == PortHTTP || t.DstPort == PortHTTP ||
		t.SrcPort == PortHTTPAlt || t.DstPort == PortHTTPAlt
}

// FlagString lists the set control flags, e.g. "SYN|ACK".
func (t *TCP) FlagString() string {
	var parts []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{t.NS, "NS"}, {t.CWR, "CWR"}, {t.ECE, "ECE"}, {t.URG, "URG"},
		{t.ACK, "ACK"}, {t.PSH, "PSH"}, {t.RST, "RST"}, {t.SYN, "SYN"}, {t.FIN, "FIN"},
	} {
		if f.set {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// Fields implements Layer.
func (t *TCP) Fields() []Field {
	fields := []Field{
		{Name: "Source Port", Value: dec(t.SrcPort)},
		{Name: "Destination Port", Value: dec(t.DstPort)},
		{Name: "Sequence Number", Value: dec(t.Seq)},
		{Name: "Acknowledgment Number", Value: dec(t.Ack)},
		{Name: "Data Offset", Value: dec(uint32(t.HeaderLen())) + " bytes"},
		{Name: "Flags", Value: "[" + t.FlagString() + "]"},
		{Name: "Window Size", Value: dec(t.Window)},
		{Name: "Checksum", Value: hex16(t.Checksum)},
	}
	if t.URG {
		fields = append(fields, Field{Name: "Urgent Pointer", Value: dec(t.Urgent)})
	}
	if len(t.Options) > 0 {
		fields = append(fields, Field{Name: "Options", Value: dec(uint32(len(t.Options))) + " bytes"})
	}
	return fields
}

// UDP is a UDP datagram header.
type UDP struct {
	Base
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16 // not validated
}

func (*UDP) Kind() Kind   { return KindUDP }
func (*UDP) Name() string { return KindUDP.String() }

// Fields implements Layer.
func (u *UDP) Fields() []Field {
	return []Field{
		{Name: "Source Port", Value: dec(u.SrcPort)},
		{Name: "Destination Port", Value: dec(u.DstPort)},
		{Name: "Length", Value: dec(u.Length)},
		{Name: "Checksum", Value: hex16(u.Checksum)},
	}
}

// ICMP type values with an identifier/sequence body.
const (
	ICMPv4EchoReply   uint8 = 0
	ICMPv4EchoRequest uint8 = 8
	ICMPv6EchoRequest uint8 = 128
	ICMPv6EchoReply   uint8 = 129
)

// ICMP is the common 4-byte ICMP / ICMPv6 header. Version tells the two
// apart; the rest of the message stays in Raw.
type ICMP struct {
	Base
	Version  uint8 // 4 or 6
	Type     uint8
	Code     uint8
	Checksum uint16 // not validated
}

func (*ICMP) Kind() Kind   { return KindICMP }
func (*ICMP) Name() string { return KindICMP.String() }

// IsEcho reports an echo request or reply.
func (c *ICMP) IsEcho() bool {
	if c.Version == 6 {
		return c.Type == ICMPv6EchoRequest || c.Type == ICMPv6EchoReply
	}
	return c.Type == ICMPv4EchoRequest || c.Type == ICMPv4EchoReply
}

// Identifier returns the echo identifier. ok is false for non-echo messages
// or when the body is shorter than 4 bytes.
func (c *ICMP) Identifier() (id uint16, ok bool) {
	if !c.IsEcho() || len(c.raw) < 4 {
		return 0, false
	}
	return uint16(c.raw[0])<<8 | uint16(c.raw[1]), true
}

// Sequence returns the echo sequence number, see Identifier.
func (c *ICMP) Sequence() (seq uint16, ok bool) {
	if !c.IsEcho() || len(c.raw) < 4 {
		return 0, false
	}
	return uint16(c.raw[2])<<8 | uint16(c.raw[3]), true
}

// Fields implements Layer.
func (c *ICMP) Fields() []Field {
	fields := []Field{
		{Name: "Version", Value: dec(c.Version)},
		{Name: "Type", Value: dec(c.Type)},
		{Name: "Code", Value: dec(c.Code)},
		{Name: "Checksum", Value: hex16(c.Checksum)},
	}
	if id, ok := c.Identifier(); ok {
		seq, _ := c.Sequence()
		fields = append(fields,
			Field{Name: "Identifier", Value: hex16(id)},
			Field{Name: "Sequence", Value: dec(seq)},
		)
	}
	return fields
}

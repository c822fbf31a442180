package core

// EtherType values the decoder dispatches on.
const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeIPv6 uint16 = 0x86DD
)

// EthernetHeaderLen is the fixed Ethernet II header size: 6+6+2.
const EthernetHeaderLen = 14

// Ethernet is an Ethernet II frame header.
type Ethernet struct {
	Base
	DstMAC    MACAddress
	SrcMAC    MACAddress
	EtherType uint16
}

func (*Ethernet) Kind() Kind   { return KindEthernet }
func (*Ethernet) Name() string { return KindEthernet.String() }

// Fields implements Layer.
func (e *Ethernet) Fields() []Field {
	return []Field{
		{Name: "Destination", Value: e.DstMAC.String()},
		{Name: "Source", Value: e.SrcMAC.String()},
		{Name: "Type", Value: hex16(e.EtherType) + etherTypeName(e.EtherType)},
	}
}

func etherTypeName(t uint16) string {
	switch t {
	case EtherTypeIPv4:
		return " (IPv4)"
	case EtherTypeIPv6:
		return " (IPv6)"
	case 0x0806:
		return " (ARP)"
	case 0x8100:
		return " (802.1Q)"
	default:
		return ""
	}
}

// Raw is a leaf of undecoded bytes. Layers appends one for the innermost
// layer's trailing bytes.
type Raw struct {
	Base
	Data []byte
}

// NewRaw wraps data without copying.
func NewRaw(data []byte) *Raw {
	r := &Raw{Data: data}
	r.contents = data
	return r
}

func (*Raw) Kind() Kind   { return KindRaw }
func (*Raw) Name() string { return KindRaw.String() }

// Fields implements Layer.
func (r *Raw) Fields() []Field {
	return []Field{{Name: "Length", Value: dec(uint32(len(r.Data))) + " bytes"}}
}

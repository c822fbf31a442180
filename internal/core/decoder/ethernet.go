package decoder

import (
	"encoding/binary"

	"firestige.xyz/layerspy/internal/core"
)

// etherTypeDecoders maps EtherType to the network-layer parser.
var etherTypeDecoders = map[uint16]decodeFunc{
	core.EtherTypeIPv4: decodeIPv4,
	core.EtherTypeIPv6: decodeIPv6,
}

// decodeEthernet decodes the fixed 14-byte Ethernet II header.
func decodeEthernet(v *view) (core.Layer, error) {
	if v.Len() < core.EthernetHeaderLen {
		return nil, core.ErrPacketTooShort
	}
	data := v.Bytes()

	eth := &core.Ethernet{
		DstMAC:    core.MACAddressFromArray([core.MACLength]byte(data[0:6])),
		SrcMAC:    core.MACAddressFromArray([core.MACLength]byte(data[6:12])),
		EtherType: binary.BigEndian.Uint16(data[12:14]),
	}
	eth.SetContents(v.header(core.EthernetHeaderLen))

	if err := v.Consume(core.EthernetHeaderLen); err != nil {
		return nil, err
	}
	descend(v, &eth.Base, etherTypeDecoders[eth.EtherType])
	return eth, nil
}

// Package core defines the decoded packet model with zero external dependencies.
package core

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"sync"
)

// Address lengths in bytes.
const (
	MACLength  = 6
	IPv4Length = 4
	IPv6Length = 16
)

// lazyString computes a rendering once and serves it afterwards.
// A nil *lazyString renders on every call, which keeps zero-value
// addresses usable.
type lazyString struct {
	once sync.Once
	s    string
}

func (c *lazyString) get(render func() string) string {
	if c == nil {
		return render()
	}
	c.once.Do(func() { c.s = render() })
	return c.s
}

// MACAddress is an immutable 6-byte link-layer address.
type MACAddress struct {
	b     [MACLength]byte
	cache *lazyString
}

// NewMACAddress builds a MACAddress from exactly 6 bytes.
func NewMACAddress(b []byte) (MACAddress, error) {
	if len(b) != MACLength {
		return MACAddress{}, fmt.Errorf("%w: mac needs %d bytes, got %d", ErrAddressLength, MACLength, len(b))
	}
	return MACAddressFromArray([MACLength]byte(b)), nil
}

// MACAddressFromArray builds a MACAddress from a fixed-size array.
func MACAddressFromArray(a [MACLength]byte) MACAddress {
	return MACAddress{b: a, cache: new(lazyString)}
}

// String renders six lowercase, zero-padded hex octets joined by colons.
func (m MACAddress) String() string {
	return m.cache.get(func() string {
		return net.HardwareAddr(m.b[:]).String()
	})
}

// Equal reports whether both addresses hold the same bytes.
func (m MACAddress) Equal(other MACAddress) bool {
	return m.b == other.b
}

// EqualString compares s against the canonical rendering. The comparison is
// case-sensitive, so "AA:BB:..." never matches.
func (m MACAddress) EqualString(s string) bool {
	if len(s) != 3*MACLength-1 {
		return false
	}
	return m.String() == s
}

// Array returns the address bytes.
func (m MACAddress) Array() [MACLength]byte { return m.b }

// Bytes returns a copy of the address bytes.
func (m MACAddress) Bytes() []byte {
	b := m.b
	return b[:]
}

// HardwareAddr converts to the net package representation.
func (m MACAddress) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(m.Bytes())
}

// IsBroadcast reports whether the address is ff:ff:ff:ff:ff:ff.
func (m MACAddress) IsBroadcast() bool {
	return m.b == [MACLength]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// IsMulticast reports whether the group bit is set.
func (m MACAddress) IsMulticast() bool {
	return m.b[0]&0x01 != 0
}

// IPv4Address is an immutable IPv4 address, held as a host-order integer.
type IPv4Address struct {
	host  uint32
	cache *lazyString
}

// NewIPv4Address builds an IPv4Address from exactly 4 bytes in wire order.
func NewIPv4Address(b []byte) (IPv4Address, error) {
	if len(b) != IPv4Length {
		return IPv4Address{}, fmt.Errorf("%w: ipv4 needs %d bytes, got %d", ErrAddressLength, IPv4Length, len(b))
	}
	return IPv4AddressFromUint32(binary.BigEndian.Uint32(b)), nil
}

// IPv4AddressFromUint32 builds an IPv4Address from a 32-bit value read in
// network order: the first octet is the most significant byte, so
// 0xC0A80101 is 192.168.1.1.
func IPv4AddressFromUint32(v uint32) IPv4Address {
	return IPv4Address{host: v, cache: new(lazyString)}
}

// String renders dotted decimal.
func (a IPv4Address) String() string {
	return a.cache.get(func() string {
		return a.Addr().String()
	})
}

// Equal compares the host-order values.
func (a IPv4Address) Equal(other IPv4Address) bool {
	return a.host == other.host
}

// Uint32 returns the host-order value.
func (a IPv4Address) Uint32() uint32 { return a.host }

// Bytes returns the address in wire order.
func (a IPv4Address) Bytes() []byte {
	b := make([]byte, IPv4Length)
	binary.BigEndian.PutUint32(b, a.host)
	return b
}

// Addr converts to netip.Addr.
func (a IPv4Address) Addr() netip.Addr {
	var b [IPv4Length]byte
	binary.BigEndian.PutUint32(b[:], a.host)
	return netip.AddrFrom4(b)
}

// IPv6Address is an immutable 16-byte IPv6 address.
type IPv6Address struct {
	b     [IPv6Length]byte
	cache *lazyString
}

// NewIPv6Address builds an IPv6Address from exactly 16 bytes.
func NewIPv6Address(b []byte) (IPv6Address, error) {
	if len(b) != IPv6Length {
		return IPv6Address{}, fmt.Errorf("%w: ipv6 needs %d bytes, got %d", ErrAddressLength, IPv6Length, len(b))
	}
	return IPv6AddressFromArray([IPv6Length]byte(b)), nil
}

// IPv6AddressFromArray builds an IPv6Address from a fixed-size array.
func IPv6AddressFromArray(a [IPv6Length]byte) IPv6Address {
	return IPv6Address{b: a, cache: new(lazyString)}
}

// String renders the RFC 5952 form: lowercase hex groups, the longest run
// of two or more zero groups (leftmost on a tie) collapsed to "::".
func (a IPv6Address) String() string {
	return a.cache.get(func() string {
		return netip.AddrFrom16(a.b).String()
	})
}

// Equal reports whether both addresses hold the same bytes.
func (a IPv6Address) Equal(other IPv6Address) bool {
	return a.b == other.b
}

// Array returns the address bytes.
func (a IPv6Address) Array() [IPv6Length]byte { return a.b }

// Bytes returns a copy of the address bytes.
func (a IPv6Address) Bytes() []byte {
	b := a.b
	return b[:]
}

// Addr converts to netip.Addr.
func (a IPv6Address) Addr() netip.Addr {
	return netip.AddrFrom16(a.b)
}

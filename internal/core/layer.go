package core

import "strconv"

// Kind identifies a layer variant.
type Kind uint8

const (
	KindEthernet Kind = iota + 1
	KindIPv4
	KindIPv6
	KindTCP
	KindUDP
	KindICMP
	KindHTTP
	KindRaw
)

var kindNames = map[Kind]string{
	KindEthernet: "Ethernet II",
	KindIPv4:     "IPv4",
	KindIPv6:     "IPv6",
	KindTCP:      "TCP",
	KindUDP:      "UDP",
	KindICMP:     "ICMP",
	KindHTTP:     "HTTP",
	KindRaw:      "Raw",
}

// String returns the display name of the layer kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Field is one named, rendered header field.
type Field struct {
	Name  string
	Value string
}

// Layer is one decoded protocol header in a packet tree.
//
// The set of implementations is closed: Ethernet, IPv4, IPv6, TCP, UDP,
// ICMP, HTTP and Raw. Consumers switch on the concrete type.
type Layer interface {
	Kind() Kind
	Name() string
	// Child is the next encapsulated layer, nil when decoding stopped here.
	Child() Layer
	// Raw is the unparsed remainder following this layer's header. It
	// aliases the decoded buffer.
	Raw() []byte
	// Contents is the header bytes this layer consumed. It aliases the
	// decoded buffer.
	Contents() []byte
	Fields() []Field

	layer()
}

// Base carries the members every layer shares.
type Base struct {
	child    Layer
	raw      []byte
	contents []byte
}

// Child returns the owned next layer.
func (b *Base) Child() Layer { return b.child }

// Raw returns the borrowed trailing bytes.
func (b *Base) Raw() []byte { return b.raw }

// Contents returns the borrowed header bytes.
func (b *Base) Contents() []byte { return b.contents }

// SetChild attaches the next layer. A nil child clears it.
func (b *Base) SetChild(l Layer) { b.child = l }

// SetRaw stores the undecoded remainder.
func (b *Base) SetRaw(raw []byte) { b.raw = raw }

// SetContents records the consumed header bytes.
func (b *Base) SetContents(c []byte) { b.contents = c }

func (b *Base) layer() {}

// Walk calls fn for root and each descendant, outermost first, until fn
// returns false.
func Walk(root Layer, fn func(Layer) bool) {
	for l := root; l != nil; l = l.Child() {
		if !fn(l) {
			return
		}
	}
}

// Layers flattens the tree into a slice. When the innermost layer carries
// trailing bytes, a *Raw holding them is appended.
func Layers(root Layer) []Layer {
	var out []Layer
	var last Layer
	Walk(root, func(l Layer) bool {
		out = append(out, l)
		last = l
		return true
	})
	if last != nil && len(last.Raw()) > 0 {
		out = append(out, NewRaw(last.Raw()))
	}
	return out
}

// Find returns the first layer of type T in the tree.
func Find[T Layer](root Layer) (T, bool) {
	var found T
	ok := false
	Walk(root, func(l Layer) bool {
		if t, match := l.(T); match {
			found, ok = t, true
			return false
		}
		return true
	})
	return found, ok
}

// Innermost returns the deepest decoded layer, or nil for a nil root.
func Innermost(root Layer) Layer {
	var last Layer
	Walk(root, func(l Layer) bool {
		last = l
		return true
	})
	return last
}

func hex8(v uint8) string   { return "0x" + pad(hexString(uint64(v)), 2) }
func hex16(v uint16) string { return "0x" + pad(hexString(uint64(v)), 4) }

func hexString(v uint64) string { return strconv.FormatUint(v, 16) }

func pad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}

func dec[T ~uint8 | ~uint16 | ~uint32](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

// Package decoder implements L2-L7 protocol stack decoding into layer trees.
package decoder

import "firestige.xyz/layerspy/internal/core"

// Decoder decodes raw frames into layer trees.
type Decoder interface {
	Decode(data []byte) core.Layer
}

// decodeFunc parses one layer from the front of v. On failure it returns an
// error and leaves v untouched.
type decodeFunc func(v *view) (core.Layer, error)

// StandardDecoder starts every frame at Ethernet II.
type StandardDecoder struct{}

// NewStandardDecoder returns a decoder. It holds no state and is safe for
// concurrent use.
func NewStandardDecoder() *StandardDecoder {
	return &StandardDecoder{}
}

// Decode implements Decoder.
func (*StandardDecoder) Decode(data []byte) core.Layer {
	return Decode(data)
}

// Decode decodes one Ethernet frame. It returns nil when data is too short
// to hold an Ethernet header; otherwise the root is a *core.Ethernet whose
// raw slices alias data.
func Decode(data []byte) core.Layer {
	root, err := DecodeLayer(data)
	if err != nil {
		return nil
	}
	return root
}

// DecodeLayer is Decode with the link-layer failure reason.
func DecodeLayer(data []byte) (core.Layer, error) {
	return decodeEthernet(newView(data))
}

// descend runs next on the remaining view and attaches the result to
// parent. When next is nil or fails, the remaining bytes become parent's
// raw payload instead.
func descend(v *view, parent *core.Base, next decodeFunc) {
	if next != nil {
		if child, err := next(v); err == nil {
			parent.SetChild(child)
			return
		}
	}
	parent.SetRaw(v.Bytes())
}

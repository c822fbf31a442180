package decoder

import (
	"fmt"

	"firestige.xyz/layerspy/internal/core"
)

// view is a non-owning window over the packet buffer. Parsers read at
// offsets within the current window, then consume their header.
type view struct {
	b []byte
}

func newView(b []byte) *view { return &view{b: b} }

// Len returns the number of unconsumed bytes.
func (v *view) Len() int { return len(v.b) }

// Bytes returns the unconsumed window. It aliases the packet buffer.
func (v *view) Bytes() []byte { return v.b }

// Consume advances the window start by n bytes.
func (v *view) Consume(n int) error {
	if n < 0 || n > len(v.b) {
		return fmt.Errorf("%w: consume %d of %d", core.ErrOutOfRange, n, len(v.b))
	}
	v.b = v.b[n:]
	return nil
}

// header returns the first n bytes with capacity clipped to n, so a
// layer's Contents can never be grown into its payload.
func (v *view) header(n int) []byte {
	return v.b[:n:n]
}

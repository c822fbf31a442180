package core

import "errors"

// Sentinel errors, matched with errors.Is.
var (
	// Packet decoding errors
	ErrPacketTooShort = errors.New("layerspy: packet too short")
	ErrOutOfRange     = errors.New("layerspy: consume out of range")
	ErrMalformed      = errors.New("layerspy: malformed header")

	// Address construction errors
	ErrAddressLength = errors.New("layerspy: invalid address length")

	// Configuration errors
	ErrConfigInvalid = errors.New("layerspy: invalid configuration")

	// Source errors
	ErrSourceClosed      = errors.New("layerspy: source closed")
	ErrUnsupportedLink   = errors.New("layerspy: unsupported link type")
	ErrUnsupportedFormat = errors.New("layerspy: unsupported capture file format")
)

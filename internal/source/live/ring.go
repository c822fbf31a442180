package live

import (
	"fmt"

	"firestige.xyz/layerspy/internal/core"
)

// ringLayout is an AF_PACKET PACKET_MMAP ring geometry.
type ringLayout struct {
	frameSize int
	blockSize int
	numBlocks int
}

// computeRing sizes the ring for snapLen-byte frames within roughly
// bufferMB megabytes. PACKET_MMAP requires:
//  1. frameSize is a multiple of TPACKET_ALIGNMENT (16)
//  2. blockSize is a multiple of pageSize
//  3. blockSize is a multiple of frameSize
func computeRing(bufferMB, snapLen, pageSize int) (ringLayout, error) {
	const tpacketAlignment = 16
	const tpacketHdrLen = 52 // TPACKET3_HDRLEN, approximate
	const maxBlockSize = 4 * 1024 * 1024

	if bufferMB <= 0 {
		return ringLayout{}, fmt.Errorf("%w: buffer_size_mb must be positive, got %d", core.ErrConfigInvalid, bufferMB)
	}
	if snapLen <= 0 {
		return ringLayout{}, fmt.Errorf("%w: snap_len must be positive, got %d", core.ErrConfigInvalid, snapLen)
	}
	if pageSize <= 0 || pageSize%tpacketAlignment != 0 {
		return ringLayout{}, fmt.Errorf("%w: page size must be a positive multiple of %d, got %d",
			core.ErrConfigInvalid, tpacketAlignment, pageSize)
	}

	frameSize := alignUp(tpacketHdrLen+snapLen, tpacketAlignment)

	// Smallest block holding whole frames and whole pages
	blockSize := lcm(pageSize, frameSize)
	if blockSize > maxBlockSize {
		// Page-sized frames keep the block a multiple of both
		frameSize = alignUp(frameSize, pageSize)
		blockSize = frameSize
		if n := maxBlockSize / frameSize; n > 1 {
			blockSize = n * frameSize
		}
	}

	numBlocks := bufferMB * 1024 * 1024 / blockSize
	if numBlocks < 1 {
		numBlocks = 1
	}
	return ringLayout{frameSize: frameSize, blockSize: blockSize, numBlocks: numBlocks}, nil
}

func alignUp(n, align int) int {
	return ((n + align - 1) / align) * align
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}

package live

import (
	"errors"
	"testing"

	"firestige.xyz/layerspy/internal/core"
)

func TestComputeRing(t *testing.T) {
	tests := []struct {
		name     string
		bufferMB int
		snapLen  int
		pageSize int
	}{
		{"default", 8, 65535, 4096},
		{"small snaplen", 8, 128, 4096},
		{"tiny buffer", 1, 65535, 4096},
		{"mtu", 64, 1514, 4096},
		{"large page", 16, 9000, 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := computeRing(tt.bufferMB, tt.snapLen, tt.pageSize)
			if err != nil {
				t.Fatalf("computeRing failed: %v", err)
			}
			if r.frameSize%16 != 0 {
				t.Errorf("frameSize %d is not 16-byte aligned", r.frameSize)
			}
			if r.frameSize < tt.snapLen {
				t.Errorf("frameSize %d cannot hold snaplen %d", r.frameSize, tt.snapLen)
			}
			if r.blockSize%tt.pageSize != 0 {
				t.Errorf("blockSize %d is not page aligned", r.blockSize)
			}
			if r.blockSize%r.frameSize != 0 {
				t.Errorf("blockSize %d is not a multiple of frameSize %d", r.blockSize, r.frameSize)
			}
			if r.blockSize < r.frameSize {
				t.Errorf("blockSize %d smaller than frameSize %d", r.blockSize, r.frameSize)
			}
			if r.numBlocks < 1 {
				t.Errorf("numBlocks must be at least 1, got %d", r.numBlocks)
			}
		})
	}
}

func TestComputeRingExactFit(t *testing.T) {
	// 52+1996 = 2048: two frames per page
	r, err := computeRing(1, 1996, 4096)
	if err != nil {
		t.Fatalf("computeRing failed: %v", err)
	}
	if r.frameSize != 2048 || r.blockSize != 4096 || r.numBlocks != 256 {
		t.Errorf("Unexpected layout %+v", r)
	}
}

func TestComputeRingJumboFallback(t *testing.T) {
	// lcm(4096, 65600) exceeds the block cap, frames round up to 17 pages
	r, err := computeRing(8, 65535, 4096)
	if err != nil {
		t.Fatalf("computeRing failed: %v", err)
	}
	if r.frameSize != 69632 || r.blockSize != 60*69632 || r.numBlocks != 2 {
		t.Errorf("Unexpected layout %+v", r)
	}
}

func TestComputeRingInvalid(t *testing.T) {
	for _, args := range [][3]int{{0, 1500, 4096}, {8, 0, 4096}, {8, 1500, 0}, {8, 1500, 1000}} {
		_, err := computeRing(args[0], args[1], args[2])
		if !errors.Is(err, core.ErrConfigInvalid) {
			t.Errorf("computeRing%v: expected ErrConfigInvalid, got %v", args, err)
		}
	}
}

func TestGCDAndLCM(t *testing.T) {
	if gcd(4096, 2048) != 2048 || gcd(12, 18) != 6 {
		t.Error("gcd mismatch")
	}
	if lcm(4096, 2048) != 4096 || lcm(4, 6) != 12 || lcm(0, 5) != 0 {
		t.Error("lcm mismatch")
	}
}

package vm

import (
	"math/bits"
	"testing"
)

func TestMaskValueContiguous(t *testing.T) {
	// rlwinm r0, r8, 12, 27, 29 from the jump-table worked example: 3 set
	// bits, forming 0x1c.
	if got := maskValue(27, 29); got != 0x1c {
		t.Errorf("expected 0x1c, got %#x", got)
	}
}

func TestMaskValueWrapEqualsFull(t *testing.T) {
	if got := maskValue(5, 4); got != 0xFFFFFFFF {
		t.Errorf("expected 0xFFFFFFFF, got %#x", got)
	}
}

func TestMaskValueWrapAround(t *testing.T) {
	// MB > ME+1: everything except the excluded middle is set.
	mask := maskValue(24, 7)
	excluded := maskValue(8, 23)
	if mask&excluded != 0 {
		t.Errorf("expected disjoint masks, got overlap %#x", mask&excluded)
	}
	if mask|excluded != 0xFFFFFFFF {
		t.Errorf("expected masks to cover all bits, got %#x", mask|excluded)
	}
}

func TestMaskValuePopcountAcrossAllFields(t *testing.T) {
	for mb := uint32(0); mb < 32; mb++ {
		for me := uint32(0); me < 32; me++ {
			mask := maskValue(mb, me)
			var want int
			switch {
			case mb <= me:
				want = int(me-mb) + 1
			case mb == me+1:
				want = 32
			default:
				want = 32 - int(mb-me-1)
			}
			if got := bits.OnesCount32(mask); got != want {
				t.Errorf("mb=%d me=%d: expected %d set bits, got %d", mb, me, want, got)
			}
		}
	}
}

func TestRotl32(t *testing.T) {
	if got := rotl32(0x80000000, 1); got != 1 {
		t.Errorf("expected 1, got %#x", got)
	}
	if got := rotl32(3, 2); got != 0xC {
		t.Errorf("expected 0xC, got %#x", got)
	}
	if got := rotl32(1, 32); got != 1 {
		t.Errorf("expected 1, got %#x", got)
	}
}

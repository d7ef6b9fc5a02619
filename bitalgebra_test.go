package mtl

import (
	"math"
	"math/bits"
	"testing"
)

func TestBitWidthMatchesPopcount(t *testing.T) {
	xs := []uint32{0, 1, 2, 3, 255, 256, 0xdeadbeef, math.MaxUint32}
	for _, x := range xs {
		if got, want := bitWidth32(x), bits.OnesCount32(x); got != want {
			t.Errorf("bitWidth32(%d) = %d, want %d", x, got, want)
		}
	}
}

func TestLsbOfPowersOfTwo(t *testing.T) {
	for k := 0; k <= 31; k++ {
		if got := lsb32(1 << uint(k)); got != k {
			t.Errorf("lsb32(1<<%d) = %d, want %d", k, got, k)
		}
	}
	if got := lsb32(0); got != lsbNone {
		t.Errorf("lsb32(0) = %d, want %d", got, lsbNone)
	}
}

func TestMsbMatchesClz(t *testing.T) {
	for _, x := range []uint32{1, 2, 3, 4, 255, 256, math.MaxUint32} {
		want := 31 - bits.LeadingZeros32(x)
		if got := msb32(x); got != want {
			t.Errorf("msb32(%d) = %d, want %d", x, got, want)
		}
	}
	if got := msb32(0); got != 0 {
		t.Errorf("msb32(0) = %d, want 0", got)
	}
}

func TestValidSubtree(t *testing.T) {
	cases := []struct {
		l, r uint32
		want bool
	}{
		{0, 0, true},
		{1, 1, true},
		{0, 1, true},
		{0, 3, true},
		{2, 3, true},
		{1, 2, false}, // not aligned: span 2 but left=1 not multiple of 2
		{0, 2, false}, // span 3 not a power of two
		{1, 0, false}, // right < left
		{0, nodeSetMaxLeaf, true},
		{0, nodeSetMaxLeaf + 1, false},
	}
	for _, c := range cases {
		if got := validSubtree(c.l, c.r); got != c.want {
			t.Errorf("validSubtree(%d,%d) = %v, want %v", c.l, c.r, got, c.want)
		}
	}
}

func TestLinearNodeIDBijectionVectors(t *testing.T) {
	cases := []struct {
		l, r uint32
		want uint64
	}{
		{0, 0, 0},
		{1, 1, 1},
		{0, 1, 2},
		{0, 3, 6},
		{0, 15, 30},
		{0, nodeSetMaxLeaf, (uint64(1) << 32) - 2},
	}
	for _, c := range cases {
		if !validSubtree(c.l, c.r) {
			t.Fatalf("test vector (%d,%d) is not a valid subtree", c.l, c.r)
		}
		if got := linearNodeID(c.l, c.r); got != c.want {
			t.Errorf("linearNodeID(%d,%d) = %d, want %d", c.l, c.r, got, c.want)
		}
	}
}

func TestLinearNodeIDInjective(t *testing.T) {
	seen := make(map[uint64][2]uint32)
	const n = 64
	for l := uint32(0); l < n; l++ {
		for r := l; r < n; r++ {
			if !validSubtree(l, r) {
				continue
			}
			id := linearNodeID(l, r)
			if prev, ok := seen[id]; ok {
				t.Fatalf("linearNodeID collision: (%d,%d) and (%d,%d) both map to %d",
					prev[0], prev[1], l, r, id)
			}
			seen[id] = [2]uint32{l, r}
		}
	}
}

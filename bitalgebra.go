package mtl

import "math/bits"

// lsbNone is returned by lsb32 for an input of zero, which has no set bit.
const lsbNone = -1

// bitWidth32 returns the population count (number of set bits) of x.
func bitWidth32(x uint32) int {
	return bits.OnesCount32(x)
}

// lsb32 returns the index of the lowest set bit of x, or lsbNone if x is zero.
func lsb32(x uint32) int {
	if x == 0 {
		return lsbNone
	}
	return bits.TrailingZeros32(x)
}

// msb32 returns the index of the highest set bit of x, or 0 if x is zero.
func msb32(x uint32) int {
	if x == 0 {
		return 0
	}
	return 31 - bits.LeadingZeros32(x)
}

// validSubtree reports whether (left, right) spans a perfect Merkle
// subtree: right-left+1 is a power of two and left is a multiple of it,
// with right bounded to fit in the node set's 31-bit leaf space.
func validSubtree(left, right uint32) bool {
	if right < left || right > nodeSetMaxLeaf {
		return false
	}
	span := right - left + 1
	if span&(span-1) != 0 {
		return false
	}
	return left%span == 0
}

// linearNodeID maps a valid subtree pair (left, right) onto the dense,
// bijective node-id space used to address node-set storage. The caller
// must check validSubtree first; linearNodeID is undefined otherwise.
//
//	id(l,r) = 2(r+1) - bit_width(r+1) - lsb(r+1) + msb(r-l+1) - 1
func linearNodeID(left, right uint32) uint64 {
	rp1 := right + 1
	return uint64(2*int64(rp1)) -
		uint64(bitWidth32(rp1)) -
		uint64(lsb32(rp1)) +
		uint64(msb32(right-left+1)) - 1
}

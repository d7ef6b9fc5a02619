package mtl

import (
	"encoding/binary"

	"github.com/bwesterb/byteswriter"
)

// authPathWireLen computes the exact encoded size of an AuthPath so its
// buffer can be allocated once and written in place via byteswriter,
// mirroring container.go's fixed-extent write pattern.
func authPathWireLen(ap *AuthPath, hashSize int) int {
	return hashSize + 2 + len(ap.SID) + 4 + 4 + 4 + 2 + int(ap.SiblingHashCount)*hashSize
}

// EncodeAuthPath serializes an authentication path per SPEC_FULL.md
// §4.6: randomizer | flags:u16 | sid | leaf_index:u32 | rung_left:u32 |
// rung_right:u32 | sibling_hash_count:u16 | sibling_hashes.
func EncodeAuthPath(randomizer []byte, ap *AuthPath) []byte {
	buf := make([]byte, authPathWireLen(ap, len(randomizer)))
	w := byteswriter.NewWriter(buf)
	w.Write(randomizer)
	w.Write(u16(ap.Flags))
	w.Write(ap.SID)
	w.Write(u32(ap.LeafIndex))
	w.Write(u32(ap.RungLeft))
	w.Write(u32(ap.RungRight))
	w.Write(u16(ap.SiblingHashCount))
	for _, h := range ap.SiblingHashes {
		w.Write(h)
	}
	return buf
}

// DecodeAuthPath parses the wire format EncodeAuthPath produces.
// sidLen and hashSize must be known out of band (from the algorithm
// descriptor), matching the reference's fixed-layout assumption.
func DecodeAuthPath(data []byte, sidLen, hashSize int) (randomizer []byte, ap *AuthPath, err error) {
	need := hashSize + 2 + sidLen + 4 + 4 + 4 + 2
	if len(data) < need {
		return nil, nil, errorf(StatusBadValue, "DecodeAuthPath: buffer too short for header")
	}
	off := 0
	randomizer = append([]byte{}, data[off:off+hashSize]...)
	off += hashSize
	flags := binary.BigEndian.Uint16(data[off:])
	off += 2
	sid := append([]byte{}, data[off:off+sidLen]...)
	off += sidLen
	leafIndex := binary.BigEndian.Uint32(data[off:])
	off += 4
	rungLeft := binary.BigEndian.Uint32(data[off:])
	off += 4
	rungRight := binary.BigEndian.Uint32(data[off:])
	off += 4
	count := binary.BigEndian.Uint16(data[off:])
	off += 2

	if len(data) < off+int(count)*hashSize {
		return nil, nil, errorf(StatusBadValue, "DecodeAuthPath: buffer too short for %d sibling hashes", count)
	}
	hashes := make([][]byte, count)
	for i := range hashes {
		hashes[i] = append([]byte{}, data[off:off+hashSize]...)
		off += hashSize
	}
	ap = &AuthPath{
		Flags:            flags,
		SID:              sid,
		LeafIndex:        leafIndex,
		RungLeft:         rungLeft,
		RungRight:        rungRight,
		SiblingHashCount: count,
		SiblingHashes:    hashes,
	}
	return randomizer, ap, nil
}

// ladderWireLen computes the exact encoded size of a Ladder.
func ladderWireLen(l *Ladder) int {
	n := 2 + len(l.SID) + 2
	for _, r := range l.Rungs {
		n += 4 + 4 + len(r.Hash)
	}
	return n
}

// EncodeLadder serializes a ladder per SPEC_FULL.md §4.6: flags:u16 |
// sid | rung_count:u16 | { left:u32 | right:u32 | hash }^rung_count.
func EncodeLadder(l *Ladder) []byte {
	buf := make([]byte, ladderWireLen(l))
	w := byteswriter.NewWriter(buf)
	w.Write(u16(l.Flags))
	w.Write(l.SID)
	w.Write(u16(l.RungCount))
	for _, r := range l.Rungs {
		w.Write(u32(r.Left))
		w.Write(u32(r.Right))
		w.Write(r.Hash)
	}
	return buf
}

// DecodeLadder parses the wire format EncodeLadder produces.
func DecodeLadder(data []byte, sidLen, hashSize int) (*Ladder, error) {
	need := 2 + sidLen + 2
	if len(data) < need {
		return nil, errorf(StatusBadValue, "DecodeLadder: buffer too short for header")
	}
	off := 0
	flags := binary.BigEndian.Uint16(data[off:])
	off += 2
	sid := append([]byte{}, data[off:off+sidLen]...)
	off += sidLen
	rungCount := binary.BigEndian.Uint16(data[off:])
	off += 2

	rungSize := 8 + hashSize
	if len(data) < off+int(rungCount)*rungSize {
		return nil, errorf(StatusBadValue, "DecodeLadder: buffer too short for %d rungs", rungCount)
	}
	rungs := make([]Rung, rungCount)
	for i := range rungs {
		left := binary.BigEndian.Uint32(data[off:])
		off += 4
		right := binary.BigEndian.Uint32(data[off:])
		off += 4
		hash := append([]byte{}, data[off:off+hashSize]...)
		off += hashSize
		rungs[i] = Rung{Left: left, Right: right, HashLength: uint16(hashSize), Hash: hash}
	}
	return &Ladder{Flags: flags, SID: sid, RungCount: rungCount, Rungs: rungs}, nil
}

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

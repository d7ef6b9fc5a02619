package mtl

import (
	"bytes"
	"testing"
)

func TestAuthPathRoundTrip(t *testing.T) {
	randomizer := bytesFromHexTest("0102030405060708090a0b0c0d0e0f10")
	ap := &AuthPath{
		Flags:            0,
		SID:              []byte{1, 2, 3, 4, 5, 6, 7, 8},
		LeafIndex:        5,
		RungLeft:         0,
		RungRight:        7,
		SiblingHashCount: 3,
		SiblingHashes: [][]byte{
			bytesFromHexTest("11111111111111111111111111111111"),
			bytesFromHexTest("22222222222222222222222222222222"),
			bytesFromHexTest("33333333333333333333333333333333"),
		},
	}
	wire := EncodeAuthPath(randomizer, ap)
	if len(wire) != authPathWireLen(ap, 16) {
		t.Fatalf("wire length mismatch: got %d want %d", len(wire), authPathWireLen(ap, 16))
	}

	gotRand, gotAP, err := DecodeAuthPath(wire, len(ap.SID), 16)
	if err != nil {
		t.Fatalf("DecodeAuthPath: %v", err)
	}
	if !bytes.Equal(gotRand, randomizer) {
		t.Fatalf("randomizer mismatch")
	}
	if gotAP.LeafIndex != ap.LeafIndex || gotAP.RungLeft != ap.RungLeft || gotAP.RungRight != ap.RungRight {
		t.Fatalf("header field mismatch: %+v", gotAP)
	}
	if len(gotAP.SiblingHashes) != len(ap.SiblingHashes) {
		t.Fatalf("sibling hash count mismatch")
	}
	for i := range ap.SiblingHashes {
		if !bytes.Equal(gotAP.SiblingHashes[i], ap.SiblingHashes[i]) {
			t.Fatalf("sibling hash %d mismatch", i)
		}
	}
}

func TestDecodeAuthPathRejectsShortBuffer(t *testing.T) {
	if _, _, err := DecodeAuthPath([]byte{1, 2, 3}, 8, 32); err == nil {
		t.Fatalf("expected error decoding truncated buffer")
	}
}

func TestDecodeAuthPathRejectsTruncatedSiblingHashes(t *testing.T) {
	ap := &AuthPath{
		SID:              []byte{0, 0, 0, 0, 0, 0, 0, 0},
		SiblingHashCount: 2,
		SiblingHashes: [][]byte{
			make([]byte, 16),
			make([]byte, 16),
		},
	}
	wire := EncodeAuthPath(make([]byte, 16), ap)
	truncated := wire[:len(wire)-10]
	if _, _, err := DecodeAuthPath(truncated, 8, 16); err == nil {
		t.Fatalf("expected error decoding buffer truncated mid sibling-hash list")
	}
}

func TestLadderRoundTrip(t *testing.T) {
	l := &Ladder{
		SID: []byte{9, 9, 9, 9, 9, 9, 9, 9},
		Rungs: []Rung{
			{Left: 0, Right: 3, HashLength: 16, Hash: make([]byte, 16)},
			{Left: 4, Right: 5, HashLength: 16, Hash: make([]byte, 16)},
		},
	}
	l.RungCount = uint16(len(l.Rungs))
	wire := EncodeLadder(l)
	if len(wire) != ladderWireLen(l) {
		t.Fatalf("wire length mismatch")
	}
	got, err := DecodeLadder(wire, len(l.SID), 16)
	if err != nil {
		t.Fatalf("DecodeLadder: %v", err)
	}
	if got.RungCount != l.RungCount || len(got.Rungs) != len(l.Rungs) {
		t.Fatalf("rung count mismatch")
	}
	for i := range l.Rungs {
		if got.Rungs[i].Left != l.Rungs[i].Left || got.Rungs[i].Right != l.Rungs[i].Right {
			t.Fatalf("rung %d bounds mismatch", i)
		}
	}
}

func TestDecodeLadderRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeLadder([]byte{0, 1}, 8, 32); err == nil {
		t.Fatalf("expected error decoding truncated ladder header")
	}
}

func bytesFromHexTest(s string) []byte {
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := hexNibble(s[2*i])
		lo := hexNibble(s[2*i+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

package mtl

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/sha3"
)

// HashKind selects the underlying hash family a scheme descriptor binds
// its scheme hooks to (SPEC_FULL.md §4.3).
type HashKind int

const (
	HashSHA2 HashKind = iota
	HashSHAKE
)

// newHasher returns a fresh hash.Hash appropriate for n-byte digests of
// the given kind: SHA-256 for n<=16 under SHA-2, SHA-512 otherwise.
func newHasher(kind HashKind, n int) hash.Hash {
	switch kind {
	case HashSHA2:
		if n <= 16 {
			return sha256.New()
		}
		return sha512.New()
	default:
		return sha3.NewShake256()
	}
}

// shake256 writes outLen bytes of SHAKE256(data) into a fresh slice.
func shake256(data []byte, outLen int) []byte {
	out := make([]byte, outLen)
	h := sha3.NewShake256()
	h.Write(data)
	h.Read(out)
	return out
}

// blockPad right-pads seed with zeros to the SHA-2 block size appropriate
// for an n-byte digest: 64 bytes (SHA-256 block) when n<=16, 128 bytes
// (SHA-512 block) otherwise.
func blockPad(seed []byte, n int) []byte {
	blockSize := 64
	if n > 16 {
		blockSize = 128
	}
	out := make([]byte, blockSize)
	copy(out, seed)
	return out
}

// mgf1 implements the MGF1 mask generation function (RFC 8017 §B.2.1)
// over the given hash constructor, producing maskLen bytes from seed.
func mgf1(seed []byte, maskLen int, newH func() hash.Hash) []byte {
	h := newH()
	hLen := h.Size()
	out := make([]byte, 0, maskLen+hLen)
	var counter uint32
	for len(out) < maskLen {
		h.Reset()
		h.Write(seed)
		var c [4]byte
		c[0] = byte(counter >> 24)
		c[1] = byte(counter >> 16)
		c[2] = byte(counter >> 8)
		c[3] = byte(counter)
		h.Write(c[:])
		out = h.Sum(out)
		counter++
	}
	return out[:maskLen]
}

// hmacSHA256 computes HMAC-SHA256(key, data), used by HMACSigner
// (signer.go) and nowhere in the MTL core itself.
func hmacSHA256(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}

// mgf1sha2 expands seed to outLen bytes via MGF1 built on the SHA-2
// family hasher matching hash_size n (SHA-256 for n<=16, SHA-512
// otherwise). It derives the robust-mode mask on the SHA-2 branch and
// runs as the second stage of every SHA-2 message hash, whatever the
// requested length.
func mgf1sha2(seed []byte, outLen, n int) []byte {
	return mgf1(seed, outLen, func() hash.Hash { return newHasher(HashSHA2, n) })
}

package mtl

import "github.com/templexxx/xorsimd"

// sphincsParams bundles the SLH-DSA/SPHINCS+ public-key material and
// hashing mode a context's scheme hooks are bound to. It replaces the
// reference implementation's opaque sig_params void* with a sealed
// struct (SPEC_FULL.md §9).
type sphincsParams struct {
	pkSeed []byte
	pkRoot []byte
	skPRF  []byte
	robust bool
	kind   HashKind
	n      int // hash size in bytes
}

// adrsFor builds the ADRS for the given type and subtree pair, choosing
// the full (32 B) or compressed (22 B) encoding per the scheme's hash
// kind (SPEC_FULL.md §4.3).
func (p *sphincsParams) adrsFor(typ uint32, sid []byte, left, right uint32) []byte {
	if p.kind == HashSHAKE {
		return mtlnsAdrsFull(typ, sid, left, right)
	}
	return mtlnsAdrsCompressed(uint8(typ), sid, left, right)
}

// maskFor derives the robust-mode mask: MGF1-SHA-X(pkSeed, ADRS, dataLen)
// on the SHA-2 branch, SHAKE256(pkSeed||ADRS, dataLen) on the SHAKE
// branch.
func (p *sphincsParams) maskFor(adrs []byte, dataLen int) []byte {
	if p.kind == HashSHAKE {
		buf := append(append([]byte{}, p.pkSeed...), adrs...)
		return shake256(buf, dataLen)
	}
	buf := append(append([]byte{}, p.pkSeed...), adrs...)
	return mgf1sha2(buf, dataLen, p.n)
}

// hashLeaf is Algorithm 1: hashing a data value to produce a leaf node.
func (p *sphincsParams) hashLeaf(sid []byte, nodeID uint32, msg []byte) []byte {
	adrs := p.adrsFor(adrsTypeLeaf, sid, nodeID, nodeID)
	return p.spxHashFixed(adrs, msg, p.n)
}

// hashNode is Algorithm 2: hashing two child nodes to produce an
// internal node.
func (p *sphincsParams) hashNode(sid []byte, left, right uint32, leftHash, rightHash []byte) []byte {
	adrs := p.adrsFor(adrsTypeInternal, sid, left, right)
	data := append(append([]byte{}, leftHash...), rightHash...)
	return p.spxHashFixed(adrs, data, p.n)
}

// spxHashFixed is spxHash without MGF1 expansion: used for leaf/internal
// hashing where the requested hash length never exceeds the native
// digest size.
func (p *sphincsParams) spxHashFixed(adrs, data []byte, hashLen int) []byte {
	work := data
	if p.robust {
		mask := p.maskFor(adrs, len(data))
		work = make([]byte, len(data))
		xorsimd.Bytes(work, data, mask)
	}
	if p.kind == HashSHAKE {
		buf := append(append(append([]byte{}, p.pkSeed...), adrs...), work...)
		return shake256(buf, hashLen)
	}
	h := newHasher(HashSHA2, hashLen)
	h.Write(blockPad(p.pkSeed, p.n))
	h.Write(adrs)
	h.Write(work)
	sum := h.Sum(nil)
	return sum[:hashLen]
}

// prfMsg computes R_mtl = PRF_msg(SK.prf, randomizer, ADRS||msg), the
// canonical per-message randomness hash_msg derives on its first call
// for a given leaf.
func (p *sphincsParams) prfMsg(randomizer, adrs, msg []byte) []byte {
	buf := append(append(append(append([]byte{}, p.skPRF...), randomizer...), adrs...), msg...)
	if p.kind == HashSHAKE {
		return shake256(buf, p.n)
	}
	h := newHasher(HashSHA2, p.n)
	h.Write(buf)
	return h.Sum(nil)[:p.n]
}

// hashMsg is hash_msg (SPEC_FULL.md §4.3): computes R_mtl, then
// data_value = H_msg_mtl(R_mtl, PK.seed, PK.root, ADRS||msg), returning
// both the hash and the canonical randomizer to persist. On the SHAKE
// branch that is a single SHAKE256 call; on the SHA-2 branch the first
// SHA-X pass only ever produces a native digest, so a second MGF1-SHA-X
// pass over R_mtl||PK.seed||hash always runs to stretch or truncate it
// to hash_len, matching the reference's two-stage H_msg_mtl.
func (p *sphincsParams) hashMsg(sid []byte, nodeID uint32, randomizer, msg []byte, hashLen int) (hashOut, rmtl []byte) {
	adrs := p.adrsFor(adrsTypeMessage, sid, nodeID, nodeID)
	rmtl = p.prfMsg(randomizer, adrs, msg)
	buf := append(append(append(append(append([]byte{}, rmtl...), p.pkSeed...), p.pkRoot...), adrs...), msg...)
	if p.kind == HashSHAKE {
		return shake256(buf, hashLen), rmtl
	}
	h := newHasher(HashSHA2, hashLen)
	h.Write(buf)
	intermediate := h.Sum(nil)
	mgfInput := append(append(append([]byte{}, rmtl...), p.pkSeed...), intermediate...)
	return mgf1sha2(mgfInput, hashLen, p.n), rmtl
}

// Package mtl implements Merkle Tree Ladder (MTL) mode, a hash-based
// signature amortization scheme layered over an SLH-DSA / SPHINCS+
// family underlying signature.
package mtl

import (
	"bytes"
	"crypto/rand"
)

// LibraryKey is the façade's opaque key context: the selected scheme,
// public/secret key material, the underlying-signature collaborator,
// and the node series it accumulates message leaves into. It mirrors
// the reference's MTLLIB_CTX struct field for field.
type LibraryKey struct {
	scheme    *Scheme
	publicKey []byte
	secretKey []byte
	signer    UnderlyingSigner
	ctx       *Context

	signedLadder []byte // cached mtllib_sign_get_signed_ladder output
	ladderSig    []byte // the underlying signature over the current ladder
}

// KeyNew allocates a fresh LibraryKey for the named algorithm, generates
// a new underlying keypair via signer, and derives a random series
// identifier. ctxStr is the optional domain-separation context string
// (SPEC_FULL.md §4.3).
func KeyNew(name string, ctxStr []byte, signer UnderlyingSigner) (*LibraryKey, error) {
	scheme, err := ParamsFromName2(name)
	if err != nil {
		return nil, err
	}
	if signer == nil {
		return nil, errorf(StatusNullParams, "KeyNew: signer is required")
	}
	pub, sec, err := signer.GenerateKey()
	if err != nil {
		return nil, wrapErrorf(err, StatusSignFail, "KeyNew: signer.GenerateKey failed")
	}

	sid := make([]byte, scheme.SIDLen)
	if _, err := rand.Read(sid); err != nil {
		return nil, wrapErrorf(err, StatusResourceFail, "KeyNew: rand.Read(sid) failed")
	}

	return newLibraryKey(scheme, ctxStr, sid, pub, sec, signer)
}

// KeyPubkeyFromParams builds a verifier-side LibraryKey from a known
// public key and series identifier, with no secret key or signer
// attached: it never signs. It verifies condensed signatures against a
// trusted ladder; Verify of a full signature and VerifySignedLadder need
// a signer and fail on such a key with StatusIndeterminate.
func KeyPubkeyFromParams(name string, ctxStr, pubkey, sid []byte) (*LibraryKey, error) {
	scheme, err := ParamsFromName2(name)
	if err != nil {
		return nil, err
	}
	return newLibraryKey(scheme, ctxStr, sid, pubkey, nil, nil)
}

func newLibraryKey(scheme *Scheme, ctxStr, sid, pubkey, seckey []byte, signer UnderlyingSigner) (*LibraryKey, error) {
	seed := pubkey
	if len(seed) > scheme.N {
		seed = seed[:scheme.N]
	}
	spx := &sphincsParams{
		pkSeed: seed,
		pkRoot: pubkey,
		skPRF:  seckey,
		robust: scheme.Robust,
		kind:   scheme.Kind,
		n:      scheme.N,
	}
	ctx, err := initNS(seed, sid, ctxStr, spx, scheme.Randomize)
	if err != nil {
		return nil, err
	}
	return &LibraryKey{
		scheme:    scheme,
		publicKey: append([]byte{}, pubkey...),
		secretKey: append([]byte{}, seckey...),
		signer:    signer,
		ctx:       ctx,
	}, nil
}

// keyBlobHeaderLen is flags:u16 | scheme OID[6] | sid_len:u8.
const keyBlobHeaderLen = 2 + 6 + 1

// KeyToBuffer serializes the persistable parts of a LibraryKey: scheme
// OID, SID, public key, and (if present) secret key, each length-prefixed.
func (k *LibraryKey) KeyToBuffer() []byte {
	total := keyBlobHeaderLen + len(k.ctx.sid) +
		2 + len(k.publicKey) + 2 + len(k.secretKey)
	buf := make([]byte, total)
	off := 2 // flags, currently always zero
	copy(buf[off:], k.scheme.OID[:])
	off += 6
	buf[off] = byte(len(k.ctx.sid))
	off++
	off += copy(buf[off:], k.ctx.sid)
	off += copy(buf[off:], u16(uint16(len(k.publicKey))))
	off += copy(buf[off:], k.publicKey)
	off += copy(buf[off:], u16(uint16(len(k.secretKey))))
	copy(buf[off:], k.secretKey)
	return buf
}

// KeyFromBuffer parses the wire format KeyToBuffer produces. signer may
// be nil for a verify-only key.
func KeyFromBuffer(buf []byte, signer UnderlyingSigner) (*LibraryKey, error) {
	if len(buf) < keyBlobHeaderLen+1 {
		return nil, errorf(StatusBadValue, "KeyFromBuffer: buffer too short for header")
	}
	off := 2
	var oid [6]byte
	copy(oid[:], buf[off:off+6])
	off += 6
	scheme := SchemeFromOID(oid)
	if scheme == nil {
		return nil, errorf(StatusBadAlgorithm, "KeyFromBuffer: unrecognized OID %v", oid)
	}
	sidLen := int(buf[off])
	off++
	if len(buf) < off+sidLen+2 {
		return nil, errorf(StatusBadValue, "KeyFromBuffer: buffer too short for sid")
	}
	sid := append([]byte{}, buf[off:off+sidLen]...)
	off += sidLen

	pubLen := int(decodeU16(buf[off:]))
	off += 2
	if len(buf) < off+pubLen+2 {
		return nil, errorf(StatusBadValue, "KeyFromBuffer: buffer too short for public key")
	}
	pub := append([]byte{}, buf[off:off+pubLen]...)
	off += pubLen

	secLen := int(decodeU16(buf[off:]))
	off += 2
	if len(buf) < off+secLen {
		return nil, errorf(StatusBadValue, "KeyFromBuffer: buffer too short for secret key")
	}
	sec := append([]byte{}, buf[off:off+secLen]...)

	return newLibraryKey(scheme, nil, sid, pub, sec, signer)
}

func decodeU16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }

// SignAppend hashes msg into the key's node series, returning a Handle
// future signature calls use to address the leaf.
func (k *LibraryKey) SignAppend(msg []byte) (*Handle, error) {
	leafIndex, err := k.ctx.hashAndAppend(msg)
	if err != nil {
		return nil, err
	}
	return &Handle{SID: append([]byte{}, k.ctx.sid...), LeafIndex: leafIndex}, nil
}

// SignGetCondensedSig builds the condensed signature for handle:
// randomizer || authentication path, wire-encoded.
func (k *LibraryKey) SignGetCondensedSig(handle *Handle) ([]byte, error) {
	if handle == nil {
		return nil, errorf(StatusNullParams, "SignGetCondensedSig: handle is required")
	}
	randomizer, ap, err := k.ctx.randomizerAndAuthPath(handle.LeafIndex)
	if err != nil {
		return nil, err
	}
	return EncodeAuthPath(randomizer, ap), nil
}

// mtlLadderSep is MTL_LADDER_SEP (SPEC_FULL.md §4.5): the leading octet
// of the scheme-separation prefix signed/verified with every ladder.
const mtlLadderSep = 129

// ladderSignedInput builds sep||wireLadder, the buffer the underlying
// signer actually signs/verifies for a ladder: sep = octet(129) ||
// octet(len(ctx_str)) || ctx_str || OID_MTL (SPEC_FULL.md §4.5). Binding
// ctx_str and the algorithm OID into the signed input is what stops a
// ladder signed under one context string or algorithm from verifying
// under another.
func (k *LibraryKey) ladderSignedInput(wireLadder []byte) []byte {
	sep := make([]byte, 0, 2+len(k.ctx.ctxStr)+len(k.scheme.OID))
	sep = append(sep, mtlLadderSep, byte(len(k.ctx.ctxStr)))
	sep = append(sep, k.ctx.ctxStr...)
	sep = append(sep, k.scheme.OID[:]...)
	return append(sep, wireLadder...)
}

// SignGetSignedLadder signs (or returns the cached signature over) the
// key's current ladder, returning u16(len(ladder)) || ladder ||
// underlying_signature.
func (k *LibraryKey) SignGetSignedLadder() ([]byte, error) {
	if k.signer == nil || k.secretKey == nil {
		return nil, errorf(StatusSignFail, "SignGetSignedLadder: no signer attached to this key")
	}
	l, err := k.ctx.ladder()
	if err != nil {
		return nil, err
	}
	wireLadder := EncodeLadder(l)
	if !bytes.Equal(wireLadder, k.signedLadder) {
		sig, err := k.signer.Sign(k.secretKey, k.ladderSignedInput(wireLadder))
		if err != nil {
			return nil, wrapErrorf(err, StatusSignFail, "SignGetSignedLadder: signer.Sign failed")
		}
		k.signedLadder = wireLadder
		k.ladderSig = sig
	}
	out := make([]byte, 2+len(wireLadder)+len(k.ladderSig))
	copy(out, u16(uint16(len(wireLadder))))
	copy(out[2:], wireLadder)
	copy(out[2+len(wireLadder):], k.ladderSig)
	return out, nil
}

// SignGetFullSig is SignGetCondensedSig followed by a freshly signed
// ladder: condensed_sig || signed_ladder.
func (k *LibraryKey) SignGetFullSig(handle *Handle) ([]byte, error) {
	condensed, err := k.SignGetCondensedSig(handle)
	if err != nil {
		return nil, err
	}
	signedLadder, err := k.SignGetSignedLadder()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4+len(condensed)+len(signedLadder))
	copy(out, u32(uint32(len(condensed))))
	copy(out[4:], condensed)
	copy(out[4+len(condensed):], signedLadder)
	return out, nil
}

// splitFullSig divides a SignGetFullSig buffer back into its condensed
// and signed-ladder parts.
func splitFullSig(sig []byte) (condensed, signedLadder []byte, err error) {
	if len(sig) < 4 {
		return nil, nil, errorf(StatusBadValue, "splitFullSig: buffer too short")
	}
	n := int(decodeU32(sig))
	if len(sig) < 4+n {
		return nil, nil, errorf(StatusBadValue, "splitFullSig: condensed length exceeds buffer")
	}
	return sig[4 : 4+n], sig[4+n:], nil
}

func decodeU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Verify checks sig (as produced by SignGetFullSig or SignGetCondensedSig
// paired with a separately trusted ladderBuf) against msg. Exactly one
// success path runs per branch (SPEC_FULL.md §9 open question 3): the
// full-signature branch verifies its embedded ladder once, the
// condensed-with-trusted-ladder branch trusts ladderBuf outright.
func (k *LibraryKey) Verify(msg, sig, ladderBuf []byte) (bool, error) {
	condensed, embeddedLadder, err := splitFullSig(sig)
	isFull := err == nil
	if !isFull {
		condensed = sig
		if ladderBuf == nil {
			return false, errorf(StatusNoLadder, "Verify: condensed signature requires a trusted ladder")
		}
	}

	var ladder *Ladder
	if isFull {
		wireLadder, ladderSig, splitErr := splitSignedLadder(embeddedLadder)
		if splitErr != nil {
			return false, wrapErrorf(splitErr, StatusIndeterminate, "Verify: embedded signed ladder is truncated")
		}
		if k.signer == nil {
			return false, errorf(StatusIndeterminate, "Verify: no signer attached to verify the embedded ladder")
		}
		ok, err := k.signer.Verify(k.publicKey, k.ladderSignedInput(wireLadder), ladderSig)
		if err != nil {
			return false, wrapErrorf(err, StatusIndeterminate, "Verify: signer.Verify failed")
		}
		if !ok {
			return false, errorf(StatusBogusCrypto, "Verify: embedded ladder signature is invalid")
		}
		ladder, err = DecodeLadder(wireLadder, k.scheme.SIDLen, k.scheme.N)
		if err != nil {
			return false, wrapErrorf(err, StatusIndeterminate, "Verify: embedded ladder is truncated")
		}
	} else {
		ladder, err = DecodeLadder(ladderBuf, k.scheme.SIDLen, k.scheme.N)
		if err != nil {
			return false, wrapErrorf(err, StatusIndeterminate, "Verify: trusted ladder is truncated")
		}
	}

	randomizer, auth, err := DecodeAuthPath(condensed, k.scheme.SIDLen, k.scheme.N)
	if err != nil {
		return false, wrapErrorf(err, StatusIndeterminate, "Verify: condensed signature is truncated")
	}
	rung, err := rungFor(auth, ladder)
	if err != nil {
		return false, err
	}
	if err := k.ctx.hashAndVerify(msg, randomizer, auth, rung); err != nil {
		return false, err
	}
	return true, nil
}

// splitSignedLadder divides a SignGetSignedLadder buffer back into its
// wire-encoded ladder and underlying signature.
func splitSignedLadder(buf []byte) (wireLadder, sig []byte, err error) {
	if len(buf) < 2 {
		return nil, nil, errorf(StatusBadValue, "splitSignedLadder: buffer too short")
	}
	n := int(decodeU16(buf))
	if len(buf) < 2+n {
		return nil, nil, errorf(StatusBadValue, "splitSignedLadder: ladder length exceeds buffer")
	}
	return buf[2 : 2+n], buf[2+n:], nil
}

// VerifySignedLadder checks a standalone SignGetSignedLadder buffer
// against the key's public key, returning OK iff the underlying
// signature verifies (SPEC_FULL.md §9 open question 2 — not inverted).
func (k *LibraryKey) VerifySignedLadder(buf []byte) (bool, error) {
	wireLadder, sig, err := splitSignedLadder(buf)
	if err != nil {
		return false, wrapErrorf(err, StatusIndeterminate, "VerifySignedLadder: signed ladder is truncated")
	}
	if k.signer == nil {
		return false, errorf(StatusIndeterminate, "VerifySignedLadder: no signer attached")
	}
	ok, err := k.signer.Verify(k.publicKey, k.ladderSignedInput(wireLadder), sig)
	if err != nil {
		return false, wrapErrorf(err, StatusIndeterminate, "VerifySignedLadder: signer.Verify failed")
	}
	return ok, nil
}

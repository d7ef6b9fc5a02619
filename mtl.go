package mtl

import (
	"bytes"
	"crypto/rand"
)

// AuthPath is the authentication path from a leaf to the rung of a
// ladder that covers it (SPEC_FULL.md §3).
type AuthPath struct {
	Flags            uint16
	SID              []byte
	LeafIndex        uint32
	RungLeft         uint32
	RungRight        uint32
	SiblingHashCount uint16
	SiblingHashes    [][]byte
}

// Rung is one entry of a Ladder: a perfect-subtree root.
type Rung struct {
	Left       uint32
	Right      uint32
	HashLength uint16
	Hash       []byte
}

// Ladder is the ordered tuple of perfect-subtree roots tiling
// [0, leafCount) of a node series at the moment it was produced.
type Ladder struct {
	Flags     uint16
	SID       []byte
	RungCount uint16
	Rungs     []Rung
}

// Context is one MTL node series: seed, SID, randomization mode, bound
// scheme hooks, and its node set (SPEC_FULL.md §3 "MTL context").
type Context struct {
	seed      []byte
	sid       []byte
	ctxStr    []byte
	randomize bool
	scheme    *sphincsParams
	nodes     *nodeSet
}

// Handle is an opaque, pointer-free cursor to an appended leaf,
// returned by SignAppend and consumed by the signature-assembly calls.
type Handle struct {
	SID       []byte
	LeafIndex uint32
}

// initNS is Algorithm 3: allocate a context, duplicate seed and sid,
// clone ctxStr (not alias it), and initialize the node set.
func initNS(seed, sid, ctxStr []byte, scheme *sphincsParams, randomize bool) (*Context, error) {
	if seed == nil || sid == nil {
		return nil, errorf(StatusNullParams, "initNS: seed and sid are required")
	}
	if len(sid) > 64 {
		return nil, errorf(StatusBadParam, "initNS: sid length %d exceeds 64 bytes", len(sid))
	}
	if len(ctxStr) > 255 {
		return nil, errorf(StatusBadParam, "initNS: ctx_str length %d exceeds 255 bytes", len(ctxStr))
	}
	ctx := &Context{
		seed:      append([]byte{}, seed...),
		sid:       append([]byte{}, sid...),
		ctxStr:    append([]byte{}, ctxStr...),
		randomize: randomize,
		scheme:    scheme,
		nodes:     newNodeSet(scheme.n),
	}
	return ctx, nil
}

// appendLeaf is Algorithm 4 (append): hash value into a leaf and insert it, then
// back-fill every interior node its insertion completes. leafIndex must
// equal the node set's leaf_count at call time; the node set alone
// performs the (idempotent) leaf_count advance (SPEC_FULL.md §9 open
// question 1 — no double advance).
func (ctx *Context) appendLeaf(leafIndex uint32, value []byte) error {
	if leafIndex != ctx.nodes.leafCount {
		return errorf(StatusBadParam, "append: leaf_index %d != leaf_count %d", leafIndex, ctx.nodes.leafCount)
	}
	h := ctx.scheme.hashLeaf(ctx.sid, leafIndex, value)
	if err := ctx.nodes.insert(leafIndex, leafIndex, h); err != nil {
		return err
	}
	return ctx.nodes.updateParents(leafIndex, func(left, right uint32, l, r []byte) ([]byte, error) {
		return ctx.scheme.hashNode(ctx.sid, left, right, l, r), nil
	})
}

// hashAndAppend generates a randomizer, derives the data_value for msg
// at a fresh leaf index via hash_msg, stores the canonical randomizer,
// and appends the data_value as a leaf. Returns the new leaf index.
func (ctx *Context) hashAndAppend(msg []byte) (uint32, error) {
	leafIndex := ctx.nodes.leafCount
	randomizer, err := ctx.generateRandomizer()
	if err != nil {
		return 0, err
	}
	dataValue, rmtl := ctx.scheme.hashMsg(ctx.sid, leafIndex, randomizer, msg, ctx.scheme.n)
	if err := ctx.nodes.insertRandomizer(leafIndex, rmtl); err != nil {
		return 0, err
	}
	if err := ctx.appendLeaf(leafIndex, dataValue); err != nil {
		return 0, err
	}
	return leafIndex, nil
}

// generateRandomizer samples n CSPRNG bytes in randomized mode, or
// returns a copy of the public seed in deterministic mode.
func (ctx *Context) generateRandomizer() ([]byte, error) {
	if !ctx.randomize {
		return append([]byte{}, ctx.seed...), nil
	}
	buf := make([]byte, ctx.scheme.n)
	if _, err := rand.Read(buf); err != nil {
		return nil, wrapErrorf(err, StatusResourceFail, "generateRandomizer: rand.Read failed")
	}
	return buf, nil
}

// coveringSubtree finds the smallest perfect subtree currently covering
// leafIndex, used by authPath.
func coveringSubtree(leafCount, leafIndex uint32) (left, right uint32) {
	for i := msb32(leafCount) + 1; i >= 0; i-- {
		if leafCount&(1<<uint(i)) != 0 {
			right = left + (1 << uint(i)) - 1
			if leafIndex <= right {
				return left, right
			}
			left = right + 1
		}
	}
	return left, right
}

// authPath is Algorithm 5: compute the authentication path from
// leafIndex up to the rung of its covering subtree.
func (ctx *Context) authPath(leafIndex uint32) (*AuthPath, error) {
	if leafIndex >= ctx.nodes.leafCount {
		return nil, errorf(StatusBadParam, "authPath: leaf_index %d outside node set (leaf_count=%d)", leafIndex, ctx.nodes.leafCount)
	}
	left, right := coveringSubtree(ctx.nodes.leafCount, leafIndex)
	count := bitWidth32(right - left)

	ap := &AuthPath{
		SID:              append([]byte{}, ctx.sid...),
		LeafIndex:        leafIndex,
		RungLeft:         left,
		RungRight:        right,
		SiblingHashCount: uint16(count),
		SiblingHashes:    make([][]byte, 0, count),
	}
	for index := 0; index < count; index++ {
		var pathl uint32
		bit := uint32(1) << uint(index)
		if leafIndex&bit != 0 {
			pathl = (^(bit - 1) & leafIndex) - bit
		} else {
			pathl = (^(bit - 1) & leafIndex) + bit
		}
		pathr := pathl + bit - 1
		hash, err := ctx.nodes.fetch(pathl, pathr)
		if err != nil {
			return nil, err
		}
		ap.SiblingHashes = append(ap.SiblingHashes, hash)
	}
	return ap, nil
}

// randomizerAndAuthPath bundles the stored randomizer and authentication
// path for leafIndex, the pairing a condensed signature serializes.
func (ctx *Context) randomizerAndAuthPath(leafIndex uint32) (randomizer []byte, ap *AuthPath, err error) {
	randomizer, err = ctx.nodes.getRandomizer(leafIndex)
	if err != nil {
		return nil, nil, err
	}
	ap, err = ctx.authPath(leafIndex)
	if err != nil {
		return nil, nil, err
	}
	return randomizer, ap, nil
}

// ladder is Algorithm 6: enumerate the current rungs from largest to
// smallest span.
func (ctx *Context) ladder() (*Ladder, error) {
	l := &Ladder{SID: append([]byte{}, ctx.sid...)}
	var left uint32
	for i := msb32(ctx.nodes.leafCount); i >= 0; i-- {
		if ctx.nodes.leafCount&(1<<uint(i)) == 0 {
			continue
		}
		right := left + (1 << uint(i)) - 1
		hash, err := ctx.nodes.fetch(left, right)
		if err != nil {
			return nil, err
		}
		l.Rungs = append(l.Rungs, Rung{Left: left, Right: right, HashLength: uint16(ctx.scheme.n), Hash: hash})
		left = right + 1
	}
	l.RungCount = uint16(len(l.Rungs))
	return l, nil
}

// rungFor is Algorithm 7 (rung): select the ladder rung associated with
// an authentication path, or return a StatusNoLadder error if none covers it.
func rungFor(auth *AuthPath, ladder *Ladder) (*Rung, error) {
	if auth == nil || ladder == nil {
		return nil, errorf(StatusNullParams, "rung: auth path and ladder are required")
	}
	if !bytes.Equal(auth.SID, ladder.SID) {
		return nil, errorf(StatusBadParam, "rung: SID mismatch between auth path and ladder")
	}
	binPower := (uint32(1) << auth.SiblingHashCount) - 1
	left := auth.LeafIndex &^ binPower
	right := left + binPower
	if auth.RungLeft != left || auth.RungRight != right {
		return nil, errorf(StatusBadParam, "rung: auth path does not cover a valid subtree")
	}

	var assoc *Rung
	minDegree := -1
	for i := range ladder.Rungs {
		r := &ladder.Rungs[i]
		if r.Left > auth.LeafIndex || r.Right < auth.LeafIndex {
			continue
		}
		degree := lsb32(r.Right - r.Left + 1)
		if degree < 0 {
			continue
		}
		lsbLeft := lsb32(r.Left)
		okDegree := (lsbLeft < 0 || degree <= lsbLeft) && (r.Right-r.Left+1 == uint32(1)<<uint(degree)) && degree <= int(auth.SiblingHashCount)
		if !okDegree {
			continue
		}
		if assoc == nil || degree < minDegree {
			assoc = r
			minDegree = degree
		}
	}
	if assoc == nil {
		return nil, errorf(StatusNoLadder, "rung: no ladder rung covers the authentication path")
	}
	return assoc, nil
}

// verify is Algorithm 8: recompute the leaf hash and climb sibling
// hashes to the associated rung, comparing byte-for-byte at the end.
func (ctx *Context) verify(value []byte, auth *AuthPath, rung *Rung) error {
	if value == nil || auth == nil || rung == nil {
		return errorf(StatusNullParams, "verify: value, auth path, and rung are required")
	}
	target := ctx.scheme.hashLeaf(auth.SID, auth.LeafIndex, value)

	if auth.LeafIndex == rung.Left && auth.LeafIndex == rung.Right {
		if !bytes.Equal(target, rung.Hash) {
			return errorf(StatusBogusCrypto, "verify: leaf hash does not match rung")
		}
		return nil
	}

	for i := 1; i <= int(auth.SiblingHashCount); i++ {
		left := auth.LeafIndex &^ (uint32(1)<<uint(i) - 1)
		right := left + (uint32(1)<<uint(i) - 1)
		mid := left + (uint32(1) << uint(i-1))
		sibling := auth.SiblingHashes[i-1]

		if auth.LeafIndex < mid {
			target = ctx.scheme.hashNode(auth.SID, left, right, target, sibling)
		} else {
			target = ctx.scheme.hashNode(auth.SID, left, right, sibling, target)
		}

		if left == rung.Left && right == rung.Right {
			if !bytes.Equal(target, rung.Hash) {
				return errorf(StatusBogusCrypto, "verify: recomputed hash does not match rung at (%d,%d)", left, right)
			}
			return nil
		}
	}
	return errorf(StatusBogusCrypto, "verify: authentication path never reached the associated rung")
}

// hashAndVerify recomputes data_value for value using the caller-supplied
// randomizer as R_mtl (the stored rmtl a condensed signature carries, so
// no PRF_msg step and no SK.prf are involved), then runs verify.
func (ctx *Context) hashAndVerify(value, randomizer []byte, auth *AuthPath, rung *Rung) error {
	if auth == nil {
		return errorf(StatusNullParams, "hashAndVerify: auth path is required")
	}
	p := ctx.scheme
	adrs := p.adrsFor(adrsTypeMessage, auth.SID, auth.LeafIndex, auth.LeafIndex)
	buf := append(append(append(append(append([]byte{}, randomizer...), p.pkSeed...), p.pkRoot...), adrs...), value...)
	var hashOut []byte
	if p.kind == HashSHAKE {
		hashOut = shake256(buf, p.n)
	} else {
		h := newHasher(HashSHA2, p.n)
		h.Write(buf)
		mgfInput := append(append(append([]byte{}, randomizer...), p.pkSeed...), h.Sum(nil)...)
		hashOut = mgf1sha2(mgfInput, p.n, p.n)
	}
	return ctx.verify(hashOut, auth, rung)
}

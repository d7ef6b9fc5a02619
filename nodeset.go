package mtl

// nodeSet is the persistent, page-backed store of leaf, internal, and
// randomizer hashes indexed by subtree coordinates (SPEC_FULL.md §3,
// §4.2). It holds two parallel page planes: the tree plane (addressed by
// linearNodeID(left,right) * hashSize) and the randomizer plane
// (addressed by leafIndex * hashSize).
type nodeSet struct {
	hashSize  int
	leafCount uint32

	tree       pageStore
	randomizer pageStore
}

func newNodeSet(hashSize int) *nodeSet {
	return &nodeSet{
		hashSize:   hashSize,
		tree:       newMemPageStore(treePageSize, treeMaxPages),
		randomizer: newMemPageStore(treePageSize, treeRandomizerPages),
	}
}

// openDiskNodeSet backs a node set with a pair of mmap'd, lockfile-guarded
// files at basePath+".tree" and basePath+".rand" instead of in-memory
// pages, so that stored hashes and randomizers survive process restarts.
// leafCount is not stored: a reopened node set starts with leafCount zero,
// and fetch refuses every pair until the caller sets it.
func openDiskNodeSet(basePath string, hashSize int) (*nodeSet, error) {
	tree, err := newMmapPageStore(basePath+".tree", treePageSize, treeMaxPages)
	if err != nil {
		return nil, err
	}
	randomizer, err := newMmapPageStore(basePath+".rand", treePageSize, treeRandomizerPages)
	if err != nil {
		tree.close()
		return nil, err
	}
	return &nodeSet{hashSize: hashSize, tree: tree, randomizer: randomizer}, nil
}

// insert stores the hash of the perfect subtree (left, right), growing
// leafCount if this pair extends the covered leaf range.
func (ns *nodeSet) insert(left, right uint32, hash []byte) error {
	if !validSubtree(left, right) {
		return errorf(StatusBadParam, "insert: (%d,%d) is not a valid subtree", left, right)
	}
	if len(hash) != ns.hashSize {
		return errorf(StatusBadParam, "insert: hash length %d != hash_size %d", len(hash), ns.hashSize)
	}
	id := linearNodeID(left, right)
	if err := ns.tree.write(id*uint64(ns.hashSize), ns.hashSize, hash); err != nil {
		return err
	}
	if right+1 > ns.leafCount {
		ns.leafCount = right + 1
	}
	return nil
}

// insertRandomizer stores the randomizer associated with a leaf. Only
// legal for leaf pairs (left == right).
func (ns *nodeSet) insertRandomizer(leaf uint32, bytes []byte) error {
	if len(bytes) != ns.hashSize {
		return errorf(StatusBadParam, "insertRandomizer: length %d != hash_size %d", len(bytes), ns.hashSize)
	}
	return ns.randomizer.write(uint64(leaf)*uint64(ns.hashSize), ns.hashSize, bytes)
}

// fetch returns an owned copy of the hash stored at (left, right).
// Legal only once the covering leaf range has been appended.
func (ns *nodeSet) fetch(left, right uint32) ([]byte, error) {
	if !validSubtree(left, right) {
		return nil, errorf(StatusBadParam, "fetch: (%d,%d) is not a valid subtree", left, right)
	}
	if right >= ns.leafCount {
		return nil, errorf(StatusBadParam, "fetch: (%d,%d) not yet covered by leaf_count=%d", left, right, ns.leafCount)
	}
	id := linearNodeID(left, right)
	out := make([]byte, ns.hashSize)
	if !ns.tree.read(id*uint64(ns.hashSize), ns.hashSize, out) {
		return nil, errorf(StatusBadParam, "fetch: (%d,%d) attempted before insert", left, right)
	}
	return out, nil
}

// getRandomizer returns an owned copy of leaf's randomizer.
func (ns *nodeSet) getRandomizer(leaf uint32) ([]byte, error) {
	out := make([]byte, ns.hashSize)
	if !ns.randomizer.read(uint64(leaf)*uint64(ns.hashSize), ns.hashSize, out) {
		return nil, errorf(StatusBadParam, "getRandomizer: leaf %d has no stored randomizer", leaf)
	}
	return out, nil
}

// updateParents recomputes and inserts every interior node that becomes
// fetchable once leafIndex has been appended, using hashNode to combine
// children. appendLeaf calls it after every leaf insert; it is the only
// code path that writes interior nodes.
func (ns *nodeSet) updateParents(leafIndex uint32, hashNode func(left, right uint32, l, r []byte) ([]byte, error)) error {
	for k := 1; k <= lsb32(leafIndex+1); k++ {
		mid := leafIndex - (1 << uint(k-1)) + 1
		left := leafIndex - (1 << uint(k)) + 1
		l, err := ns.fetch(left, mid-1)
		if err != nil {
			return err
		}
		r, err := ns.fetch(mid, leafIndex)
		if err != nil {
			return err
		}
		h, err := hashNode(left, leafIndex, l, r)
		if err != nil {
			return err
		}
		if err := ns.insert(left, leafIndex, h); err != nil {
			return err
		}
	}
	return nil
}

func (ns *nodeSet) close() error {
	if err := ns.tree.close(); err != nil {
		return err
	}
	return ns.randomizer.close()
}

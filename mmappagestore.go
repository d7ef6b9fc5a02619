package mtl

import (
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/hashicorp/go-multierror"
	"github.com/nightlyone/lockfile"
)

// mmapPageStore is a pageStore backed by a single growable file, mmap'd
// one fixed-size page at a time and guarded by a sibling lockfile. It
// adapts the teacher's fsContainer (container.go): truncate-then-mmap
// growth, a lockfile held for the container's lifetime, and
// multierror-accumulated close failures, repurposed from caching WOTS+
// subtrees to paging MTL node-set hashes.
type mmapPageStore struct {
	path     string
	flock    lockfile.Lockfile
	file     *os.File
	pageSize int
	maxPages int

	allocated uint32
	pages     map[uint32]mmap.MMap
	closed    bool
}

// newMmapPageStore opens (creating if necessary) the file at path and a
// path+".lock" lockfile, failing if the lockfile is already held.
func newMmapPageStore(path string, pageSize, maxPages int) (*mmapPageStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, wrapErrorf(err, StatusResourceFail, "newMmapPageStore: filepath.Abs(%s) failed", path)
	}

	flock, err := lockfile.New(abs + ".lock")
	if err != nil {
		return nil, wrapErrorf(err, StatusResourceFail, "newMmapPageStore: lockfile.New failed")
	}
	if err := flock.TryLock(); err != nil {
		e := errorf(StatusResourceFail, "newMmapPageStore: %s is locked", abs)
		return nil, e
	}

	file, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		flock.Unlock()
		return nil, wrapErrorf(err, StatusResourceFail, "newMmapPageStore: open %s failed", abs)
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		flock.Unlock()
		return nil, wrapErrorf(err, StatusResourceFail, "newMmapPageStore: stat failed")
	}

	store := &mmapPageStore{
		path:     abs,
		flock:    flock,
		file:     file,
		pageSize: pageSize,
		maxPages: maxPages,
		pages:    make(map[uint32]mmap.MMap),
	}
	store.allocated = uint32(st.Size() / int64(pageSize))
	return store, nil
}

// pageFor returns the mmap'd buffer for page idx, growing the backing
// file (and the allocated-page count) if idx hasn't been touched yet.
// grow=false returns (nil, nil) instead of allocating when idx is
// beyond the currently allocated extent, used by read() to treat an
// untouched page as all-zero without mapping it.
func (s *mmapPageStore) pageFor(idx uint32, grow bool) (mmap.MMap, error) {
	if buf, ok := s.pages[idx]; ok {
		return buf, nil
	}
	if idx >= uint32(s.maxPages) {
		return nil, errorf(StatusResourceFail, "mmapPageStore: page %d exceeds cap of %d pages", idx, s.maxPages)
	}
	if idx >= s.allocated {
		if !grow {
			return nil, nil
		}
		newSize := int64(idx+1) * int64(s.pageSize)
		if err := s.file.Truncate(newSize); err != nil {
			return nil, wrapErrorf(err, StatusResourceFail, "mmapPageStore: truncate to %d bytes failed", newSize)
		}
		s.allocated = idx + 1
	}
	buf, err := mmap.MapRegion(s.file, s.pageSize, mmap.RDWR, 0, int64(idx)*int64(s.pageSize))
	if err != nil {
		return nil, wrapErrorf(err, StatusResourceFail, "mmapPageStore: mmap page %d failed", idx)
	}
	s.pages[idx] = buf
	return buf, nil
}

func (s *mmapPageStore) split(off uint64, hashSize int) (pageIdx uint32, pageOff int, ok bool) {
	if hashSize > s.pageSize {
		return 0, 0, false
	}
	pageIdx = uint32(off / uint64(s.pageSize))
	pageOff = int(off % uint64(s.pageSize))
	return pageIdx, pageOff, true
}

func (s *mmapPageStore) read(off uint64, hashSize int, dst []byte) bool {
	pageIdx, pageOff, ok := s.split(off, hashSize)
	if !ok {
		return false
	}
	buf, err := s.pageFor(pageIdx, false)
	if err != nil || buf == nil {
		return false
	}
	if pageOff+hashSize > len(buf) {
		return false
	}
	copy(dst, buf[pageOff:pageOff+hashSize])
	return true
}

func (s *mmapPageStore) write(off uint64, hashSize int, src []byte) error {
	pageIdx, pageOff, ok := s.split(off, hashSize)
	if !ok {
		return errorf(StatusBadParam, "mmapPageStore.write: hash size %d exceeds page size %d", hashSize, s.pageSize)
	}
	buf, err := s.pageFor(pageIdx, true)
	if err != nil {
		return err
	}
	if pageOff+hashSize > len(buf) {
		return errorf(StatusResourceFail, "mmapPageStore.write: offset %d exceeds page size %d", pageOff, len(buf))
	}
	copy(buf[pageOff:pageOff+hashSize], src)
	return nil
}

// close unmaps every mapped page, closes the backing file, and releases
// the lockfile, accumulating any failures via hashicorp/go-multierror
// the way fsContainer.Close does.
func (s *mmapPageStore) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var result error
	for idx, buf := range s.pages {
		if err := buf.Unmap(); err != nil {
			result = multierror.Append(result, wrapErrorf(err, StatusResourceFail, "mmapPageStore.close: unmap page %d failed", idx))
		}
	}
	s.pages = nil
	if err := s.file.Close(); err != nil {
		result = multierror.Append(result, wrapErrorf(err, StatusResourceFail, "mmapPageStore.close: file close failed"))
	}
	if err := s.flock.Unlock(); err != nil {
		result = multierror.Append(result, wrapErrorf(err, StatusResourceFail, "mmapPageStore.close: lockfile unlock failed"))
	}
	return result
}

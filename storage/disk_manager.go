package storage

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gavinenxu/db-intro/logger"
)

// PageID identifies a page within a single-file database. It is shared
// identity space with the DiskManager: the buffer pool allocates ids
// monotonically and the disk manager materializes storage for an id on its
// first write.
type PageID int32

// InvalidPageID is the distinguished non-page value.
const InvalidPageID PageID = -1

// DiskManager is the out-of-scope collaborator that performs raw, page-sized
// transfers against a backing file. Thread-safety is not required of an
// implementation: the DiskScheduler guarantees only its single worker
// goroutine ever calls these methods.
type DiskManager interface {
	// ReadPage fills dst (exactly page-size bytes) with the on-disk image of
	// id. Reading a page number that was never written returns a
	// zero-filled buffer, not an error.
	ReadPage(id PageID, dst []byte) error
	// WritePage writes exactly page-size bytes of src as the on-disk image
	// of id, extending the backing file if necessary.
	WritePage(id PageID, src []byte) error
	// DeallocatePage hints that id's storage may be reclaimed. Best-effort;
	// no space is actually reclaimed in this implementation.
	DeallocatePage(id PageID) error
	// Close releases the backing file.
	Close() error
}

// FileDiskManager is a single-file DiskManager: page id N lives at byte
// offset N*pageSize.
type FileDiskManager struct {
	mu       sync.Mutex
	file     *os.File
	pageSize int
	locked   bool
}

// OpenFileDiskManager opens (creating if necessary) path as the backing
// store for a pool with the given page size. It takes an advisory exclusive
// lock on the file on platforms that support it, so two disk managers never
// open the same file at once from this process tree.
func OpenFileDiskManager(path string, pageSize int) (*FileDiskManager, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("storage: page size must be positive, got %d", pageSize)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	locked, err := lockFile(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &FileDiskManager{file: f, pageSize: pageSize, locked: locked}, nil
}

func (d *FileDiskManager) ReadPage(id PageID, dst []byte) error {
	if len(dst) != d.pageSize {
		return fmt.Errorf("storage: read buffer is %d bytes, want %d", len(dst), d.pageSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	offset := int64(id) * int64(d.pageSize)
	n, err := d.file.ReadAt(dst, offset)
	if err != nil {
		// Reading at or past EOF (page never written, or only partially
		// written) reads as zeros for the untouched tail: the page simply
		// hasn't been fully materialized on disk yet.
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			for i := n; i < len(dst); i++ {
				dst[i] = 0
			}
			return nil
		}
		return wrapReadErr(id, err)
	}
	return nil
}

func (d *FileDiskManager) WritePage(id PageID, src []byte) error {
	if len(src) != d.pageSize {
		return fmt.Errorf("storage: write buffer is %d bytes, want %d", len(src), d.pageSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	offset := int64(id) * int64(d.pageSize)
	if _, err := d.file.WriteAt(src, offset); err != nil {
		return wrapWriteErr(id, err)
	}
	return nil
}

func (d *FileDiskManager) DeallocatePage(id PageID) error {
	logger.Debugf("disk manager: deallocate hint for page %d (no-op)", id)
	return nil
}

func (d *FileDiskManager) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.locked {
		unlockFile(d.file)
	}
	return d.file.Close()
}

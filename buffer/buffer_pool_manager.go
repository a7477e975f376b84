// Package buffer implements the buffer pool manager: the bounded,
// pin-aware page cache that sits between fixed-size on-disk pages and
// higher-level access methods. It owns the frame array, the page table, the
// free list, the LRU-K replacer, and the disk scheduler, and serializes all
// public operations under a single latch.
package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gavinenxu/db-intro/logger"
	"github.com/gavinenxu/db-intro/replacer"
	"github.com/gavinenxu/db-intro/storage"
)

// BufferPoolManager is the cache of pages. At most PoolSize pages are
// resident at once; frames are handed out pinned, and evicted under LRU-K
// once every frame is in use.
type BufferPoolManager struct {
	// latch serializes every public operation, including the wait for
	// disk I/O on a miss. This is a deliberately simple design: a
	// production buffer pool would release the latch before awaiting I/O
	// and use finer-grained per-frame latches instead. Frame.latch (see
	// frame.go) is independent of this one and is what page guards use.
	latch sync.Mutex

	pageSize  int
	frames    []*Frame
	pageTable map[storage.PageID]replacer.FrameID
	freeList  []replacer.FrameID
	replacer  *replacer.LRUKReplacer
	scheduler *storage.DiskScheduler

	nextPageID int64 // atomic, monotonic

	Stats Stats
}

// New constructs a buffer pool manager and starts its disk scheduler's
// background worker. Call Close when done with it.
func New(cfg Config) (*BufferPoolManager, error) {
	cfg.applyDefaults()
	if cfg.DiskManager == nil {
		return nil, fmt.Errorf("buffer: config requires a DiskManager")
	}

	frames := make([]*Frame, cfg.PoolSize)
	freeList := make([]replacer.FrameID, cfg.PoolSize)
	for i := range frames {
		frames[i] = newFrame(cfg.PageSize)
		freeList[i] = replacer.FrameID(i)
	}

	return &BufferPoolManager{
		pageSize:  cfg.PageSize,
		frames:    frames,
		pageTable: make(map[storage.PageID]replacer.FrameID),
		freeList:  freeList,
		replacer:  replacer.NewLRUKReplacer(cfg.PoolSize, cfg.K),
		scheduler: storage.NewDiskScheduler(cfg.DiskManager),
	}, nil
}

// Close flushes every resident page and shuts down the disk scheduler.
func (b *BufferPoolManager) Close() error {
	if err := b.FlushAllPages(); err != nil {
		return err
	}
	b.scheduler.Shutdown()
	return nil
}

// requestFrame returns a frame id ready to hold a new page: from the free
// list first, falling back to evicting a replacer victim. The evicted
// frame's previous identity, if dirty, is flushed and awaited before its
// buffer is handed back for reuse — there is no race against the disk
// worker here (unlike the source this design was adapted from).
func (b *BufferPoolManager) requestFrame() (replacer.FrameID, bool) {
	if len(b.freeList) > 0 {
		fid := b.freeList[0]
		b.freeList = b.freeList[1:]
		return fid, true
	}

	fid, ok := b.replacer.Evict()
	if !ok {
		return 0, false
	}
	b.Stats.recordEviction()

	victim := b.frames[fid]
	if victim.isDirty {
		if err := b.flushFrameLocked(victim); err != nil {
			logger.Debugf("buffer pool: failed to flush evicted page %d: %v", victim.pageID, err)
		}
	}
	delete(b.pageTable, victim.pageID)

	return fid, true
}

// flushFrameLocked schedules a write of frame's content and blocks until
// the disk worker confirms it, clearing the dirty bit on success. Caller
// must hold latch.
func (b *BufferPoolManager) flushFrameLocked(frame *Frame) error {
	sig := b.scheduler.CreatePromise()
	b.scheduler.Schedule(&storage.DiskRequest{
		Type: storage.WriteRequest,
		Page: frame.pageID,
		Data: frame.data,
		Done: sig,
	})
	err := sig.Wait()
	if err == nil {
		frame.isDirty = false
		b.Stats.recordFlush()
	}
	return err
}

// NewPage allocates a fresh page id, pins its frame, and returns it. Fails
// with ErrPoolExhausted if every frame is pinned.
func (b *BufferPoolManager) NewPage() (storage.PageID, *Frame, error) {
	b.latch.Lock()
	defer b.latch.Unlock()

	fid, ok := b.requestFrame()
	if !ok {
		return storage.InvalidPageID, nil, ErrPoolExhausted
	}

	pid := storage.PageID(atomic.AddInt64(&b.nextPageID, 1) - 1)

	frame := b.frames[fid]
	frame.reset()
	frame.pageID = pid
	frame.pinCount = 1

	b.pageTable[pid] = fid
	if err := b.replacer.RecordAccess(fid); err != nil {
		logger.Debugf("buffer pool: record access failed for frame %d: %v", fid, err)
	}
	if err := b.replacer.SetEvictable(fid, false); err != nil {
		logger.Debugf("buffer pool: set evictable failed for frame %d: %v", fid, err)
	}

	return pid, frame, nil
}

// FetchPage returns the requested page pinned, reading it from disk on a
// miss. Fails with ErrPoolExhausted if the page is absent and no frame can
// be acquired for it.
func (b *BufferPoolManager) FetchPage(id storage.PageID) (*Frame, error) {
	b.latch.Lock()
	defer b.latch.Unlock()

	if fid, ok := b.pageTable[id]; ok {
		frame := b.frames[fid]
		frame.pinCount++
		if err := b.replacer.SetEvictable(fid, false); err != nil {
			logger.Debugf("buffer pool: set evictable failed for frame %d: %v", fid, err)
		}
		if err := b.replacer.RecordAccess(fid); err != nil {
			logger.Debugf("buffer pool: record access failed for frame %d: %v", fid, err)
		}
		b.Stats.recordHit()
		return frame, nil
	}

	b.Stats.recordMiss()

	fid, ok := b.requestFrame()
	if !ok {
		return nil, ErrPoolExhausted
	}
	frame := b.frames[fid]
	frame.reset()

	sig := b.scheduler.CreatePromise()
	b.scheduler.Schedule(&storage.DiskRequest{
		Type: storage.ReadRequest,
		Page: id,
		Data: frame.data,
		Done: sig,
	})
	if err := sig.Wait(); err != nil {
		// The miss failed: give the frame back to the free list rather
		// than leaving it in limbo, and surface the I/O failure.
		b.freeList = append(b.freeList, fid)
		return nil, err
	}

	frame.pageID = id
	frame.pinCount = 1

	b.pageTable[id] = fid
	if err := b.replacer.RecordAccess(fid); err != nil {
		logger.Debugf("buffer pool: record access failed for frame %d: %v", fid, err)
	}
	if err := b.replacer.SetEvictable(fid, false); err != nil {
		logger.Debugf("buffer pool: set evictable failed for frame %d: %v", fid, err)
	}

	return frame, nil
}

// UnpinPage decrements id's pin count, marking its frame evictable once the
// count reaches zero. dirty is OR-ed into the frame's dirty flag: a clean
// unpin can never clear a dirty bit a previous unpin set. Returns false if
// the page is not resident or is already unpinned.
func (b *BufferPoolManager) UnpinPage(id storage.PageID, dirty bool) bool {
	b.latch.Lock()
	defer b.latch.Unlock()

	fid, ok := b.pageTable[id]
	if !ok {
		return false
	}
	frame := b.frames[fid]
	if frame.pinCount <= 0 {
		return false
	}

	frame.pinCount--
	if dirty {
		frame.isDirty = true
	}
	if frame.pinCount == 0 {
		if err := b.replacer.SetEvictable(fid, true); err != nil {
			logger.Debugf("buffer pool: set evictable failed for frame %d: %v", fid, err)
		}
	}
	return true
}

// FlushPage schedules a copy of id's current content to be written to disk
// and clears its dirty bit. Does not wait for the write to complete. Returns
// false if id is not resident.
func (b *BufferPoolManager) FlushPage(id storage.PageID) bool {
	b.latch.Lock()
	defer b.latch.Unlock()
	return b.flushPageLocked(id)
}

func (b *BufferPoolManager) flushPageLocked(id storage.PageID) bool {
	fid, ok := b.pageTable[id]
	if !ok {
		return false
	}
	frame := b.frames[fid]

	// The write is not awaited, so it gets its own snapshot: the frame's
	// buffer may be reset or reused before the worker reaches the request.
	data := make([]byte, len(frame.data))
	copy(data, frame.data)
	b.scheduler.Schedule(&storage.DiskRequest{
		Type: storage.WriteRequest,
		Page: id,
		Data: data,
	})
	frame.isDirty = false
	b.Stats.recordFlush()
	return true
}

// FlushAllPages flushes every resident page.
func (b *BufferPoolManager) FlushAllPages() error {
	b.latch.Lock()
	defer b.latch.Unlock()

	for id := range b.pageTable {
		b.flushPageLocked(id)
	}
	return nil
}

// DeletePage removes id from the pool and hints to the disk layer that its
// storage may be reclaimed. Returns true vacuously if id isn't resident,
// false if it is resident but still pinned.
func (b *BufferPoolManager) DeletePage(id storage.PageID) bool {
	b.latch.Lock()
	defer b.latch.Unlock()

	fid, ok := b.pageTable[id]
	if !ok {
		return true
	}
	frame := b.frames[fid]
	if frame.pinCount > 0 {
		return false
	}

	delete(b.pageTable, id)
	if err := b.replacer.Remove(fid); err != nil {
		logger.Debugf("buffer pool: replacer remove failed for frame %d: %v", fid, err)
	}
	frame.reset()
	b.freeList = append(b.freeList, fid)

	b.scheduler.Schedule(&storage.DiskRequest{
		Type: storage.DeallocateRequest,
		Page: id,
	})

	return true
}

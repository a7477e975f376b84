package buffer

import (
	"sync"

	"github.com/gavinenxu/db-intro/storage"
)

// Frame is one fixed-size in-memory slot. At any moment it is in exactly one
// of: on the pool's free list, or holding a resident page in the page table.
type Frame struct {
	// latch guards the frame's content against concurrent readers/writers
	// once it is exposed through a latched page guard. It is independent
	// of the pool's own metadata mutex.
	latch sync.RWMutex

	data     []byte
	pageID   storage.PageID
	pinCount int32
	isDirty  bool
}

func newFrame(pageSize int) *Frame {
	return &Frame{data: make([]byte, pageSize)}
}

// reset clears a frame's identity before it's handed to a new page. Callers
// must already have flushed the frame if it was dirty.
func (f *Frame) reset() {
	f.pageID = storage.InvalidPageID
	f.pinCount = 0
	f.isDirty = false
	for i := range f.data {
		f.data[i] = 0
	}
}

// Data returns the frame's backing buffer directly; mutating it marks no
// dirty bit on its own — callers go through a guard for that bookkeeping.
func (f *Frame) Data() []byte { return f.data }

// PageID reports which page currently occupies the frame.
func (f *Frame) PageID() storage.PageID { return f.pageID }

// IsDirty reports whether the frame differs from its last-flushed disk
// image.
func (f *Frame) IsDirty() bool { return f.isDirty }

// PinCount reports the current pin count.
func (f *Frame) PinCount() int32 { return f.pinCount }

// RLock/RUnlock/Lock/Unlock expose the frame's content latch to page
// guards. They are never taken by the BufferPoolManager itself.
func (f *Frame) RLock()   { f.latch.RLock() }
func (f *Frame) RUnlock() { f.latch.RUnlock() }
func (f *Frame) Lock()    { f.latch.Lock() }
func (f *Frame) Unlock()  { f.latch.Unlock() }

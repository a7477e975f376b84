// Package guard provides scoped handles over a pinned buffer pool frame.
// Go has no destructors, so "on scope exit" from the design this package
// implements is realized as an explicit Drop method, meant to be called via
// defer at the point a C++ implementation would rely on the stack unwinding.
package guard

import (
	"github.com/gavinenxu/db-intro/buffer"
	"github.com/gavinenxu/db-intro/storage"
)

// BasicPageGuard holds a pin on a page, and unpins it on Drop. It takes no
// latch of its own: callers reading or writing the frame's content
// concurrently with other basic-guard holders must coordinate themselves,
// or use ReadPageGuard/WritePageGuard instead.
type BasicPageGuard struct {
	bpm     *buffer.BufferPoolManager
	pageID  storage.PageID
	frame   *buffer.Frame
	isDirty bool
	valid   bool
}

// FetchPageBasic fetches id from bpm and wraps it in a guard that unpins on
// Drop.
func FetchPageBasic(bpm *buffer.BufferPoolManager, id storage.PageID) (*BasicPageGuard, error) {
	frame, err := bpm.FetchPage(id)
	if err != nil {
		return nil, err
	}
	return &BasicPageGuard{bpm: bpm, pageID: id, frame: frame, valid: true}, nil
}

// NewPageBasic allocates a new page via bpm and wraps it in a guard.
func NewPageBasic(bpm *buffer.BufferPoolManager) (storage.PageID, *BasicPageGuard, error) {
	id, frame, err := bpm.NewPage()
	if err != nil {
		return storage.InvalidPageID, nil, err
	}
	return id, &BasicPageGuard{bpm: bpm, pageID: id, frame: frame, valid: true}, nil
}

// PageID reports the page this guard is holding a pin on.
func (g *BasicPageGuard) PageID() storage.PageID { return g.pageID }

// Data returns the frame's content for reading.
func (g *BasicPageGuard) Data() []byte { return g.frame.Data() }

// MutData returns the frame's content for writing and marks the guard's
// accumulated dirty flag, which is applied to the frame on Drop.
func (g *BasicPageGuard) MutData() []byte {
	g.isDirty = true
	return g.frame.Data()
}

// SetDirty forces the guard's accumulated dirty flag.
func (g *BasicPageGuard) SetDirty(dirty bool) { g.isDirty = dirty }

// Drop releases the pin this guard holds, applying its accumulated dirty
// flag. A no-op on an already-dropped or moved-from guard.
func (g *BasicPageGuard) Drop() {
	if g == nil || !g.valid {
		return
	}
	g.bpm.UnpinPage(g.pageID, g.isDirty)
	g.valid = false
}

// Move transfers ownership of the pin to a new guard value and invalidates
// the receiver, since Go assignment copies rather than moves. Calling Drop
// on g after Move is a no-op.
func (g *BasicPageGuard) Move() *BasicPageGuard {
	moved := &BasicPageGuard{bpm: g.bpm, pageID: g.pageID, frame: g.frame, isDirty: g.isDirty, valid: g.valid}
	g.valid = false
	return moved
}

// UpgradeRead takes the frame's shared read latch and returns a
// ReadPageGuard over the same frame that carries over this guard's pin and
// dirty flag. The receiver is invalidated; the pin is not released until
// the returned guard is dropped.
func (g *BasicPageGuard) UpgradeRead() *ReadPageGuard {
	g.frame.RLock()
	rg := &ReadPageGuard{inner: BasicPageGuard{bpm: g.bpm, pageID: g.pageID, frame: g.frame, isDirty: g.isDirty, valid: true}}
	g.valid = false
	return rg
}

// UpgradeWrite takes the frame's exclusive write latch and returns a
// WritePageGuard over the same frame that carries over this guard's pin and
// dirty flag. The receiver is invalidated; the pin is not released until
// the returned guard is dropped.
func (g *BasicPageGuard) UpgradeWrite() *WritePageGuard {
	g.frame.Lock()
	wg := &WritePageGuard{inner: BasicPageGuard{bpm: g.bpm, pageID: g.pageID, frame: g.frame, isDirty: g.isDirty, valid: true}}
	g.valid = false
	return wg
}

// ReadPageGuard holds a pin and a shared read latch on the frame.
type ReadPageGuard struct {
	inner BasicPageGuard
}

// FetchPageRead fetches id from bpm, takes its read latch, and returns a
// guard that holds both — the pin and latch are installed at construction
// time, not left for the caller to wire up separately.
func FetchPageRead(bpm *buffer.BufferPoolManager, id storage.PageID) (*ReadPageGuard, error) {
	frame, err := bpm.FetchPage(id)
	if err != nil {
		return nil, err
	}
	frame.RLock()
	return &ReadPageGuard{inner: BasicPageGuard{bpm: bpm, pageID: id, frame: frame, valid: true}}, nil
}

func (g *ReadPageGuard) PageID() storage.PageID { return g.inner.pageID }
func (g *ReadPageGuard) Data() []byte           { return g.inner.frame.Data() }

// Drop releases the read latch, then unpins. A no-op on an already-dropped
// or moved-from guard.
func (g *ReadPageGuard) Drop() {
	if g == nil || !g.inner.valid {
		return
	}
	g.inner.frame.RUnlock()
	g.inner.Drop()
}

// Move transfers ownership to a new guard value, invalidating the receiver.
func (g *ReadPageGuard) Move() *ReadPageGuard {
	moved := &ReadPageGuard{inner: g.inner}
	g.inner.valid = false
	return moved
}

// WritePageGuard holds a pin and the exclusive write latch on the frame.
type WritePageGuard struct {
	inner BasicPageGuard
}

// FetchPageWrite fetches id from bpm, takes its write latch, and returns a
// guard that holds both, installed at construction time.
func FetchPageWrite(bpm *buffer.BufferPoolManager, id storage.PageID) (*WritePageGuard, error) {
	frame, err := bpm.FetchPage(id)
	if err != nil {
		return nil, err
	}
	frame.Lock()
	return &WritePageGuard{inner: BasicPageGuard{bpm: bpm, pageID: id, frame: frame, valid: true}}, nil
}

// NewPageWrite allocates a new page via bpm, takes its write latch, and
// returns a guard holding both.
func NewPageWrite(bpm *buffer.BufferPoolManager) (storage.PageID, *WritePageGuard, error) {
	id, frame, err := bpm.NewPage()
	if err != nil {
		return storage.InvalidPageID, nil, err
	}
	frame.Lock()
	return id, &WritePageGuard{inner: BasicPageGuard{bpm: bpm, pageID: id, frame: frame, valid: true}}, nil
}

func (g *WritePageGuard) PageID() storage.PageID { return g.inner.pageID }
func (g *WritePageGuard) Data() []byte           { return g.inner.frame.Data() }

// MutData returns the frame's content for writing and marks the guard
// dirty, applied to the frame on Drop.
func (g *WritePageGuard) MutData() []byte {
	g.inner.isDirty = true
	return g.inner.frame.Data()
}

// Drop releases the write latch, then unpins. A no-op on an already-dropped
// or moved-from guard.
func (g *WritePageGuard) Drop() {
	if g == nil || !g.inner.valid {
		return
	}
	g.inner.frame.Unlock()
	g.inner.Drop()
}

// Move transfers ownership to a new guard value, invalidating the receiver.
func (g *WritePageGuard) Move() *WritePageGuard {
	moved := &WritePageGuard{inner: g.inner}
	g.inner.valid = false
	return moved
}

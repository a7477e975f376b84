// Package replacer implements the LRU-K eviction policy: it tracks which
// frames are candidates for eviction and picks the one with the largest
// backward k-distance when the buffer pool needs to make room.
package replacer

import (
	"math"
	"sync"
)

// FrameID is a dense index into the buffer pool's frame array.
type FrameID int

// infiniteDistance represents the "+inf" backward k-distance class: a frame
// that has been accessed fewer than K times.
const infiniteDistance = int64(math.MaxInt64)

// node tracks one frame's access history and evictability.
type node struct {
	// history holds up to k most recent access timestamps, oldest first.
	history     []int64
	isEvictable bool
}

// LRUKReplacer selects eviction victims by the LRU-K policy: among
// evictable frames, it picks the one whose k-th most recent access is
// furthest in the past. A frame with fewer than k recorded accesses has
// infinite backward distance and is preferred for eviction over any frame
// that has reached k accesses; ties within either class are broken by
// earliest first access (classical LRU).
type LRUKReplacer struct {
	mu sync.Mutex

	k                int
	numFrames        int
	currentTimestamp int64
	nodeStore        map[FrameID]*node
	currSize         int
}

// NewLRUKReplacer creates a replacer that will track up to numFrames
// distinct frame ids, each keeping a history of up to k accesses.
func NewLRUKReplacer(numFrames int, k int) *LRUKReplacer {
	return &LRUKReplacer{
		k:         k,
		numFrames: numFrames,
		nodeStore: make(map[FrameID]*node),
	}
}

func (r *LRUKReplacer) checkRange(fid FrameID) error {
	if fid < 0 || int(fid) >= r.numFrames {
		return outOfRangeErr(fid, r.numFrames)
	}
	return nil
}

// RecordAccess logs a new access to fid at the current (incremented)
// timestamp, creating the frame's node on first access. The node starts
// non-evictable; callers mark it evictable via SetEvictable once the
// corresponding pin count drops to zero.
func (r *LRUKReplacer) RecordAccess(fid FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkRange(fid); err != nil {
		return err
	}

	r.currentTimestamp++

	n, ok := r.nodeStore[fid]
	if !ok {
		n = &node{isEvictable: false}
		r.nodeStore[fid] = n
	}

	n.history = append(n.history, r.currentTimestamp)
	if len(n.history) > r.k {
		n.history = n.history[len(n.history)-r.k:]
	}

	return nil
}

// SetEvictable flips fid's evictable bit, adjusting Size() accordingly. A
// no-op if the bit already has the requested value, or if fid has no node.
func (r *LRUKReplacer) SetEvictable(fid FrameID, evictable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkRange(fid); err != nil {
		return err
	}

	n, ok := r.nodeStore[fid]
	if !ok {
		return nil
	}
	if n.isEvictable == evictable {
		return nil
	}

	n.isEvictable = evictable
	if evictable {
		r.currSize++
	} else {
		r.currSize--
	}
	return nil
}

// Remove erases fid's access history entirely. fid must currently be
// evictable; removing a non-evictable frame is a programming error. Removing
// an fid with no node is a silent no-op.
func (r *LRUKReplacer) Remove(fid FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkRange(fid); err != nil {
		return err
	}

	n, ok := r.nodeStore[fid]
	if !ok {
		return nil
	}
	if !n.isEvictable {
		return ErrNotEvictable
	}

	delete(r.nodeStore, fid)
	r.currSize--
	return nil
}

// Evict chooses and erases the evictable node with the greatest backward
// k-distance, reporting false if no frame is evictable.
func (r *LRUKReplacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		victim       FrameID
		found        bool
		victimDist   int64
		victimOldest int64 = math.MaxInt64
	)

	for fid, n := range r.nodeStore {
		if !n.isEvictable {
			continue
		}

		dist := infiniteDistance
		if len(n.history) >= r.k {
			dist = r.currentTimestamp - n.history[0]
		}
		oldest := n.history[0]

		if !found || dist > victimDist || (dist == victimDist && oldest < victimOldest) {
			found = true
			victim = fid
			victimDist = dist
			victimOldest = oldest
		}
	}

	if !found {
		return 0, false
	}

	delete(r.nodeStore, victim)
	r.currSize--
	return victim, true
}

// Size returns the number of frames currently marked evictable.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currSize
}

package buffer

import "sync/atomic"

// Stats holds the buffer pool's running counters. All fields are updated
// with atomics so they can be read without taking the pool's main latch.
type Stats struct {
	hits      uint64
	misses    uint64
	evictions uint64
	flushes   uint64
}

func (s *Stats) recordHit()      { atomic.AddUint64(&s.hits, 1) }
func (s *Stats) recordMiss()     { atomic.AddUint64(&s.misses, 1) }
func (s *Stats) recordEviction() { atomic.AddUint64(&s.evictions, 1) }
func (s *Stats) recordFlush()    { atomic.AddUint64(&s.flushes, 1) }

// Hits returns the number of FetchPage calls resolved without disk I/O.
func (s *Stats) Hits() uint64 { return atomic.LoadUint64(&s.hits) }

// Misses returns the number of FetchPage calls that required a disk read.
func (s *Stats) Misses() uint64 { return atomic.LoadUint64(&s.misses) }

// Evictions returns the number of frames reclaimed via the replacer (i.e.
// excluding frames served from the free list).
func (s *Stats) Evictions() uint64 { return atomic.LoadUint64(&s.evictions) }

// Flushes returns the number of pages written back to disk, whether via
// FlushPage/FlushAllPages or as a side effect of eviction.
func (s *Stats) Flushes() uint64 { return atomic.LoadUint64(&s.flushes) }

// HitRatio returns Hits/(Hits+Misses), or 0 if there have been no fetches.
func (s *Stats) HitRatio() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

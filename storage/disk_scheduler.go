package storage

import "sync"

// requestQueueCapacity bounds the scheduler's FIFO. Schedule blocks briefly
// once it's full rather than growing without bound.
const requestQueueCapacity = 128

// RequestType distinguishes the three things a DiskRequest can ask the
// worker to do.
type RequestType int

const (
	ReadRequest RequestType = iota
	WriteRequest
	DeallocateRequest
)

// Promise is the one-shot completion signal a DiskRequest carries. The
// scheduler's worker is the sole producer; Wait is the consumer side.
type Promise struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Wait blocks until the request completes and returns its result. Calling
// Wait more than once returns the same result every time.
func (p *Promise) Wait() error {
	<-p.done
	return p.err
}

// fulfil is called exactly once, by the scheduler's worker.
func (p *Promise) fulfil(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// DiskRequest is one unit of scheduled I/O.
type DiskRequest struct {
	Type RequestType
	Page PageID
	// Data is the destination buffer for a read, or the source buffer for
	// a write. Unused for DeallocateRequest.
	Data []byte
	// Done is fulfilled with the result of the request. May be nil for
	// fire-and-forget requests (e.g. deallocate), in which case the result
	// is discarded.
	Done *Promise

	shutdown bool
}

// DiskScheduler serializes access to a DiskManager behind a single
// background worker, so callers never need to coordinate raw file access
// amongst themselves. There is exactly one worker, so every request this
// scheduler accepts executes in the order it was enqueued.
type DiskScheduler struct {
	disk  DiskManager
	queue chan *DiskRequest
	wg    sync.WaitGroup
	once  sync.Once
}

// NewDiskScheduler spawns the worker goroutine and returns immediately.
func NewDiskScheduler(disk DiskManager) *DiskScheduler {
	s := &DiskScheduler{
		disk:  disk,
		queue: make(chan *DiskRequest, requestQueueCapacity),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// CreatePromise produces a fresh completion signal for a request the caller
// is about to Schedule.
func (s *DiskScheduler) CreatePromise() *Promise {
	return newPromise()
}

// Schedule enqueues req. It never blocks on I/O; it may block briefly if the
// queue is momentarily full.
func (s *DiskScheduler) Schedule(req *DiskRequest) {
	s.queue <- req
}

// Shutdown enqueues the sentinel that causes the worker to exit, then waits
// for it to drain in-flight requests and return. Safe to call more than
// once.
func (s *DiskScheduler) Shutdown() {
	s.once.Do(func() {
		s.queue <- &DiskRequest{shutdown: true}
		s.wg.Wait()
	})
}

func (s *DiskScheduler) worker() {
	defer s.wg.Done()

	for req := range s.queue {
		if req.shutdown {
			return
		}

		var err error
		switch req.Type {
		case ReadRequest:
			err = s.disk.ReadPage(req.Page, req.Data)
		case WriteRequest:
			err = s.disk.WritePage(req.Page, req.Data)
		case DeallocateRequest:
			err = s.disk.DeallocatePage(req.Page)
		}

		if req.Done != nil {
			req.Done.fulfil(err)
		}
		// A failed request does not stop the worker: only the shutdown
		// sentinel does.
	}
}

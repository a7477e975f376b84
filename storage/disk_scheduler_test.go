package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSchedulerWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 16)
	require.NoError(t, err)
	defer dm.Close()

	sched := NewDiskScheduler(dm)
	defer sched.Shutdown()

	writeDone := sched.CreatePromise()
	sched.Schedule(&DiskRequest{
		Type: WriteRequest,
		Page: 1,
		Data: []byte("Hello, World!!!!"),
		Done: writeDone,
	})
	require.NoError(t, writeDone.Wait())

	readDone := sched.CreatePromise()
	buf := make([]byte, 16)
	sched.Schedule(&DiskRequest{
		Type: ReadRequest,
		Page: 1,
		Data: buf,
		Done: readDone,
	})
	require.NoError(t, readDone.Wait())
	assert.Equal(t, "Hello, World!!!!", string(buf))
}

func TestDiskSchedulerOrdersRequestsFIFO(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 16)
	require.NoError(t, err)
	defer dm.Close()

	sched := NewDiskScheduler(dm)
	defer sched.Shutdown()

	// Schedule N writes to the same page back to back; the last write
	// scheduled must be the one observed on read, since there's exactly one
	// worker serializing them in enqueue order.
	var last *Promise
	for i := 0; i < 10; i++ {
		p := sched.CreatePromise()
		data := make([]byte, 16)
		data[0] = byte(i)
		sched.Schedule(&DiskRequest{Type: WriteRequest, Page: 2, Data: data, Done: p})
		last = p
	}
	require.NoError(t, last.Wait())

	readDone := sched.CreatePromise()
	buf := make([]byte, 16)
	sched.Schedule(&DiskRequest{Type: ReadRequest, Page: 2, Data: buf, Done: readDone})
	require.NoError(t, readDone.Wait())
	assert.Equal(t, byte(9), buf[0])
}

func TestDiskSchedulerFailureDoesNotStopWorker(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 16)
	require.NoError(t, err)
	defer dm.Close()

	sched := NewDiskScheduler(dm)
	defer sched.Shutdown()

	badDone := sched.CreatePromise()
	sched.Schedule(&DiskRequest{Type: WriteRequest, Page: 0, Data: make([]byte, 4), Done: badDone})
	assert.Error(t, badDone.Wait())

	goodDone := sched.CreatePromise()
	sched.Schedule(&DiskRequest{Type: WriteRequest, Page: 0, Data: make([]byte, 16), Done: goodDone})
	assert.NoError(t, goodDone.Wait())
}

func TestDiskSchedulerShutdownIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 16)
	require.NoError(t, err)
	defer dm.Close()

	sched := NewDiskScheduler(dm)
	sched.Shutdown()
	sched.Shutdown()
}

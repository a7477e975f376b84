package buffer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinenxu/db-intro/storage"
)

func newTestPool(t *testing.T, poolSize, pageSize, k int) *BufferPoolManager {
	t.Helper()
	dm, err := storage.OpenFileDiskManager(filepath.Join(t.TempDir(), "test.db"), pageSize)
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })

	bpm, err := New(Config{PoolSize: poolSize, PageSize: pageSize, K: k, DiskManager: dm})
	require.NoError(t, err)
	t.Cleanup(func() { bpm.Close() })
	return bpm
}

func TestBasicNewAndFetch(t *testing.T) {
	bpm := newTestPool(t, 10, 4096, 2)

	p0, frame0, err := bpm.NewPage()
	require.NoError(t, err)
	copy(frame0.Data(), []byte("Hello"))
	assert.True(t, bpm.UnpinPage(p0, true))
	assert.True(t, bpm.FlushPage(p0))

	// Fetch nine more, pinned: should fill the remaining frames.
	for i := 0; i < 9; i++ {
		_, _, err := bpm.NewPage()
		require.NoError(t, err)
	}

	// Pool is full and every page but p0 is still pinned; p0 was unpinned
	// but is still resident, so fetching it again is a hit that re-pins its
	// frame without any eviction.
	frame, err := bpm.FetchPage(p0)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), frame.Data()[:5])
}

func TestPoolExhaustion(t *testing.T) {
	bpm := newTestPool(t, 3, 256, 2)

	p0, _, err := bpm.NewPage()
	require.NoError(t, err)
	p1, _, err := bpm.NewPage()
	require.NoError(t, err)
	p2, _, err := bpm.NewPage()
	require.NoError(t, err)
	_ = p0
	_ = p1
	_ = p2

	// All three pinned, pool full: neither NewPage nor FetchPage on an
	// unrelated page can find a frame.
	_, _, err = bpm.NewPage()
	assert.ErrorIs(t, err, ErrPoolExhausted)

	_, err = bpm.FetchPage(storage.PageID(999))
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestUnpinRoundTrip(t *testing.T) {
	bpm := newTestPool(t, 5, 256, 2)

	p0, _, err := bpm.NewPage()
	require.NoError(t, err)
	require.True(t, bpm.UnpinPage(p0, false))

	for i := 0; i < 3; i++ {
		frame, err := bpm.FetchPage(p0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), frame.PinCount())
		require.True(t, bpm.UnpinPage(p0, false))
	}
}

func TestUnpinReturnsFalseWhenAlreadyUnpinned(t *testing.T) {
	bpm := newTestPool(t, 5, 256, 2)

	p0, _, err := bpm.NewPage()
	require.NoError(t, err)
	require.True(t, bpm.UnpinPage(p0, false))
	assert.False(t, bpm.UnpinPage(p0, false))
}

func TestDirtyBitIsMonotoneUnderUnpin(t *testing.T) {
	bpm := newTestPool(t, 5, 256, 2)

	p0, frame, err := bpm.NewPage()
	require.NoError(t, err)
	require.True(t, bpm.UnpinPage(p0, true))
	assert.True(t, frame.IsDirty())

	// A second, clean unpin must not clear the dirty bit a previous unpin
	// set — even though the pin count already reached zero last time, we
	// re-fetch to pin again before unpinning clean.
	_, err = bpm.FetchPage(p0)
	require.NoError(t, err)
	require.True(t, bpm.UnpinPage(p0, false))
	assert.True(t, frame.IsDirty())
}

func TestDeletePageRejectsPinned(t *testing.T) {
	bpm := newTestPool(t, 5, 256, 2)

	p0, _, err := bpm.NewPage()
	require.NoError(t, err)
	assert.False(t, bpm.DeletePage(p0))

	require.True(t, bpm.UnpinPage(p0, false))
	assert.True(t, bpm.DeletePage(p0))
}

func TestDeletePageOnAbsentPageIsVacuouslyTrue(t *testing.T) {
	bpm := newTestPool(t, 5, 256, 2)
	assert.True(t, bpm.DeletePage(storage.PageID(42)))
}

func TestFlushThenDeleteThenRefetchReadsBackBytes(t *testing.T) {
	bpm := newTestPool(t, 5, 256, 2)

	p0, frame, err := bpm.NewPage()
	require.NoError(t, err)
	copy(frame.Data(), []byte("round-trip"))
	require.True(t, bpm.FlushPage(p0))

	require.True(t, bpm.UnpinPage(p0, false))
	require.True(t, bpm.DeletePage(p0))

	// p0 is no longer resident; fetching it again reads the disk image
	// written before the delete (the delete only deallocates the id's
	// in-pool bookkeeping, not its on-disk bytes, per this core's scope).
	frame2, err := bpm.FetchPage(p0)
	require.NoError(t, err)
	assert.Equal(t, "round-trip", string(frame2.Data()[:len("round-trip")]))
}

func TestConcurrentAccess(t *testing.T) {
	bpm := newTestPool(t, 20, 256, 2)

	const goroutines = 8
	done := make(chan bool, goroutines)

	for g := 0; g < goroutines; g++ {
		go func(id int) {
			for i := 0; i < 50; i++ {
				pid, _, err := bpm.NewPage()
				if err != nil {
					// Pool exhaustion under contention is expected; just
					// stop this iteration rather than failing the test.
					continue
				}
				bpm.UnpinPage(pid, i%2 == 0)
			}
			done <- true
		}(g)
	}

	for g := 0; g < goroutines; g++ {
		<-done
	}
}

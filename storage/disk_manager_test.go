package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDiskManagerReadUnwrittenPageIsZero(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 512)
	require.NoError(t, err)
	defer dm.Close()

	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = 0xFF
	}

	require.NoError(t, dm.ReadPage(7, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestFileDiskManagerWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 16)
	require.NoError(t, err)
	defer dm.Close()

	want := []byte("Hello, World!!!!")
	require.NoError(t, dm.WritePage(3, want))

	got := make([]byte, 16)
	require.NoError(t, dm.ReadPage(3, got))
	assert.Equal(t, want, got)
}

func TestFileDiskManagerRejectsWrongBufferSize(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 16)
	require.NoError(t, err)
	defer dm.Close()

	assert.Error(t, dm.WritePage(0, make([]byte, 8)))
	assert.Error(t, dm.ReadPage(0, make([]byte, 8)))
}

func TestFileDiskManagerDeallocateIsNoop(t *testing.T) {
	dir := t.TempDir()
	dm, err := OpenFileDiskManager(filepath.Join(dir, "test.db"), 16)
	require.NoError(t, err)
	defer dm.Close()

	assert.NoError(t, dm.DeallocatePage(5))
}

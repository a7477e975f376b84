//go:build windows

package storage

import "os"

// lockFile is a no-op on platforms without flock; the file is still opened
// exclusively enough for single-process use.
func lockFile(f *os.File) (bool, error) {
	return false, nil
}

func unlockFile(f *os.File) {}

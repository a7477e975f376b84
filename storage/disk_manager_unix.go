//go:build !windows

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes a non-blocking advisory exclusive lock on f. Reports
// whether a lock was actually acquired so Close knows whether to release it.
func lockFile(f *os.File) (bool, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if err == unix.EWOULDBLOCK {
			return false, &os.PathError{Op: "flock", Path: f.Name(), Err: err}
		}
		return false, err
	}
	return true, nil
}

func unlockFile(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

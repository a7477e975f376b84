package replacer

import "github.com/pkg/errors"

// ErrOutOfRange is returned when a frame id falls outside [0, numFrames).
// Programming error: fatal to the operation, not recoverable by the caller.
var ErrOutOfRange = errors.New("replacer: frame id out of range")

// ErrNotEvictable is returned by Remove when the target frame is not
// currently marked evictable.
var ErrNotEvictable = errors.New("replacer: frame is not evictable")

func outOfRangeErr(fid FrameID, numFrames int) error {
	return errors.Wrapf(ErrOutOfRange, "frame %d, num_frames %d", fid, numFrames)
}

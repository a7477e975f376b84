package storage

import (
	"github.com/juju/errors"
)

// wrapReadErr annotates a read failure with the page it was reading, in the
// style the rest of the engine this core was lifted from uses for I/O
// boundary errors.
func wrapReadErr(id PageID, err error) error {
	if err == nil {
		return nil
	}
	return errors.Annotatef(err, "read page %d", id)
}

func wrapWriteErr(id PageID, err error) error {
	if err == nil {
		return nil
	}
	return errors.Annotatef(err, "write page %d", id)
}

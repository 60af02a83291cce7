package export

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockName = ".collector.lock"

var ErrLocked = errors.New("another collector run holds the output directory")

// Lock takes an exclusive, non-blocking lock on the output directory.
// The returned func releases it.
func (e *Exporter) Lock() (func(), error) {
	fl := flock.New(filepath.Join(e.dir, lockName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			e.log.Warnf("[export] unlock %s: %v", fl.Path(), err)
		}
	}, nil
}

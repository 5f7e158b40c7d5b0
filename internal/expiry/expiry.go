// Package expiry implements Component H: cooperative locking and
// expiry sweeps over report_data/<run>/ directories retained across
// runs. Locking is marker-file presence/absence (unlink to acquire,
// create to release) rather than flock, since every other component in
// this system already communicates through files on disk instead of
// OS-level locks.
package expiry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/litani-build/litani/internal/cachedir"
)

// Lock is a cooperative, marker-file-based lock over one
// report_data/<run> directory: the marker file being *present* means
// unlocked, its *absence* means locked (§4.H).
type Lock struct {
	Dir string
}

func New(dir string) *Lock { return &Lock{Dir: dir} }

func (l *Lock) markerPath() string {
	return filepath.Join(l.Dir, cachedir.LockFile)
}

func (l *Lock) expiredPath() string {
	return filepath.Join(l.Dir, cachedir.ExpiredFile)
}

// Acquire locks the directory by unlinking its marker file. It
// returns whether the unlink succeeded: false means some other
// process already holds the lock.
func (l *Lock) Acquire() (bool, error) {
	err := os.Remove(l.markerPath())
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("acquire lock on %s: %w", l.Dir, err)
}

// Release unlocks the directory by recreating its marker file.
func (l *Lock) Release() error {
	f, err := os.OpenFile(l.markerPath(), os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("release lock on %s: %w", l.Dir, err)
	}
	return f.Close()
}

// AcquireAsync polls once per second until Acquire succeeds or
// timeout elapses.
func (l *Lock) AcquireAsync(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := l.Acquire()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(1 * time.Second)
	}
}

// Expired reports whether this directory has been marked for
// collection.
func (l *Lock) Expired() bool {
	_, err := os.Stat(l.expiredPath())
	return err == nil
}

// MarkExpired drops the expiry marker, the signal print-expiry-candidates
// writes once it decides a directory is old enough to collect.
func (l *Lock) MarkExpired() error {
	f, err := os.OpenFile(l.expiredPath(), os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("mark %s expired: %w", l.Dir, err)
	}
	return f.Close()
}

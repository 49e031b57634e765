// Package lockfile implements the stale-tolerant, hard-link based
// advisory lock used to serialise access to a single group directory.
//
// Grounded on _examples/original_source/lockfile.py: the POSIX hard-link
// trick there (tempfile + link + stat link-count) is kept, generalised
// with the staleness check, touch() and logged-snatch semantics spec.md
// §4.A requires but the Python original never implemented.
package lockfile

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ErrAlreadyHeld is returned by Lock/TryLock when called on a lock this
// process already holds.
var ErrAlreadyHeld = errors.New("lockfile: already held")

// ErrNotHeld is returned by Touch/Unlock when called without a prior
// successful TryLock/Lock.
var ErrNotHeld = errors.New("lockfile: not held")

// Lock is a single advisory lock file at Path, guarded by the hard-link
// trick: a lock is "ours" iff the temp file we created has a link count
// of 2 after linking it to Path.
type Lock struct {
	Path   string
	Expiry time.Duration // how long an existing lock file is considered live

	dir   string
	token string // path to our temp file, once held
	held  bool
}

// New returns a Lock for path, using expiry (default 30 minutes per
// spec.md §4.A) as the staleness threshold.
func New(path string, expiry time.Duration) *Lock {
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}
	return &Lock{
		Path:   path,
		Expiry: expiry,
		dir:    filepath.Dir(path),
	}
}

// TryLock attempts to acquire the lock without blocking. It returns
// (true, nil) on success, (false, nil) if another process holds a live
// lock, and a non-nil error only for unexpected I/O failures or if this
// Lock already holds it (ErrAlreadyHeld).
func (l *Lock) TryLock() (bool, error) {
	if l.held {
		return false, ErrAlreadyHeld
	}

	if info, err := os.Stat(l.Path); err == nil {
		if time.Since(info.ModTime()) < l.Expiry {
			return false, nil
		}
		// stale: best-effort removal. A race here is benign because the
		// link-count check below is the authoritative test.
		_ = os.Remove(l.Path)
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("lockfile: stat %s: %w", l.Path, err)
	}

	tmp, err := os.CreateTemp(l.dir, ".lock-")
	if err != nil {
		return false, fmt.Errorf("lockfile: create temp: %w", err)
	}
	tmp.Close()
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	// Regardless of whether Link appears to succeed, the link count is
	// the authoritative test for who actually won the race.
	_ = os.Link(tmpPath, l.Path)

	info, err := os.Stat(tmpPath)
	if err != nil {
		return false, fmt.Errorf("lockfile: stat temp: %w", err)
	}

	nlink := linkCount(info)
	if nlink != 2 {
		return false, nil
	}

	l.token = tmpPath
	l.held = true
	success = true
	return true, nil
}

// Lock blocks, retrying TryLock on a fixed back-off (default ~5s) until
// it succeeds.
func (l *Lock) Lock(retry time.Duration) error {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	for {
		ok, err := l.TryLock()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		time.Sleep(retry)
	}
}

// Touch refreshes the lock's freshness during a long operation. It
// returns false (without error) if the lock was "snatched" -- our token
// file's link count dropped to 1, meaning Path was removed out from
// under us by a stale-lock reaper elsewhere.
func (l *Lock) Touch() (bool, error) {
	if !l.held {
		return false, ErrNotHeld
	}
	info, err := os.Stat(l.token)
	if err != nil {
		return false, fmt.Errorf("lockfile: stat token: %w", err)
	}
	if linkCount(info) != 2 {
		return false, nil
	}
	now := time.Now()
	if err := os.Chtimes(l.token, now, now); err != nil {
		return false, fmt.Errorf("lockfile: touch token: %w", err)
	}
	return true, nil
}

// Unlock releases the lock. A snatched lock (link count already 1) is
// logged, not treated as an error: per spec.md §4.A step 6, we must not
// unlink a path that another actor now owns.
func (l *Lock) Unlock() error {
	if !l.held {
		return ErrNotHeld
	}
	defer func() {
		l.held = false
		l.token = ""
	}()

	info, err := os.Stat(l.token)
	snatched := err != nil || linkCount(info) != 2

	os.Remove(l.token)

	if snatched {
		log.Printf("lockfile: %s was snatched before unlock", l.Path)
		return nil
	}
	os.Remove(l.Path)
	return nil
}

// Held reports whether this Lock object currently believes it holds the
// lock.
func (l *Lock) Held() bool {
	return l.held
}

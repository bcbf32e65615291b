package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/quantmind-br/treepack/internal/utils"
)

// DefaultLockDir is the default directory for base-root locks
const DefaultLockDir = "~/.treepack/locks"

// RootLock serializes runs against the same base root
type RootLock struct {
	root string
	lock *flock.Flock
}

// NewRootLock creates an unlocked lock for root inside dir
func NewRootLock(dir, root string) *RootLock {
	if dir == "" {
		dir = DefaultLockDir
	}
	dir = utils.ExpandPath(dir)
	return &RootLock{
		root: root,
		lock: flock.New(filepath.Join(dir, Key(root)+".lock")),
	}
}

// TryLock acquires the lock without blocking. It returns ErrRootLocked when
// another run holds it.
func (l *RootLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.root, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRootLocked, l.root)
	}
	return nil
}

// Unlock releases the lock
func (l *RootLock) Unlock() error {
	return l.lock.Unlock()
}

// Path returns the lock file path
func (l *RootLock) Path() string {
	return l.lock.Path()
}

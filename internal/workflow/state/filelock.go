package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLocker is the default single-host lock implementation: a lock file
// per workflow name, held for the lifetime of the run.
type FileLocker struct {
	dir string
	mu  sync.Mutex
}

// NewFileLocker returns a FileLocker rooted at dir.
func NewFileLocker(dir string) *FileLocker {
	return &FileLocker{dir: dir}
}

// Acquire creates <dir>/<name>.lock exclusively, returning a release func
// that removes it. Fails if the lock file already exists.
func (l *FileLocker) Acquire(ctx context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(l.dir, name+".lock")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("lock file %s already held", path)
		}
		return nil, err
	}
	_ = f.Close()

	return func() {
		_ = os.Remove(path)
	}, nil
}

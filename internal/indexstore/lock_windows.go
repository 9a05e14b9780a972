//go:build windows

package indexstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const lockFile = "index.lock"

// Lock is a best-effort lock on Windows (no atomic flock equivalent used here).
type Lock struct {
	path string
	file *os.File
}

// AcquireLock writes the current PID into <cogDir>/index.lock.
func AcquireLock(cogDir string) (*Lock, error) {
	if err := os.MkdirAll(cogDir, 0755); err != nil {
		return nil, fmt.Errorf("creating .cog directory: %w", err)
	}

	path := filepath.Join(cogDir, lockFile)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing PID to lock file: %w", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release closes and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Close()
	_ = os.Remove(l.path)
}

// lockregistry.go: Per-path mutual exclusion for write cycles
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"path/filepath"
	"sync"
)

// FileLockRegistry hands out one mutex per normalized file path, so
// concurrent callers editing the same file serialize their full
// read-validate-write cycles while edits to distinct files run in
// parallel. The registry is an explicit, injected service with a
// per-process lifecycle - create one and pass it to every patcher -
// rather than a hidden package-level map.
type FileLockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileLockRegistry creates an empty registry. One per process is the
// intended lifecycle; two registries cannot protect each other's callers.
func NewFileLockRegistry() *FileLockRegistry {
	return &FileLockRegistry{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for path and returns its release function.
// The caller must release on every exit path: success, validation
// failure, or I/O failure.
func (r *FileLockRegistry) Acquire(path string) func() {
	key := normalizePath(path)

	r.mu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// normalizePath reduces a path to its canonical absolute form so two
// spellings of the same file contend on the same lock.
func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

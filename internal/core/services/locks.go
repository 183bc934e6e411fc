package services

import "sync"

// lockTable provides per-key mutual exclusion. Session mutations lock on the
// session ID, answer calls lock on the thread ID, so work on unrelated
// sessions and threads proceeds concurrently.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns the matching unlock.
func (t *lockTable) lock(key string) func() {
	t.mu.Lock()
	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m.Unlock
}

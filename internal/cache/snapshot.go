// Package cache holds the single-slot snapshot caches the terminal keeps
// warm between sync runs. A slot remembers exactly one (key, value) pair;
// the key is the scope fingerprint the value was assembled for.
package cache

import "sync/atomic"

type entry struct {
	key   string
	value interface{}
}

// Snapshot is a single-slot cache. The pair is swapped atomically, so a
// reader never observes a value under a mismatched key. Safe for any
// number of concurrent readers and writers.
type Snapshot struct {
	slot atomic.Pointer[entry]
}

// New returns an empty snapshot slot.
func New() *Snapshot {
	return &Snapshot{}
}

// Get returns the cached value when key matches the stored key exactly.
func (s *Snapshot) Get(key string) (interface{}, bool) {
	e := s.slot.Load()
	if e == nil || e.key != key {
		return nil, false
	}
	return e.value, true
}

// Put stores the pair, displacing whatever was held before.
func (s *Snapshot) Put(key string, value interface{}) {
	s.slot.Store(&entry{key: key, value: value})
}

// Invalidate empties the slot.
func (s *Snapshot) Invalidate() {
	s.slot.Store(nil)
}

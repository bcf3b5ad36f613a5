package store

import (
	"maps"
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests and ephemeral engines.
//
// Update works on a copy of the bucket maps and swaps it in on success.
// Stored values are never mutated in place, so copying the maps is enough.
type MemStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	closed  bool
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	buckets := make(map[string]map[string][]byte, len(allBuckets))
	for _, name := range allBuckets {
		buckets[string(name)] = make(map[string][]byte)
	}
	return &MemStore{buckets: buckets}
}

// Update runs fn against a snapshot and commits it if fn returns nil.
func (s *MemStore) Update(fn func(*Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	snapshot := make(map[string]map[string][]byte, len(s.buckets))
	for name, b := range s.buckets {
		snapshot[name] = maps.Clone(b)
	}
	if err := fn(&Txn{kv: memKV{buckets: snapshot}}); err != nil {
		return err
	}
	s.buckets = snapshot
	return nil
}

// View runs fn against the current state.
func (s *MemStore) View(fn func(*Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&Txn{kv: memKV{buckets: s.buckets, readOnly: true}})
}

// Close marks the store closed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type memKV struct {
	buckets  map[string]map[string][]byte
	readOnly bool
}

func (m memKV) get(bucket, key []byte) []byte {
	return m.buckets[string(bucket)][string(key)]
}

func (m memKV) put(bucket, key, value []byte) error {
	if m.readOnly {
		return ErrReadOnly
	}
	m.buckets[string(bucket)][string(key)] = value
	return nil
}

func (m memKV) delete(bucket, key []byte) error {
	if m.readOnly {
		return ErrReadOnly
	}
	delete(m.buckets[string(bucket)], string(key))
	return nil
}

// forEach visits keys in sorted order, matching bbolt iteration.
func (m memKV) forEach(bucket []byte, fn func(key, value []byte) error) error {
	b := m.buckets[string(bucket)]
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), b[k]); err != nil {
			return err
		}
	}
	return nil
}

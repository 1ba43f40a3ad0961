package storage

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/google/btree"
)

// MemoryStore implements Store on top of a btree so scans come back in key order.
type MemoryStore struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

type item struct {
	key   string
	value string
}

func (i *item) Less(than btree.Item) bool {
	return i.key < than.(*item).key
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tree: btree.New(32),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.tree.Get(&item{key: key})
	if found == nil {
		return "", false
	}
	return found.(*item).value, true
}

// Put implements Store.
func (s *MemoryStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree.ReplaceOrInsert(&item{key: key, value: value})
}

// Delete implements Store. It is a no-op for absent keys.
func (s *MemoryStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.Delete(&item{key: key}) != nil
}

// Scan implements Store.
func (s *MemoryStore) Scan(start, end string, handler func(key, value string) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.tree.AscendGreaterOrEqual(&item{key: start}, func(i btree.Item) bool {
		it := i.(*item)
		if end != "" && it.key >= end {
			return false
		}
		return handler(it.key, it.value)
	})
}

// Len implements Store.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// Snapshot serializes every committed key as a JSON object.
func (s *MemoryStore) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := make(map[string]string, s.tree.Len())
	s.tree.Ascend(func(i btree.Item) bool {
		it := i.(*item)
		data[it.key] = it.value
		return true
	})

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore replaces the store contents with a Snapshot. On a decode error
// the store is left as it was.
func (s *MemoryStore) Restore(data []byte) error {
	var kvs map[string]string
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&kvs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear(false)
	for k, v := range kvs {
		s.tree.ReplaceOrInsert(&item{key: k, value: v})
	}
	return nil
}

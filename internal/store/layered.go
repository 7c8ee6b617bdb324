package store

import "time"

// LayeredStore fronts a durable disk store with a memory store. Reads
// check memory first and promote disk hits; writes go to both layers.
type LayeredStore struct {
	memory Store
	disk   Store
}

// NewLayeredStore creates the standard memory-over-disk arrangement.
func NewLayeredStore(memoryTTL time.Duration, diskDir string) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(memoryTTL),
		disk:   NewDiskStore(diskDir),
	}
}

func (s *LayeredStore) Get(key string) ([]byte, bool) {
	if val, found := s.memory.Get(key); found {
		return val, true
	}
	if val, found := s.disk.Get(key); found {
		s.memory.Put(key, val)
		return val, true
	}
	return nil, false
}

func (s *LayeredStore) Put(key string, value []byte) error {
	if err := s.memory.Put(key, value); err != nil {
		return err
	}
	return s.disk.Put(key, value)
}

func (s *LayeredStore) Delete(key string) error {
	s.memory.Delete(key)
	return s.disk.Delete(key)
}

func (s *LayeredStore) Clear() error {
	s.memory.Clear()
	return s.disk.Clear()
}

package store

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process store with a TTL. It fronts the disk store
// in the layered setup so repeated reads within one session skip the
// filesystem.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	if val, found := s.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.cache.Set(key, value, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.cache.Flush()
	return nil
}

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore persists records as one file per key. Records never expire;
// writing a key replaces whatever was there before.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a disk store rooted at dir. The directory is
// created lazily on the first write.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *DiskStore) Put(key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(s.path(key), value, 0644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (s *DiskStore) Delete(key string) error {
	return os.Remove(s.path(key))
}

func (s *DiskStore) Clear() error {
	return os.RemoveAll(s.dir)
}

// path maps a key to a file name. Colons in keys are not portable as
// file name characters, so they become underscores.
func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(key, ":", "_")+".json")
}

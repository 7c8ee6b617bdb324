// Package store persists per-statement records: the source set, the
// implication report, and the counterpoint report. Each record kind holds
// exactly one value per statement; a new run for the same statement
// overwrites the previous record.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Record kinds. Each kind is an independent namespace keyed by statement.
const (
	KindSources       = "sources"
	KindChains        = "chains"
	KindCounterpoints = "counter"
)

// Store is a latest-only key-value store.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
}

// Key derives the storage key for a record kind and statement. Statements
// are trimmed before hashing so surrounding whitespace never forks the
// record; the hash keeps arbitrary text filesystem-safe.
func Key(kind, statement string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(statement)))
	return "contrario:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}

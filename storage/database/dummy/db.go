package dummydb

import (
	"context"
	"sync"

	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

// DB keeps every collection document in memory.
type DB struct {
	sync.RWMutex
	table map[string][]byte
}

var _ kv.Backend = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	return &DB{table: make(map[string][]byte)}, nil
}

func (db *DB) Get(_ context.Context, key string) ([]byte, bool, error) {
	db.RLock()
	defer db.RUnlock()

	data, ok := db.table[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (db *DB) Put(_ context.Context, key string, data []byte) error {
	db.Lock()
	defer db.Unlock()

	db.table[key] = append([]byte(nil), data...)
	return nil
}

// Keys lists the stored collection keys.
func (db *DB) Keys() []string {
	db.RLock()
	defer db.RUnlock()

	keys := make([]string, 0, len(db.table))
	for k := range db.table {
		keys = append(keys, k)
	}
	return keys
}

// Package tctstore provides concrete backends for the Tiered Commitment
// Tree's incremental storage protocol (tct.Writer / tct.Reader): an
// in-memory reference store and a Pebble-backed store, both built on the
// same prefix-keyed schema over a minimal key-value interface.
package tctstore

// KeyValueReader wraps the Has and Get methods of a backing data store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put and Delete methods of a backing data store.
type KeyValueWriter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// RangeDeleter erases every key in the half-open range [lo, hi).
type RangeDeleter interface {
	DeleteRange(lo, hi []byte) error
}

// Iterator iterates over a range of a database's key/value pairs in
// ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
}

// KeyValueStore combines read, write and range-delete access to a backing
// data store, plus ranged iteration, which is all the schema in keys.go
// needs from an underlying database.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	RangeDeleter
	NewIterator(lo, hi []byte) Iterator
	Close() error
}

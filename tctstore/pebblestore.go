package tctstore

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

// PebbleStore is a KeyValueStore backed by a Pebble LSM database, used for
// any deployment that needs the stored tree image to survive a restart.
// DeleteRange is forwarded directly to Pebble's own range tombstone, so
// erasing a coalesced subtree's records is a single O(1) write rather than
// a scan-and-delete.
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebbleStore opens (creating if necessary) a Pebble database at dir.
func OpenPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Has(key []byte) (bool, error) {
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer closer.Close()
	_ = v
	return true, nil
}

func (s *PebbleStore) Get(key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *PebbleStore) Put(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

func (s *PebbleStore) Delete(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

func (s *PebbleStore) DeleteRange(lo, hi []byte) error {
	return s.db.DeleteRange(lo, hi, pebble.Sync)
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func (s *PebbleStore) NewIterator(lo, hi []byte) Iterator {
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return &pebbleIterator{err: err}
	}
	return &pebbleIterator{it: it, first: true}
}

type pebbleIterator struct {
	it    *pebble.Iterator
	first bool
	err   error
}

func (it *pebbleIterator) Next() bool {
	if it.it == nil {
		return false
	}
	if it.first {
		it.first = false
		return it.it.First()
	}
	return it.it.Next()
}

func (it *pebbleIterator) Key() []byte {
	if it.it == nil {
		return nil
	}
	return it.it.Key()
}

func (it *pebbleIterator) Value() []byte {
	if it.it == nil {
		return nil
	}
	return it.it.Value()
}

func (it *pebbleIterator) Release() {
	if it.it != nil {
		it.it.Close()
	}
}

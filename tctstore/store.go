package tctstore

import (
	"encoding/binary"

	"github.com/penumbra-zone/tct/tct"
)

// Store adapts a KeyValueStore to tct.Writer and tct.Reader, giving any of
// this package's backends the ability to persist and rebuild a tct.Tree.
type Store struct {
	kv KeyValueStore
}

// New wraps kv as a tct.Writer / tct.Reader.
func New(kv KeyValueStore) *Store {
	return &Store{kv: kv}
}

func (s *Store) AddHash(position tct.Position, height uint8, hash tct.Hash, essential bool) error {
	b := hash.Bytes()
	return s.kv.Put(hashKey(height, uint64(position)), b[:])
}

func (s *Store) AddCommitment(position tct.Position, commitment tct.Commitment) error {
	exists, err := s.kv.Has(commitmentKey(uint64(position)))
	if err != nil {
		return err
	}
	if exists {
		return tct.ErrDuplicateCommitment
	}
	b := commitment.Bytes()
	return s.kv.Put(commitmentKey(uint64(position)), b[:])
}

func (s *Store) DeleteRange(r tct.DeleteRange) error {
	for h := uint8(0); h < r.BelowHeight; h++ {
		lo := hashKey(h, uint64(r.Lo))
		hi := hashKey(h, uint64(r.Hi))
		if err := s.kv.DeleteRange(lo, hi); err != nil {
			return err
		}
	}
	return s.kv.DeleteRange(commitmentKey(uint64(r.Lo)), commitmentKey(uint64(r.Hi)))
}

func (s *Store) SetPosition(sp tct.StoredPosition) error {
	var buf [9]byte
	if sp.Full {
		buf[0] = 1
	}
	binary.BigEndian.PutUint64(buf[1:], uint64(sp.Position))
	return s.kv.Put(positionKey(), buf[:])
}

func (s *Store) SetForgotten(forgotten uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], forgotten)
	return s.kv.Put(forgottenKey(), buf[:])
}

func (s *Store) Position() (tct.StoredPosition, error) {
	v, err := s.kv.Get(positionKey())
	if err != nil {
		return tct.StoredPosition{}, err
	}
	if v == nil {
		return tct.StoredPosition{}, nil
	}
	return tct.StoredPosition{
		Full:     v[0] == 1,
		Position: tct.Position(binary.BigEndian.Uint64(v[1:])),
	}, nil
}

func (s *Store) Forgotten() (uint64, error) {
	v, err := s.kv.Get(forgottenKey())
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}

func (s *Store) Hashes(fn func(tct.HashRecord) error) error {
	it := s.kv.NewIterator([]byte{prefixHash}, []byte{prefixHash + 1})
	defer it.Release()
	for it.Next() {
		height, position, ok := decodeHashKey(it.Key())
		if !ok {
			continue
		}
		var b [32]byte
		copy(b[:], it.Value())
		h, err := tct.HashFromBytes(b)
		if err != nil {
			return err
		}
		if err := fn(tct.HashRecord{Position: tct.Position(position), Height: height, Hash: h, Essential: true}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Commitments(fn func(tct.CommitmentRecord) error) error {
	it := s.kv.NewIterator([]byte{prefixCommitment}, []byte{prefixCommitment + 1})
	defer it.Release()
	for it.Next() {
		position, ok := decodeCommitmentKey(it.Key())
		if !ok {
			continue
		}
		var b [32]byte
		copy(b[:], it.Value())
		c, err := tct.CommitmentFromBytes(b)
		if err != nil {
			return err
		}
		if err := fn(tct.CommitmentRecord{Position: tct.Position(position), Commitment: c}); err != nil {
			return err
		}
	}
	return nil
}

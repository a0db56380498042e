package tctstore

import (
	"bytes"
	"sync"
	"testing"
)

func TestMemoryStore_DeleteNonExistent(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Delete([]byte("nonexistent")); err != nil {
		t.Fatalf("Delete of non-existent key should not error: %v", err)
	}
}

func TestMemoryStore_Close(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	s := NewMemoryStore()
	key := []byte("key-ow")

	s.Put(key, []byte("first"))
	s.Put(key, []byte("second"))

	got, _ := s.Get(key)
	if !bytes.Equal(got, []byte("second")) {
		t.Fatalf("expected overwritten value 'second', got %q", got)
	}
}

func TestMemoryStore_HasAfterDelete(t *testing.T) {
	s := NewMemoryStore()
	key := []byte("k")
	s.Put(key, []byte("v"))

	ok, _ := s.Has(key)
	if !ok {
		t.Fatal("expected key to exist")
	}
	s.Delete(key)
	ok, _ = s.Has(key)
	if ok {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestMemoryStore_DeleteRange(t *testing.T) {
	s := NewMemoryStore()
	s.Put([]byte("a"), []byte("1"))
	s.Put([]byte("b"), []byte("2"))
	s.Put([]byte("c"), []byte("3"))
	s.Put([]byte("d"), []byte("4"))

	if err := s.DeleteRange([]byte("b"), []byte("d")); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}

	for _, k := range [][]byte{[]byte("a"), []byte("d")} {
		ok, _ := s.Has(k)
		if !ok {
			t.Fatalf("key %q should survive DeleteRange", k)
		}
	}
	for _, k := range [][]byte{[]byte("b"), []byte("c")} {
		ok, _ := s.Has(k)
		if ok {
			t.Fatalf("key %q should have been deleted", k)
		}
	}
}

func TestMemoryStore_IteratorEmpty(t *testing.T) {
	s := NewMemoryStore()
	it := s.NewIterator([]byte("prefix-"), []byte("prefix."))
	defer it.Release()

	if it.Next() {
		t.Fatal("expected no items for empty range")
	}
}

func TestMemoryStore_IteratorOrderedRange(t *testing.T) {
	s := NewMemoryStore()
	s.Put([]byte("x1"), []byte("v1"))
	s.Put([]byte("x3"), []byte("v3"))
	s.Put([]byte("x2"), []byte("v2"))
	s.Put([]byte("y1"), []byte("outside"))

	it := s.NewIterator([]byte("x"), []byte("y"))
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	want := []string{"x1", "x2", "x3"}
	if len(keys) != len(want) {
		t.Fatalf("got %v keys, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestMemoryStore_IteratorKeyValueBoundary(t *testing.T) {
	s := NewMemoryStore()
	s.Put([]byte("x-1"), []byte("val1"))

	it := s.NewIterator([]byte("x-"), []byte("x."))
	defer it.Release()

	if it.Key() != nil {
		t.Fatal("Key should be nil before first Next")
	}
	if !it.Next() {
		t.Fatal("expected at least one item")
	}
	if !bytes.Equal(it.Key(), []byte("x-1")) {
		t.Fatalf("expected key 'x-1', got %q", it.Key())
	}
	if !bytes.Equal(it.Value(), []byte("val1")) {
		t.Fatalf("expected value 'val1', got %q", it.Value())
	}
	if it.Next() {
		t.Fatal("expected no more items")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup

	n := 100
	wg.Add(n * 2)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			key := []byte{byte(i)}
			s.Put(key, key)
		}(i)
	}
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			key := []byte{byte(i)}
			s.Has(key)
			s.Get(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		ok, _ := s.Has([]byte{byte(i)})
		if !ok {
			t.Fatalf("key %d missing after concurrent writes", i)
		}
	}
}

func TestMemoryStore_EmptyValue(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put([]byte("k"), []byte{}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatal("expected empty value")
	}
	ok, _ := s.Has([]byte("k"))
	if !ok {
		t.Fatal("empty value should still register as existing")
	}
}

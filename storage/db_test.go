package storage

import (
	"errors"
	"testing"
)

func TestMemDBNotFound(t *testing.T) {
	db := NewMemDB()
	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, _ := db.Has([]byte("k")); !ok {
		t.Fatalf("expected key to exist")
	}
	if err := db.Delete([]byte("k")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := db.Has([]byte("k")); ok {
		t.Fatalf("expected key to be removed")
	}
}

func TestCacheDBBuffersUntilWrite(t *testing.T) {
	parent := NewMemDB()
	_ = parent.Put([]byte("keep"), []byte("1"))
	_ = parent.Put([]byte("drop"), []byte("2"))

	cache := NewCacheDB(parent)
	_ = cache.Put([]byte("new"), []byte("3"))
	_ = cache.Delete([]byte("drop"))

	if _, err := parent.Get([]byte("new")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("parent must not observe buffered put")
	}
	if _, err := cache.Get([]byte("drop")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cache must hide deleted key, got %v", err)
	}
	if value, err := cache.Get([]byte("keep")); err != nil || string(value) != "1" {
		t.Fatalf("cache must read through, got %q %v", value, err)
	}
	if cache.Dirty() != 2 {
		t.Fatalf("expected two dirty entries, got %d", cache.Dirty())
	}
	if err := cache.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if value, err := parent.Get([]byte("new")); err != nil || string(value) != "3" {
		t.Fatalf("expected committed put, got %q %v", value, err)
	}
	if ok, _ := parent.Has([]byte("drop")); ok {
		t.Fatalf("expected committed delete")
	}
}

func TestCacheDBDiscard(t *testing.T) {
	parent := NewMemDB()
	cache := NewCacheDB(parent)
	_ = cache.Put([]byte("k"), []byte("v"))
	cache.Discard()
	if err := cache.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if parent.Len() != 0 {
		t.Fatalf("discarded writes leaked into parent")
	}
}

func TestPrefixDBIsolatesNamespaces(t *testing.T) {
	parent := NewMemDB()
	a := NewPrefixDB(parent, []byte("a/"))
	b := NewPrefixDB(parent, []byte("b/"))
	_ = a.Put([]byte("k"), []byte("from-a"))
	if ok, _ := b.Has([]byte("k")); ok {
		t.Fatalf("prefix views must not share keys")
	}
	if value, err := parent.Get([]byte("a/k")); err != nil || string(value) != "from-a" {
		t.Fatalf("expected prefixed key in parent, got %q %v", value, err)
	}
}

func TestLevelDBBatchCommit(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	_ = db.Put([]byte("old"), []byte("x"))

	cache := NewCacheDB(db)
	_ = cache.Put([]byte("a"), []byte("1"))
	_ = cache.Put([]byte("b"), []byte("2"))
	_ = cache.Delete([]byte("old"))
	if err := cache.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if value, err := db.Get([]byte("b")); err != nil || string(value) != "2" {
		t.Fatalf("unexpected value %q %v", value, err)
	}
	if _, err := db.Get([]byte("old")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted key, got %v", err)
	}
}

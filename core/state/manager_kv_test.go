package state

import (
	"bytes"
	"math/big"
	"testing"

	"olympuspro/storage"
)

type sampleRecord struct {
	Name   string
	Amount *big.Int
}

func TestKVRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	key := BucketKey("records", []byte{0x01})
	if ok, err := manager.KVGet(key, &sampleRecord{}); err != nil || ok {
		t.Fatalf("expected missing record, got ok=%v err=%v", ok, err)
	}
	in := sampleRecord{Name: "bond", Amount: big.NewInt(12500)}
	if err := manager.KVPut(key, &in); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out sampleRecord
	ok, err := manager.KVGet(key, &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Name != in.Name || out.Amount.Cmp(in.Amount) != 0 {
		t.Fatalf("unexpected record %+v", out)
	}
	if err := manager.KVDelete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := manager.KVGet(key, nil); ok {
		t.Fatalf("expected record to be removed")
	}
}

func TestKVRejectsEmptyKey(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	if err := manager.KVPut(nil, "x"); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestKeyLayoutSeparatesBuckets(t *testing.T) {
	if bytes.Equal(BucketKey("a", []byte("bc")), BucketKey("ab", []byte("c"))) {
		t.Fatalf("bucket keys must not collide across boundaries")
	}
	if bytes.Equal(ItemKey("config"), BucketKey("config", nil)) {
		t.Fatalf("item and bucket keys must differ")
	}
}

func TestKVListHelpers(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	key := ItemKey("index")
	for _, v := range [][]byte{{1}, {2}, {1}} {
		if err := manager.KVAppend(key, v); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	var list [][]byte
	if err := manager.KVGetList(key, &list); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected duplicate to be ignored, got %d entries", len(list))
	}
	if err := manager.KVRemove(key, []byte{1}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := manager.KVRemove(key, []byte{2}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := manager.KVGetList(key, &list); err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}
}

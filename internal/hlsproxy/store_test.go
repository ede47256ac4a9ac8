package hlsproxy

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUStore_AddGetRemove(t *testing.T) {
	store := NewLRUStore(10)

	if _, ok := store.Get(Token("t1")); ok {
		t.Error("expected not found for empty store")
	}

	entry := TokenEntry{URL: "https://cdn/a.ts", ExpiresAt: time.Now().Add(time.Minute)}
	store.Add(Token("t1"), entry)

	got, ok := store.Get(Token("t1"))
	if !ok || got.URL != entry.URL {
		t.Errorf("Get: ok=%v got %+v", ok, got)
	}
	if store.Len() != 1 {
		t.Errorf("Len: got %d", store.Len())
	}

	if !store.Remove(Token("t1")) {
		t.Error("Remove should report the entry was present")
	}
	if store.Remove(Token("t1")) {
		t.Error("second Remove should report nothing removed")
	}
}

func TestLRUStore_evicts_oldest_added(t *testing.T) {
	store := NewLRUStore(2)
	store.Add(Token("a"), TokenEntry{URL: "a"})
	store.Add(Token("b"), TokenEntry{URL: "b"})

	// Reads must not refresh recency.
	store.Get(Token("a"))
	store.Add(Token("c"), TokenEntry{URL: "c"})

	if _, ok := store.Get(Token("a")); ok {
		t.Error("oldest token should have been evicted")
	}
	keys := store.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "c" {
		t.Errorf("Keys: got %v", keys)
	}
}

func TestNewLRUStore_default_capacity(t *testing.T) {
	store := NewLRUStore(0)
	for i := 0; i < 100; i++ {
		store.Add(Token("t"+strconv.Itoa(i)), TokenEntry{})
	}
	if store.Len() != 100 {
		t.Errorf("Len: got %d", store.Len())
	}
}

package hlsproxy

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultStoreCapacity bounds the number of live tokens held by NewLRUStore
// when a non-positive capacity is given.
const DefaultStoreCapacity = 100000

// Store is the storage abstraction for token entries.
// The TokenRepository owns expiry and token generation; a Store only holds
// entries. Implementations must be safe for concurrent use.
type Store interface {
	Get(token Token) (TokenEntry, bool)
	Add(token Token, entry TokenEntry)
	Remove(token Token) bool
	Keys() []Token
	Len() int
}

// LRUStore is a size-capped in-memory Store. When full, the least recently
// added token is evicted. Reads do not refresh recency, so eviction follows
// issuance order and drops the tokens closest to their deadline first.
type LRUStore struct {
	cache *lru.Cache[Token, TokenEntry]
}

// NewLRUStore returns an empty store holding at most capacity entries.
// If capacity <= 0, DefaultStoreCapacity is used.
func NewLRUStore(capacity int) *LRUStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[Token, TokenEntry](capacity)
	return &LRUStore{cache: cache}
}

// Get implements Store.Get.
func (s *LRUStore) Get(token Token) (TokenEntry, bool) {
	return s.cache.Peek(token)
}

// Add implements Store.Add.
func (s *LRUStore) Add(token Token, entry TokenEntry) {
	s.cache.Add(token, entry)
}

// Remove implements Store.Remove.
func (s *LRUStore) Remove(token Token) bool {
	return s.cache.Remove(token)
}

// Keys implements Store.Keys. Oldest first.
func (s *LRUStore) Keys() []Token {
	return s.cache.Keys()
}

// Len implements Store.Len.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}

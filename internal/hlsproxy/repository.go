package hlsproxy

import (
	"context"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultTokenTTL is the fixed validity window of an issued token.
const DefaultTokenTTL = 60 * time.Second

// TokenRepository defines the concurrency-safe contract for issuing and
// resolving segment tokens.
type TokenRepository interface {
	// Issue stores resolvedURL under a fresh token valid for the repository TTL.
	// Tokens are unique for the process lifetime and never reused.
	Issue(resolvedURL string) Token

	// Resolve returns the URL for token. ErrInvalidOrExpiredToken is returned
	// if the token is unknown or its deadline has been reached, even when the
	// entry has not been swept yet. A live token may be resolved any number of times.
	// When the backing Store is size-capped and full, the oldest tokens are
	// evicted and resolve as ErrInvalidOrExpiredToken before their deadline.
	Resolve(token Token) (string, error)

	// Expire removes token. Removing an unknown or already expired token is a no-op.
	Expire(token Token)

	// Sweep removes every expired entry and returns how many were removed.
	Sweep() int

	// Len returns the number of entries held, including expired ones not yet swept.
	Len() int
}

// InMemoryTokenRepository is the in-process TokenRepository.
// Expiry is checked lazily on Resolve and enforced physically by Sweep,
// normally driven by RunSweeper.
type InMemoryTokenRepository struct {
	store Store
	ttl   time.Duration
	seq   atomic.Uint64
	now   func() time.Time
}

// NewInMemoryTokenRepository constructs a repository with a default LRU store
// of the given capacity. If ttl <= 0, DefaultTokenTTL is used.
func NewInMemoryTokenRepository(capacity int, ttl time.Duration) *InMemoryTokenRepository {
	return NewInMemoryTokenRepositoryWithStore(NewLRUStore(capacity), ttl)
}

// NewInMemoryTokenRepositoryWithStore constructs a repository that uses the given Store.
func NewInMemoryTokenRepositoryWithStore(store Store, ttl time.Duration) *InMemoryTokenRepository {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &InMemoryTokenRepository{store: store, ttl: ttl, now: time.Now}
}

// Issue implements TokenRepository.Issue.
func (r *InMemoryTokenRepository) Issue(resolvedURL string) Token {
	now := r.now()
	token := r.newToken(now)
	r.store.Add(token, TokenEntry{
		URL:       resolvedURL,
		ExpiresAt: now.Add(r.ttl),
	})
	return token
}

// Resolve implements TokenRepository.Resolve.
func (r *InMemoryTokenRepository) Resolve(token Token) (string, error) {
	if token == "" {
		return "", ErrInvalidOrExpiredToken
	}
	entry, ok := r.store.Get(token)
	if !ok {
		return "", ErrInvalidOrExpiredToken
	}
	if entry.expired(r.now()) {
		r.store.Remove(token)
		return "", ErrInvalidOrExpiredToken
	}
	return entry.URL, nil
}

// Expire implements TokenRepository.Expire.
func (r *InMemoryTokenRepository) Expire(token Token) {
	r.store.Remove(token)
}

// Sweep implements TokenRepository.Sweep.
func (r *InMemoryTokenRepository) Sweep() int {
	now := r.now()
	n := 0
	for _, token := range r.store.Keys() {
		entry, ok := r.store.Get(token)
		if !ok || !entry.expired(now) {
			continue
		}
		if r.store.Remove(token) {
			n++
		}
	}
	return n
}

// Len implements TokenRepository.Len.
func (r *InMemoryTokenRepository) Len() int {
	return r.store.Len()
}

// RunSweeper calls Sweep every interval until ctx is done.
// onSweep, if non-nil, receives the number of entries removed by each pass.
func (r *InMemoryTokenRepository) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		interval = r.ttl / 12
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := r.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// newToken builds "<unix nanos base36>-<random hex>-<sequence base36>".
// The sequence alone makes tokens unique within the process; the random part
// keeps them from being guessed from a neighbouring token.
func (r *InMemoryTokenRepository) newToken(now time.Time) Token {
	seq := r.seq.Add(1)
	id := uuid.New()
	return Token(strconv.FormatInt(now.UnixNano(), 36) +
		"-" + hex.EncodeToString(id[:6]) +
		"-" + strconv.FormatUint(seq, 36))
}

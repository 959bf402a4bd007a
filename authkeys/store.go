package authkeys

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/runZeroInc/sshsigcheck/sshrsa"
)

const DefaultStoreSize = 4096

// Store holds entries by fingerprint, evicting the least recently used
// once full. It is safe for concurrent use.
type Store struct {
	cache *lru.Cache
}

func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultStoreSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("key store: %w", err)
	}
	return &Store{cache: c}, nil
}

// Add inserts or refreshes an entry. It reports whether another entry was
// evicted to make room.
func (s *Store) Add(e *Entry) bool {
	return s.cache.Add(e.Fingerprint, e)
}

func (s *Store) Get(fingerprint string) (*Entry, bool) {
	v, ok := s.cache.Get(fingerprint)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

func (s *Store) Len() int {
	return s.cache.Len()
}

// Entries lists stored entries from least to most recently used.
func (s *Store) Entries() []*Entry {
	keys := s.cache.Keys()
	res := make([]*Entry, 0, len(keys))
	for _, k := range keys {
		if v, ok := s.cache.Peek(k); ok {
			res = append(res, v.(*Entry))
		}
	}
	return res
}

// FindSigner returns the most recently used RSA entry whose key verifies
// sig over message, or nil if none does.
func (s *Store) FindSigner(v *sshrsa.Verifier, sig *sshrsa.RSASignature, message []byte) *Entry {
	entries := s.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.RSA == nil {
			continue
		}
		if v.Verify(e.RSA, sig, message) {
			s.cache.Get(e.Fingerprint)
			return e
		}
	}
	return nil
}

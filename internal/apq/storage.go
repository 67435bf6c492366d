package apq

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStorage keeps the most recently used queries in memory.
type LRUStorage struct {
	cache *lru.Cache[string, string]
}

var _ Storage = (*LRUStorage)(nil)

// NewLRUStorage returns a storage holding at most size queries.
func NewLRUStorage(size int) (*LRUStorage, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRUStorage{cache: cache}, nil
}

func (s *LRUStorage) Get(_ context.Context, hash string) (string, bool, error) {
	q, ok := s.cache.Get(hash)
	return q, ok, nil
}

func (s *LRUStorage) Set(_ context.Context, hash, query string) error {
	s.cache.Add(hash, query)
	return nil
}

// Len returns the number of stored queries.
func (s *LRUStorage) Len() int { return s.cache.Len() }

package sessions

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type memoryStore struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{c: cache.New(ttl, ttl/2), ttl: ttl}
}

func (s *memoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	raw, ok := v.([]byte)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *memoryStore) Put(ctx context.Context, id string, data []byte) error {
	s.c.Set(id, append([]byte(nil), data...), s.ttl)
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.c.Delete(id)
	return nil
}

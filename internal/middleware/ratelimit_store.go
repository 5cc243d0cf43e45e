package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/saaskit-io/saaskit/internal/cache"
)

// RateStore counts requests per key within a fixed window.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type cacheRateStore struct {
	store cache.Store
}

// NewCacheRateStore adapts a cache.Store (Redis or database backed) into a RateStore.
func NewCacheRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return &cacheRateStore{store: store}
}

func (s *cacheRateStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return s.store.IncrementWithTTL(ctx, key, window)
}

type memoryRateStore struct {
	mu   sync.Mutex
	data map[string]*memoryCounter
	now  func() time.Time
}

type memoryCounter struct {
	count     int64
	windowEnd time.Time
}

// NewMemoryRateStore returns an in-process RateStore suitable for
// single-instance deployments and tests.
func NewMemoryRateStore() RateStore {
	return &memoryRateStore{
		data: make(map[string]*memoryCounter),
		now:  time.Now,
	}
}

func (s *memoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ct, ok := s.data[key]
	if !ok || now.After(ct.windowEnd) {
		ct = &memoryCounter{windowEnd: now.Add(window)}
		s.data[key] = ct
	}
	ct.count++

	// Opportunistic cleanup keeps the map from growing without bound.
	if len(s.data) > 4096 {
		for k, v := range s.data {
			if now.After(v.windowEnd) {
				delete(s.data, k)
			}
		}
	}

	return ct.count, time.Until(ct.windowEnd), nil
}

package infra

import (
	"context"
	"sync"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"
)

// MemoryCounterStore é um CounterStore de processo único (dev, example-server, testes).
//
// O mutex aqui é o equivalente ao script atômico do Redis: ele serializa o
// store, não o rate limiter. Com mais de uma instância use o RedisCounterStore.
type MemoryCounterStore struct {
	mu           sync.Mutex
	entries      map[string]*windowEntry
	now          func() time.Time
	cleanupEvery time.Duration
}

type windowEntry struct {
	count     int64
	expiresAt time.Time
}

type MemoryCounterOption func(*MemoryCounterStore)

// WithClock troca o relógio (testes de expiração de janela).
func WithClock(now func() time.Time) MemoryCounterOption {
	return func(s *MemoryCounterStore) { s.now = now }
}

func WithCleanupEvery(d time.Duration) MemoryCounterOption {
	return func(s *MemoryCounterStore) { s.cleanupEvery = d }
}

func NewMemoryCounterStore(opts ...MemoryCounterOption) *MemoryCounterStore {
	s := &MemoryCounterStore{
		entries:      make(map[string]*windowEntry),
		now:          time.Now,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ domain.CounterStore = (*MemoryCounterStore)(nil)

func (s *MemoryCounterStore) IncrementWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStoreError(err)
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !now.Before(ent.expiresAt) {
		s.entries[key] = &windowEntry{count: 1, expiresAt: now.Add(window)}
		return 1, nil
	}
	ent.count++
	return ent.count, nil
}

// TTL devolve o tempo restante da janela de key (0 se ausente/expirada).
func (s *MemoryCounterStore) TTL(key string) time.Duration {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !now.Before(ent.expiresAt) {
		return 0
	}
	return ent.expiresAt.Sub(now)
}

func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove janelas expiradas.
func (s *MemoryCounterStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !now.Before(ent.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryCounterStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

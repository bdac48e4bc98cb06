package infra

import (
	"context"
	"sync"

	"jobportal-gateway/middleware/ratelimit/domain"
)

type Counters struct {
	Admitted int64
	Rejected int64
	FailOpen int64
}

func (c *Counters) add(o domain.Outcome) {
	switch o {
	case domain.OutcomeAdmitted:
		c.Admitted++
	case domain.OutcomeRejected:
		c.Rejected++
	case domain.OutcomeFailOpen:
		c.FailOpen++
	}
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byPolicy map[string]Counters
	byRoute  map[string]Counters
	byKey    map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byPolicy: make(map[string]Counters),
		byRoute:  make(map[string]Counters),
		byKey:    make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Outcome)
	bump(s.byPolicy, ev.Policy, ev.Outcome)
	bump(s.byRoute, route, ev.Outcome)
	if s.trackKeys {
		bump(s.byKey, ev.Key.String(), ev.Outcome)
	}
	return nil
}

func bump(m map[string]Counters, k string, o domain.Outcome) {
	c := m[k]
	c.add(o)
	m[k] = c
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByPolicy() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byPolicy)
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byRoute)
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byKey)
}

func copyCounters(in map[string]Counters) map[string]Counters {
	out := make(map[string]Counters, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

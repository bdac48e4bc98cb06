package infra

import (
	"context"
	_ "embed"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

//go:embed rate_limit.lua
var rateLimitLua string

var rateLimitScript = redis.NewScript(rateLimitLua)

// RedisCounterStore implementa domain.CounterStore com um script Lua:
// INCR + EXPIRE-se-novo rodam atomicamente no servidor, então vários
// gateways atrás do load balancer compartilham a mesma contagem.
type RedisCounterStore struct {
	rdb redis.Scripter
}

var _ domain.CounterStore = (*RedisCounterStore)(nil)

// NewRedisCounterStore não abre nem fecha conexão: o ciclo de vida do client
// é de quem chama (connect no startup, Close no shutdown).
func NewRedisCounterStore(rdb redis.Scripter) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

// LoadScript faz SCRIPT LOAD antecipado; sem ele o primeiro Run cai no EVAL.
func (s *RedisCounterStore) LoadScript(ctx context.Context) error {
	if err := rateLimitScript.Load(ctx, s.rdb).Err(); err != nil {
		return errors.WithMessage(domain.NewStoreError(err), "load rate limit script")
	}
	return nil
}

func (s *RedisCounterStore) IncrementWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error) {
	if s == nil || s.rdb == nil {
		return 0, domain.NewStoreError(errors.New("redis client not configured"))
	}

	secs := int64(window / time.Second)
	if secs <= 0 {
		secs = 1
	}

	// Run usa EVALSHA e cai para EVAL em NOSCRIPT.
	n, err := rateLimitScript.Run(ctx, s.rdb, []string{key}, secs).Int64()
	if err != nil {
		return 0, errors.WithMessagef(domain.NewStoreError(err), "incr %s", key)
	}
	return n, nil
}

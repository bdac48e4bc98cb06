package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

const defaultStatsPrefix = "ratelimit:stats"

type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal / por key.
	// total e policy são cumulativos e não expiram.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

// WithStatsPrefix troca o prefixo das chaves de estatística.
// Prefixos dentro de "rate_limit:" são ignorados: aquele namespace é só dos contadores.
func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		p := strings.Trim(prefix, ":")
		if p == "" || strings.HasPrefix(p+":", domain.KeyPrefix) {
			return
		}
		s.prefix = p
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: defaultStatsPrefix,
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Prefix() string { return s.prefix }

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := string(ev.Outcome)
	if field == "" {
		return nil
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if p := strings.TrimSpace(ev.Policy); p != "" {
		pipe.HIncrBy(ctx, s.prefix+":policy", p+":"+field, 1)
	}

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if ev.Method != "" || ev.Path != "" {
		routeField := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
		if routeField != "" {
			pipe.HIncrBy(ctx, s.prefix+":route", routeField+":"+field, 1)
		}
	}

	if s.trackKeys {
		if c := strings.TrimSpace(ev.Key.Client); c != "" {
			keyKey := s.prefix + ":key:" + ev.Key.Route + ":" + c
			pipe.HIncrBy(ctx, keyKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

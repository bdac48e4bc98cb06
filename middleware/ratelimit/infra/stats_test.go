package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(outcome domain.Outcome) domain.StatsEvent {
	return domain.StatsEvent{
		Key:     domain.NewKey("/api/auth/login", "1.2.3.4"),
		Policy:  domain.PolicyAuth,
		Outcome: outcome,
		Method:  "POST",
		Path:    "/api/auth/login",
		At:      time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC),
	}
}

func TestMemoryStatsStore_Record(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, event(domain.OutcomeAdmitted)))
	require.NoError(t, s.Record(ctx, event(domain.OutcomeRejected)))
	require.NoError(t, s.Record(ctx, event(domain.OutcomeFailOpen)))

	assert.Equal(t, Counters{Admitted: 1, Rejected: 1, FailOpen: 1}, s.Total())
	assert.Equal(t, Counters{Admitted: 1, Rejected: 1, FailOpen: 1}, s.ByPolicy()[domain.PolicyAuth])
	assert.Equal(t, int64(1), s.ByRoute()["POST /api/auth/login"].Rejected)
	assert.Contains(t, s.ByKey(), "rate_limit:/api/auth/login:1.2.3.4")
}

func TestRedisStatsStore_Record(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStatsStore(rdb, WithStatsTrackKeys(true), WithStatsTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, event(domain.OutcomeAdmitted)))
	require.NoError(t, s.Record(ctx, event(domain.OutcomeRejected)))
	require.NoError(t, s.Record(ctx, event(domain.OutcomeRejected)))

	assert.Equal(t, "1", mr.HGet("ratelimit:stats:total", "admitted"))
	assert.Equal(t, "2", mr.HGet("ratelimit:stats:total", "rejected"))
	assert.Equal(t, "2", mr.HGet("ratelimit:stats:policy", "auth:rejected"))
	assert.Equal(t, "2", mr.HGet("ratelimit:stats:route", "POST /api/auth/login:rejected"))
	assert.Equal(t, "1", mr.HGet("ratelimit:stats:minute:202610181230", "admitted"))
	assert.Equal(t, time.Hour, mr.TTL("ratelimit:stats:minute:202610181230"))
	assert.Equal(t, "2", mr.HGet("ratelimit:stats:key:/api/auth/login:1.2.3.4", "rejected"))

	for _, k := range mr.Keys() {
		assert.NotContains(t, k, domain.KeyPrefix, "stats nunca escreve no namespace dos contadores")
	}
}

func TestRedisStatsStore_PrefixCannotShadowCounters(t *testing.T) {
	_, rdb := newTestRedis(t)
	assert.Equal(t, "ratelimit:stats", NewRedisStatsStore(rdb, WithStatsPrefix("rate_limit:stats")).Prefix())
	assert.Equal(t, "gw:stats", NewRedisStatsStore(rdb, WithStatsPrefix(":gw:stats:")).Prefix())
}

func TestPrometheusStatsStore_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPrometheusStatsStore(reg)
	require.NoError(t, err)

	ctx := context.Background()
	_ = s.Record(ctx, event(domain.OutcomeAdmitted))
	_ = s.Record(ctx, event(domain.OutcomeRejected))
	_ = s.Record(ctx, event(domain.OutcomeRejected))

	assert.Equal(t, 2.0, testutil.ToFloat64(s.Collector().WithLabelValues(domain.PolicyAuth, "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Collector().WithLabelValues(domain.PolicyAuth, "admitted")))

	// registrar de novo reaproveita o collector existente
	again, err := NewPrometheusStatsStore(reg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(again.Collector().WithLabelValues(domain.PolicyAuth, "rejected")))
}

func TestPrometheusStatsStore_RejectsForeignCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "jobportal_gateway",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      decisionsHelp,
	}, []string{"policy", "outcome"}))

	var s *PrometheusStatsStore
	var err error
	require.NotPanics(t, func() { s, err = NewPrometheusStatsStore(reg) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "*prometheus.GaugeVec")
	assert.Nil(t, s)
}

type failingStats struct{ calls int }

func (f *failingStats) Record(context.Context, domain.StatsEvent) error {
	f.calls++
	return errors.New("boom")
}

func TestMultiStats_RecordsAllAndReturnsFirstError(t *testing.T) {
	mem := NewMemoryStatsStore()
	bad := &failingStats{}
	m := MultiStats{bad, nil, mem}

	err := m.Record(context.Background(), event(domain.OutcomeAdmitted))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, int64(1), mem.Total().Admitted)
}

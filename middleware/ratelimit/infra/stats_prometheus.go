package infra

import (
	"context"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const decisionsHelp = "Rate limit decisions by policy and outcome."

// PrometheusStatsStore conta decisões por política e resultado.
// Sem label de chave/cliente: cardinalidade controlada.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobportal_gateway",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      decisionsHelp,
	}, []string{"policy", "outcome"})

	if reg != nil {
		if err := reg.Register(decisions); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, errors.Wrap(err, "register ratelimit decisions collector")
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, errors.Errorf("ratelimit decisions collector already registered as %T", are.ExistingCollector)
			}
			decisions = existing
		}
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.decisions.WithLabelValues(ev.Policy, string(ev.Outcome)).Inc()
	return nil
}

// Collector expõe o vetor (testes usam testutil.ToFloat64).
func (s *PrometheusStatsStore) Collector() *prometheus.CounterVec { return s.decisions }

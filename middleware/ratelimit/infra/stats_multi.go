package infra

import (
	"context"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/pkg/errors"
)

// MultiStats repassa o evento para todos os stores e devolve o primeiro erro.
type MultiStats []domain.StatsStore

func (m MultiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = errors.WithMessage(err, "record stats")
		}
	}
	return first
}

package infra

import (
	"context"
	"sync"

	"jobportal-gateway/middleware/ratelimit/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um semáforo baseado em channel com capacidade `max`.
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	// ctx já encerrado não disputa vaga com o select abaixo.
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case p.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.sem }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

// InFlight é quantas vagas estão ocupadas agora.
func (p *chanPool) InFlight() int { return len(p.sem) }

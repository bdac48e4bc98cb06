package application

import (
	"context"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService concentra a regra de aquisição/liberação de vagas com timeout,
// sem saber nada sobre HTTP. No gateway ela protege o grupo de upload.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

func noopRelease() {}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida e release é no-op.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return noopRelease, true
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if !ok || release == nil {
		return noopRelease, false
	}
	return release, true
}

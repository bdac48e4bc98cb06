package application

import (
	"context"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/pkg/errors"
)

// DefaultStoreTimeout limita a chamada ao store de contadores.
const DefaultStoreTimeout = 500 * time.Millisecond

// Service concentra a regra de aplicação do rate limit (janela fixa).
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// Não há lock local: a operação atômica no store é o ponto de serialização,
// o que vale também entre várias instâncias do gateway.
type Service struct {
	Store   domain.CounterStore
	Timeout time.Duration
}

// Evaluate incrementa o contador de key (uma única tentativa, sem retry) e
// compara com policy.Limit.
//
// Se o store falhar, retorna Admit junto com um erro que envolve
// domain.ErrStoreUnavailable: quem chama deve deixar passar e apenas logar.
// O Reject usa a janela nominal da política como RetryAfter.
func (s Service) Evaluate(ctx context.Context, key domain.Key, policy domain.Policy) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Admit(0), nil
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}

	storeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	count, err := s.Store.IncrementWithExpiry(storeCtx, key.String(), policy.Window)
	if err != nil {
		if !domain.IsStoreUnavailable(err) {
			err = domain.NewStoreError(err)
		}
		return domain.Admit(0), errors.WithMessagef(err, "evaluate %s (policy %s)", key, policy.Name)
	}

	if count <= int64(policy.Limit) {
		return domain.Admit(count), nil
	}
	return domain.Reject(count, policy.Window), nil
}

package domain

import "context"

// SlotPool limita quantos requests ficam em voo ao mesmo tempo
// (ex: uploads multipart que seguram conexão com o upstream).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Com ok=true, release deve ser chamado exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

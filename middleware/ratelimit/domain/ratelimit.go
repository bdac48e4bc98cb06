package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// KeyPrefix é o namespace das chaves de contador no store compartilhado.
// Nenhum outro código deve ler/escrever chaves com esse prefixo.
const KeyPrefix = "rate_limit:"

// UnknownClient é a identidade usada quando não há XFF nem RemoteAddr.
// Todos esses clientes compartilham o mesmo contador.
const UnknownClient = "unknown"

// Key identifica uma cota: rota (path cru) + identidade do cliente.
type Key struct {
	Route  string
	Client string
}

// NewKey monta a chave substituindo cliente vazio por "unknown".
func NewKey(route, client string) Key {
	if client == "" {
		client = UnknownClient
	}
	return Key{Route: route, Client: client}
}

// String devolve a chave usada no store: "rate_limit:<rota>:<cliente>".
func (k Key) String() string {
	client := k.Client
	if client == "" {
		client = UnknownClient
	}
	return KeyPrefix + k.Route + ":" + client
}

// CounterStore é a única porta de entrada para os contadores de janela.
//
// IncrementWithExpiry precisa ser atômico no store: cria o contador com 1 e
// expiração = window quando ausente/expirado; caso contrário incrementa sem
// mexer na expiração. Retorna o valor resultante.
//
// Erros retornados devem envolver ErrStoreUnavailable.
//
//go:generate mockgen -destination=mocks/counter_store.go -package=mocks jobportal-gateway/middleware/ratelimit/domain CounterStore
type CounterStore interface {
	IncrementWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Decision struct {
	Allowed bool
	// Count é o valor do contador após o incremento (0 quando não houve incremento).
	Count int64
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

func Admit(count int64) Decision {
	return Decision{Allowed: true, Count: count}
}

func Reject(count int64, retryAfter time.Duration) Decision {
	return Decision{Allowed: false, Count: count, RetryAfter: retryAfter}
}

// RetryAfterSeconds arredonda para cima, nunca menos que 1 quando bloqueado.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := int(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

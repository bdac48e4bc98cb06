// Package application contém os casos de uso (regras de aplicação) para rate limit
// e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Evaluate(ctx, key, policy) retorna uma Decision (admit/reject + retry-after)
// e, quando o store cai, Admit + erro ErrStoreUnavailable (fail-open).
package application

// Package ratelimit fornece adapters HTTP (net/http) para rate limit e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (Evaluate com janela fixa, acquire/timeout) sem net/http
//   - infra: implementações concretas (script Lua no Redis, store em memória, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Monta a chave "rate_limit:<path>:<cliente>" (XFF, RemoteAddr ou "unknown")
//  2. Chama a camada application para obter a decisão da política do grupo de rotas
//  3. Se bloqueado, responde 429 com {"success":false,"message":...,"retryAfter":<janela>}
//  4. Se permitido (ou se o store caiu: fail-open), chama o próximo handler
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_STORE, REDIS_ADDR e RATE_LIMIT_<POLICY>_LIMIT / _WINDOW.
package ratelimit

// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RedisCounterStore: janela fixa via script Lua (INCR + EXPIRE se novo), go-redis
//   - MemoryCounterStore: mesma semântica em um único processo
//   - RedisStatsStore / PrometheusStatsStore / MemoryStatsStore: estatísticas best-effort
//   - ChanPool: semáforo simples para limite de concorrência
package infra

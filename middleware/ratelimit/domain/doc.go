// Package domain define contratos e tipos de domínio para rate limit e concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
// Aqui ficam a chave de cota (Key), o catálogo de políticas (Policies),
// a decisão (Decision) e a porta atômica para o store de contadores (CounterStore).
package domain

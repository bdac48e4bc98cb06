// utilitário pequeno para formatação rápida/consistente de valores numéricos em headers.
//    Evita puxar fmt (que é mais “pesado” e genérico) só para formatação simples

package ratelimit

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

func formatInt64(v int64) string { return strconv.FormatInt(v, 10) }

// remaining nunca fica negativo (requests rejeitados também incrementam).
func remaining(limit int, count int64) int64 {
	if r := int64(limit) - count; r > 0 {
		return r
	}
	return 0
}

package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"jobportal-gateway/middleware/ratelimit/domain"
)

// KeyFunc deriva a chave de cota de um request.
type KeyFunc func(r *http.Request) domain.Key

// ClientIdentity devolve a identidade do cliente:
// primeiro IP do X-Forwarded-For (se confiável), senão host do RemoteAddr,
// senão "unknown".
func ClientIdentity(r *http.Request, trustXFF bool) string {
	if trustXFF {
		// pega o primeiro IP do X-Forwarded-For (cliente original)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	// fallback: RemoteAddr
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return domain.UnknownClient
}

// DefaultKeyFunc usa o path cru como rota (sem normalizar prefixo de versão).
func DefaultKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) domain.Key {
		return domain.NewKey(r.URL.Path, ClientIdentity(r, trustXFF))
	}
}

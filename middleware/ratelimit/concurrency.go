package ratelimit

import (
	"net/http"
	"time"

	"jobportal-gateway/middleware/ratelimit/application"
	"jobportal-gateway/middleware/ratelimit/domain"
	"jobportal-gateway/middleware/ratelimit/infra"
)

// ConcurrencyOptions configura o teto de uploads em andamento.
type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	// RetryAfter vai no header e no corpo da recusa (padrão 1s).
	RetryAfter time.Duration
	// Pool permite injetar outro semáforo; nil usa infra.NewChanPool(Max).
	Pool domain.SlotPool
}

// ConcurrencyMiddleware complementa a política upload: a cota por janela
// conta requests, mas um multipart grande segura a conexão com o upstream
// por muito tempo. Sem vaga dentro de AcquireTimeout o request é recusado
// com RejectStatus (padrão 503) e o mesmo corpo JSON do 429, antes de o
// corpo do upload ser lido.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 && opts.Pool == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Second
	}
	if opts.Pool == nil {
		opts.Pool = infra.NewChanPool(opts.Max)
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}
	retryAfter := domain.Reject(0, opts.RetryAfter).RetryAfterSeconds()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				writeReject(w, opts.RejectStatus, BusyMessage, retryAfter)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

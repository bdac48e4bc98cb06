package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jobportal-gateway/middleware/ratelimit/application"
	"jobportal-gateway/middleware/ratelimit/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Evaluator é o contrato do rate limiter (application.Service implementa).
type Evaluator interface {
	Evaluate(ctx context.Context, key domain.Key, policy domain.Policy) (domain.Decision, error)
}

type Options struct {
	Limiter             Evaluator
	Policy              domain.Policy
	Stats               domain.StatsStore
	Logger              *zap.Logger
	KeyFn               KeyFunc
	TrustXForwardedFor  bool
	AddRateLimitHeaders bool

	// FailOpenLogEvery limita o log de store indisponível (padrão 10s).
	// Numa queda do Redis todo request cai no fail-open.
	FailOpenLogEvery time.Duration

	// StatsTimeout limita cada Record (padrão application.DefaultStoreTimeout),
	// senão uma queda do Redis custa dois timeouts por request.
	StatsTimeout time.Duration
}

// Middleware aplica opts.Policy a cada request.
//
// Admit segue para o próximo handler; Reject responde 429 com corpo JSON e
// Retry-After. Falha no store libera o request (fail-open) e gera um warning.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if err := opts.Policy.Validate(); err != nil {
		panic(fmt.Sprintf("ratelimit: %v", err))
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FailOpenLogEvery <= 0 {
		opts.FailOpenLogEvery = 10 * time.Second
	}
	if opts.StatsTimeout <= 0 {
		opts.StatsTimeout = application.DefaultStoreTimeout
	}

	policy := opts.Policy
	log := opts.Logger.With(zap.String("policy", policy.Name))
	failOpenLog := &rate.Sometimes{First: 1, Interval: opts.FailOpenLogEvery}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec, err := opts.Limiter.Evaluate(r.Context(), key, policy)
			outcome := domain.OutcomeAdmitted
			switch {
			case err != nil && r.Context().Err() != nil:
				// cliente desistiu: não é queda do store e não há a quem responder
				log.Debug("rate limit evaluation aborted by client",
					zap.String("key", key.String()),
					zap.Error(err))
				return
			case err != nil:
				// fail open: o store é auxiliar, não bloqueia tráfego legítimo
				outcome = domain.OutcomeFailOpen
				failOpenLog.Do(func() {
					log.Warn("rate limit store unavailable, failing open",
						zap.String("key", key.String()),
						zap.Error(err))
				})
			case !dec.Allowed:
				outcome = domain.OutcomeRejected
				log.Debug("rate limit exceeded",
					zap.String("key", key.String()),
					zap.Int64("count", dec.Count),
					zap.NamedError("reason", domain.ErrQuotaExceeded))
			}

			if opts.Stats != nil {
				ev := domain.StatsEvent{
					Key:     key,
					Policy:  policy.Name,
					Outcome: outcome,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				}
				statsCtx, cancel := context.WithTimeout(r.Context(), opts.StatsTimeout)
				if serr := opts.Stats.Record(statsCtx, ev); serr != nil {
					log.Debug("rate limit stats record failed", zap.Error(serr))
				}
				cancel()
			}

			if opts.AddRateLimitHeaders {
				h := w.Header()
				h.Set("X-RateLimit-Policy", policy.Name)
				h.Set("X-RateLimit-Limit", formatInt(policy.Limit))
				if outcome != domain.OutcomeFailOpen {
					h.Set("X-RateLimit-Remaining", formatInt64(remaining(policy.Limit, dec.Count)))
				}
			}

			if outcome == domain.OutcomeRejected {
				writeTooManyRequests(w, dec.RetryAfterSeconds())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package main

import (
	"net/http"
	"strings"
	"time"

	"jobportal-gateway/middleware/ratelimit"
	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type routerDeps struct {
	upstream http.Handler
	limiter  ratelimit.Evaluator
	policies domain.Policies
	stats    domain.StatsStore
	logger   *zap.Logger
	metrics  http.Handler

	trustXFF   bool
	addHeaders bool

	// storeTimeout limita também o Record das stats.
	storeTimeout time.Duration

	uploadMax     int
	uploadTimeout time.Duration
}

// canonicalRoute normaliza o path do jeito que o backend roteia (Express sem
// strict/caseSensitive): "/API/Auth/Login/" e "/api/auth/login" são a mesma rota.
func canonicalRoute(p string) string {
	p = strings.ToLower(p)
	if t := strings.TrimRight(p, "/"); t != "" {
		return t
	}
	return "/"
}

// canonicalRouting faz o chi casar os grupos pelo path canônico. O request
// segue para o upstream com o path original.
func canonicalRouting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.RoutePath = canonicalRoute(r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// newRouter monta os grupos de rotas do job portal, cada um com sua política.
// /health e /metrics não passam pelo rate limit.
func newRouter(d routerDeps) http.Handler {
	// a chave usa a mesma rota canônica do roteamento, senão "/login/" teria
	// um contador separado de "/login"
	keyFn := func(r *http.Request) domain.Key {
		return domain.NewKey(canonicalRoute(r.URL.Path), ratelimit.ClientIdentity(r, d.trustXFF))
	}
	limit := func(name string) func(http.Handler) http.Handler {
		return ratelimit.Middleware(ratelimit.Options{
			Limiter:             d.limiter,
			Policy:              d.policies.MustLookup(name),
			Stats:               d.stats,
			StatsTimeout:        d.storeTimeout,
			Logger:              d.logger,
			KeyFn:               keyFn,
			TrustXForwardedFor:  d.trustXFF,
			AddRateLimitHeaders: d.addHeaders,
		})
	}
	proxy := d.upstream

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(canonicalRouting)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":"ok"}`))
	})
	if d.metrics != nil {
		r.Handle("/metrics", d.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limit(domain.PolicyAuth))
			r.Handle("/auth/login", proxy)
			r.Handle("/auth/register", proxy)
		})

		r.Group(func(r chi.Router) {
			r.Use(limit(domain.PolicyStrictAuth))
			r.Handle("/auth/forgot-password", proxy)
			r.Handle("/auth/reset-password", proxy)
			r.Handle("/auth/change-password", proxy)
		})

		r.Group(func(r chi.Router) {
			r.Use(limit(domain.PolicyUpload))
			r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
				Max:            d.uploadMax,
				AcquireTimeout: d.uploadTimeout,
			}))
			r.Handle("/upload", proxy)
			r.Handle("/upload/*", proxy)
			r.Handle("/companies/{companyID}/logo", proxy)
			r.Handle("/applications/{applicationID}/resume", proxy)
		})

		r.Group(func(r chi.Router) {
			r.Use(limit(domain.PolicyPublic))
			r.Handle("/public/*", proxy)
		})

		r.Group(func(r chi.Router) {
			r.Use(limit(domain.PolicyAPI))
			r.Handle("/*", proxy)
		})
	})

	// fora de /api (páginas/assets do frontend) conta como tráfego público
	r.Group(func(r chi.Router) {
		r.Use(limit(domain.PolicyPublic))
		r.Handle("/*", proxy)
	})

	return r
}

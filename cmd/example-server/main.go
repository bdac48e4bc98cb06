package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal-gateway/middleware/ratelimit"
	"jobportal-gateway/middleware/ratelimit/application"
	"jobportal-gateway/middleware/ratelimit/domain"
	"jobportal-gateway/middleware/ratelimit/infra"

	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	// Exemplo: injetando o middleware diretamente no seu webserver (sem proxy),
	// com o store em memória (uma instância só).
	counters := infra.NewMemoryCounterStore()
	stats := infra.NewMemoryStatsStore(infra.WithTrackKeys(true))
	limiter := application.Service{Store: counters}
	policies := domain.DefaultPolicies()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	counters.StartJanitor(ctx)

	withPolicy := func(name string, h http.Handler) http.Handler {
		return ratelimit.Middleware(ratelimit.Options{
			Limiter:             limiter,
			Policy:              policies.MustLookup(name),
			Stats:               stats,
			Logger:              logger,
			TrustXForwardedFor:  true,
			AddRateLimitHeaders: true,
		})(h)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}` + "\n"))
	})

	mux := http.NewServeMux()
	mux.Handle("/login", withPolicy(domain.PolicyAuth, ok))
	mux.Handle("/forgot-password", withPolicy(domain.PolicyStrictAuth, ok))
	mux.Handle("/upload", withPolicy(domain.PolicyUpload,
		ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 5})(ok)))
	mux.Handle("/", withPolicy(domain.PolicyPublic, ok))

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		t := stats.Total()
		logger.Info("rate limit totals",
			zap.Int64("admitted", t.Admitted),
			zap.Int64("rejected", t.Rejected),
			zap.Int64("failOpen", t.FailOpen))
	}()

	logger.Info("example server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal-gateway/middleware/ratelimit/application"
	"jobportal-gateway/middleware/ratelimit/domain"
	"jobportal-gateway/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		// logger ainda não existe
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}

func run(cfg config, logger *zap.Logger) error {
	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		return err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("proxy error", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var stats []domain.StatsStore
	var metrics http.Handler
	if cfg.metricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		promStats, err := infra.NewPrometheusStatsStore(reg)
		if err != nil {
			return err
		}
		stats = append(stats, promStats)
		metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	var counters domain.CounterStore
	switch cfg.rateStore {
	case "redis":
		rdb, err := openRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		redisCounters := infra.NewRedisCounterStore(rdb)
		if err := redisCounters.LoadScript(ctx); err != nil {
			return err
		}
		counters = redisCounters

		if cfg.rateStatsEnabled {
			stats = append(stats, infra.NewRedisStatsStore(
				rdb,
				infra.WithStatsPrefix(cfg.rateStatsPrefix),
				infra.WithStatsTTL(cfg.rateStatsTTL),
				infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
			))
		}
	default:
		memCounters := infra.NewMemoryCounterStore()
		memCounters.StartJanitor(ctx)
		counters = memCounters
		logger.Warn("using in-memory rate limit store, counters are not shared between instances")
	}

	var statsStore domain.StatsStore
	if len(stats) > 0 {
		statsStore = infra.MultiStats(stats)
	}

	h := newRouter(routerDeps{
		upstream:      proxy,
		limiter:       application.Service{Store: counters, Timeout: cfg.rateStoreTimeout},
		policies:      cfg.policies,
		stats:         statsStore,
		logger:        logger,
		metrics:       metrics,
		trustXFF:      cfg.trustXFF,
		addHeaders:    cfg.addHeaders,
		storeTimeout:  cfg.rateStoreTimeout,
		uploadMax:     cfg.uploadConcurrencyMax,
		uploadTimeout: cfg.uploadConcurrencyTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening",
		zap.String("addr", cfg.listenAddr),
		zap.String("upstream", target.String()),
		zap.String("store", cfg.rateStore),
		zap.Bool("trustXFF", cfg.trustXFF))
	for _, name := range cfg.policies.Names() {
		p := cfg.policies[name]
		logger.Info("rate limit policy",
			zap.String("policy", name),
			zap.Int("limit", p.Limit),
			zap.Int("windowSeconds", p.WindowSeconds()))
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openRedis conecta no startup e valida com PING; o Close fica com run.
func openRedis(ctx context.Context, cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.redisAddr,
		Password:     cfg.redisPassword,
		DB:           cfg.redisDB,
		DialTimeout:  cfg.rateStoreTimeout,
		ReadTimeout:  cfg.rateStoreTimeout,
		WriteTimeout: cfg.rateStoreTimeout,
		// uma tentativa por request; o fail-open cuida do resto
		MaxRetries: -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func newLogger(cfg config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.logDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.logLevel)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level
	return zcfg.Build()
}

package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type config struct {
	listenAddr  string
	upstreamURL string
	trustXFF    bool
	addHeaders  bool

	rateStore        string // "redis" ou "memory"
	rateStoreTimeout time.Duration
	redisAddr        string
	redisPassword    string
	redisDB          int

	policies domain.Policies

	uploadConcurrencyMax     int
	uploadConcurrencyTimeout time.Duration

	rateStatsEnabled   bool
	rateStatsPrefix    string
	rateStatsTTL       time.Duration
	rateStatsTrackKeys bool
	metricsEnabled     bool

	logLevel       string
	logDevelopment bool
}

// policyEnv mapeia nome da política -> sufixo das variáveis RATE_LIMIT_<X>_LIMIT/_WINDOW.
var policyEnv = map[string]string{
	domain.PolicyAuth:       "AUTH",
	domain.PolicyStrictAuth: "STRICT_AUTH",
	domain.PolicyPublic:     "PUBLIC",
	domain.PolicyAPI:        "API",
	domain.PolicyUpload:     "UPLOAD",
}

// loadConfig lê o .env (se existir) e depois o ambiente.
func loadConfig(envFiles ...string) (config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return config{}, errors.Wrap(err, "load env file")
	}
	return readConfig()
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = strings.TrimSpace(os.Getenv("UPSTREAM_URL"))
	// o gateway fica atrás do load balancer, que preenche o X-Forwarded-For
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", true)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)

	cfg.rateStore = strings.ToLower(getenvDefault("RATE_STORE", "redis"))
	cfg.rateStoreTimeout = getenvDurationDefault("RATE_STORE_TIMEOUT", 500*time.Millisecond)
	cfg.redisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	policies, err := readPolicies()
	if err != nil {
		return config{}, err
	}
	cfg.policies = policies

	cfg.uploadConcurrencyMax = getenvIntDefault("UPLOAD_CONCURRENCY_MAX", 20)
	cfg.uploadConcurrencyTimeout = getenvDurationDefault("UPLOAD_CONCURRENCY_TIMEOUT", 2*time.Second)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)
	cfg.metricsEnabled = getenvBoolDefault("METRICS_ENABLED", true)

	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.logDevelopment = getenvBoolDefault("LOG_DEVELOPMENT", false)

	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	switch cfg.rateStore {
	case "redis":
		if strings.TrimSpace(cfg.redisAddr) == "" {
			return config{}, errors.New("REDIS_ADDR is required when RATE_STORE=redis")
		}
	case "memory":
		if cfg.rateStatsEnabled {
			return config{}, errors.New("RATE_STATS_ENABLED requires RATE_STORE=redis")
		}
	default:
		return config{}, errors.Errorf("RATE_STORE must be redis or memory, got %q", cfg.rateStore)
	}
	if cfg.rateStoreTimeout <= 0 {
		return config{}, errors.New("RATE_STORE_TIMEOUT must be > 0")
	}
	if cfg.uploadConcurrencyMax < 0 {
		return config{}, errors.New("UPLOAD_CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

// readPolicies aplica RATE_LIMIT_<X>_LIMIT (inteiro) e RATE_LIMIT_<X>_WINDOW
// (segundos ou duração Go, ex: "15m") sobre o catálogo padrão.
// Valor inválido é erro: cota errada em silêncio é pior que não subir.
func readPolicies() (domain.Policies, error) {
	ps := domain.DefaultPolicies()
	for _, name := range ps.Names() {
		suffix := policyEnv[name]
		limitKey := "RATE_LIMIT_" + suffix + "_LIMIT"
		windowKey := "RATE_LIMIT_" + suffix + "_WINDOW"

		var limit int
		if v := strings.TrimSpace(os.Getenv(limitKey)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid %s", limitKey)
			}
			if n <= 0 {
				return nil, errors.Errorf("%s must be > 0", limitKey)
			}
			limit = n
		}

		var window time.Duration
		if v := strings.TrimSpace(os.Getenv(windowKey)); v != "" {
			d, err := parseWindow(v)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid %s", windowKey)
			}
			window = d
		}

		if err := ps.Override(name, limit, window); err != nil {
			return nil, errors.WithMessagef(err, "%s/%s", limitKey, windowKey)
		}
	}
	return ps, nil
}

func parseWindow(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, errors.Errorf("window must be > 0, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Errorf("window must be > 0, got %s", d)
	}
	return d, nil
}

func getenvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

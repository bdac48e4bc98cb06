package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobportal-gateway/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://backend:5000")

	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.listenAddr)
	assert.Equal(t, "redis", cfg.rateStore)
	assert.Equal(t, "localhost:6379", cfg.redisAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.rateStoreTimeout)
	assert.True(t, cfg.trustXFF)
	assert.Equal(t, domain.DefaultPolicies(), cfg.policies)
}

func TestReadConfig_RequiresUpstream(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "")
	_, err := readConfig()
	assert.EqualError(t, err, "UPSTREAM_URL is required")
}

func TestReadConfig_PolicyOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://backend:5000")
	t.Setenv("RATE_LIMIT_AUTH_LIMIT", "10")
	t.Setenv("RATE_LIMIT_UPLOAD_WINDOW", "120")
	t.Setenv("RATE_LIMIT_STRICT_AUTH_WINDOW", "1h")

	cfg, err := readConfig()
	require.NoError(t, err)

	auth := cfg.policies.MustLookup(domain.PolicyAuth)
	assert.Equal(t, 10, auth.Limit)
	assert.Equal(t, 900*time.Second, auth.Window)

	upload := cfg.policies.MustLookup(domain.PolicyUpload)
	assert.Equal(t, 10, upload.Limit)
	assert.Equal(t, 120*time.Second, upload.Window)

	assert.Equal(t, time.Hour, cfg.policies.MustLookup(domain.PolicyStrictAuth).Window)
}

func TestReadConfig_InvalidPolicyOverrideIsError(t *testing.T) {
	cases := map[string]string{
		"RATE_LIMIT_API_LIMIT":     "lots",
		"RATE_LIMIT_PUBLIC_LIMIT":  "0",
		"RATE_LIMIT_API_WINDOW":    "-5",
		"RATE_LIMIT_UPLOAD_WINDOW": "1500ms",
	}
	for k, v := range cases {
		t.Run(k+"="+v, func(t *testing.T) {
			t.Setenv("UPSTREAM_URL", "http://backend:5000")
			t.Setenv(k, v)
			_, err := readConfig()
			assert.Error(t, err)
		})
	}
}

func TestReadConfig_StoreValidation(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://backend:5000")

	t.Setenv("RATE_STORE", "etcd")
	_, err := readConfig()
	assert.Error(t, err)

	t.Setenv("RATE_STORE", "memory")
	cfg, err := readConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.rateStore)

	t.Setenv("RATE_STATS_ENABLED", "true")
	_, err = readConfig()
	assert.Error(t, err)
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("UPSTREAM_URL=http://from-file:5000\nRATE_LIMIT_API_LIMIT=300\n"), 0o600))
	// godotenv não sobrescreve variáveis já definidas
	t.Setenv("UPSTREAM_URL", "")
	require.NoError(t, os.Unsetenv("UPSTREAM_URL"))
	t.Setenv("RATE_LIMIT_API_LIMIT", "")
	require.NoError(t, os.Unsetenv("RATE_LIMIT_API_LIMIT"))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:5000", cfg.upstreamURL)
	assert.Equal(t, 300, cfg.policies.MustLookup(domain.PolicyAPI).Limit)
}

func TestLoadConfig_MissingEnvFileIsError(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(config{logLevel: "debug"})
	assert.NoError(t, err)
	_, err = newLogger(config{logLevel: "loud"})
	assert.Error(t, err)
}

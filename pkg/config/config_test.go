package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "custom")
	t.Setenv("TEST_BOOL_TRUE", "1")
	t.Setenv("TEST_BOOL_FALSE", "false")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_DURATION_BAD", "soon")
	t.Setenv("TEST_LIST", " a, b ,,c ")
	t.Setenv("TEST_LIST_EMPTY", " , ")

	assert.Equal(t, "custom", getEnv("TEST_STR", "default"))
	assert.Equal(t, "default", getEnv("TEST_STR_UNSET", "default"))
	assert.True(t, getEnvBool("TEST_BOOL_TRUE", false))
	assert.False(t, getEnvBool("TEST_BOOL_FALSE", true))
	assert.True(t, getEnvBool("TEST_BOOL_UNSET", true))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_INT_BAD", 7))
	assert.Equal(t, 0.25, getEnvFloat("TEST_FLOAT", 1))
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION_BAD", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, getEnvList("TEST_LIST", nil))
	assert.Equal(t, []string{"*"}, getEnvList("TEST_LIST_EMPTY", []string{"*"}))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("POOLGUIDE_JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.TrustProxy)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, RateLimitMemory, cfg.RateLimit.Backend)
	assert.Equal(t, 100, cfg.RateLimit.GeneralLimit)
	assert.Equal(t, 10, cfg.RateLimit.AuthLimit)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.GeneralWindow)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.AuthWindow)

	assert.Equal(t, storage.TypeSQLite, cfg.Storage.Type)
	assert.Equal(t, "poolguide.db", cfg.Storage.SQLitePath)
	assert.Nil(t, cfg.Storage.PostgresReplicaURLs)
	assert.True(t, cfg.Storage.CacheEnabled)

	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)

	assert.True(t, cfg.Audit.Enabled)
	assert.Empty(t, cfg.Audit.Path)
	assert.Equal(t, 100, cfg.Audit.MaxSizeMB)
	assert.Equal(t, 10, cfg.Audit.MaxFiles)
}

func TestLoadConfig_TestEnvironment(t *testing.T) {
	t.Setenv("POOLGUIDE_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsTest())
	assert.Equal(t, auth.TestSecret, cfg.Auth.JWTSecret)
	assert.False(t, cfg.RateLimit.Enabled, "rate limiting is off by default in test")
	assert.False(t, cfg.Audit.Enabled)
}

func TestLoadConfig_TestEnvironmentCanEnableRateLimits(t *testing.T) {
	t.Setenv("POOLGUIDE_ENV", "test")
	t.Setenv("POOLGUIDE_RATELIMIT_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_MissingSecretRefusesToStart(t *testing.T) {
	for _, env := range []string{EnvDevelopment, EnvProduction} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("POOLGUIDE_ENV", env)
			t.Setenv("POOLGUIDE_JWT_SECRET", "")

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "POOLGUIDE_JWT_SECRET")
		})
	}
}

func TestLoadConfig_TestSecretRejectedOutsideTest(t *testing.T) {
	for _, env := range []string{EnvDevelopment, EnvProduction} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("POOLGUIDE_ENV", env)
			t.Setenv("POOLGUIDE_JWT_SECRET", auth.TestSecret)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "test secret")
		})
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("POOLGUIDE_ENV", "production")
	t.Setenv("POOLGUIDE_JWT_SECRET", "prod-secret")
	t.Setenv("POOLGUIDE_TOKEN_TTL", "1h")
	t.Setenv("POOLGUIDE_BCRYPT_COST", "12")
	t.Setenv("POOLGUIDE_PORT", "8080")
	t.Setenv("POOLGUIDE_TRUST_PROXY", "true")
	t.Setenv("POOLGUIDE_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("POOLGUIDE_STORAGE_TYPE", "Postgres")
	t.Setenv("POOLGUIDE_DATABASE_URL", "postgres://localhost/poolguide")
	t.Setenv("POOLGUIDE_DATABASE_REPLICA_URLS", "postgres://replica1, postgres://replica2")
	t.Setenv("POOLGUIDE_DATABASE_MAX_CONNS", "40")
	t.Setenv("POOLGUIDE_REDIS_URL", "localhost:6379")
	t.Setenv("POOLGUIDE_REDIS_DB", "2")
	t.Setenv("POOLGUIDE_RATELIMIT_BACKEND", "redis")
	t.Setenv("POOLGUIDE_RATELIMIT_AUTH_LIMIT", "5")
	t.Setenv("POOLGUIDE_CACHE_ENABLED", "false")
	t.Setenv("POOLGUIDE_CACHE_TTL", "5m")
	t.Setenv("POOLGUIDE_LOG_LEVEL", "debug")
	t.Setenv("POOLGUIDE_OTEL_ENABLED", "true")
	t.Setenv("POOLGUIDE_OTEL_SAMPLE_RATIO", "0.1")
	t.Setenv("POOLGUIDE_AUDIT_PATH", "/var/log/poolguide")
	t.Setenv("POOLGUIDE_AUDIT_MAX_FILES", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, storage.TypePostgres, cfg.Storage.Type)
	assert.Equal(t, []string{"postgres://replica1", "postgres://replica2"}, cfg.Storage.PostgresReplicaURLs)
	assert.Equal(t, 40, cfg.Storage.PostgresMaxConns)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, RateLimitRedis, cfg.RateLimit.Backend)
	assert.Equal(t, 5, cfg.RateLimit.AuthLimit)
	assert.False(t, cfg.Storage.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Storage.CacheTTL)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)

	assert.Equal(t, "/var/log/poolguide", cfg.Audit.Path)
	assert.Equal(t, 3, cfg.Audit.MaxFiles)

	otelCfg := cfg.Observability.OTel()
	assert.True(t, otelCfg.Enabled)
	assert.Equal(t, "poolguide", otelCfg.ServiceName)
	assert.Equal(t, 0.1, otelCfg.SampleRatio)
}

func validConfig() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Port:       "3000",
			HealthPort: "9090",
		},
		Auth: AuthConfig{
			JWTSecret: "secret",
			TokenTTL:  time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			Backend:       RateLimitMemory,
			GeneralLimit:  100,
			GeneralWindow: 15 * time.Minute,
			AuthLimit:     10,
			AuthWindow:    15 * time.Minute,
		},
		Storage: storage.Config{
			Type:       storage.TypeSQLite,
			SQLitePath: "poolguide.db",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Env = "staging" },
			wantErr: "invalid environment",
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "same ports",
			mutate:  func(c *Config) { c.Server.HealthPort = "3000" },
			wantErr: "must be different",
		},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: "POOLGUIDE_JWT_SECRET",
		},
		{
			name:    "test secret outside test",
			mutate:  func(c *Config) { c.Auth.JWTSecret = auth.TestSecret },
			wantErr: "must not be the test secret",
		},
		{
			name: "test secret in test",
			mutate: func(c *Config) {
				c.Env = EnvTest
				c.Auth.JWTSecret = auth.TestSecret
			},
		},
		{
			name:    "redis backend without url",
			mutate:  func(c *Config) { c.RateLimit.Backend = RateLimitRedis },
			wantErr: "redis URL is required",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.RateLimit.Backend = "memcached" },
			wantErr: "invalid rate limit backend",
		},
		{
			name: "unknown backend ignored when disabled",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = false
				c.RateLimit.Backend = "memcached"
			},
		},
		{
			name:    "zero limit",
			mutate:  func(c *Config) { c.RateLimit.AuthLimit = 0 },
			wantErr: "rate limits must be positive",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Storage.Type = storage.TypePostgres },
			wantErr: "database URL is required",
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Storage.Type = "filesystem" },
			wantErr: "invalid storage type",
		},
		{
			name: "audit file without rotation limits",
			mutate: func(c *Config) {
				c.Audit = AuditConfig{Enabled: true, Path: "/var/log/poolguide"}
			},
			wantErr: "audit log size",
		},
		{
			name:   "audit to log only needs no limits",
			mutate: func(c *Config) { c.Audit = AuditConfig{Enabled: true} },
		},
		{
			name: "otel without endpoint",
			mutate: func(c *Config) {
				c.Observability.OTelEnabled = true
				c.Observability.OTelServiceName = "poolguide"
			},
			wantErr: "endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadStorageConfig(t *testing.T) {
	t.Setenv("POOLGUIDE_JWT_SECRET", "")
	t.Setenv("POOLGUIDE_STORAGE_TYPE", "sqlite")
	t.Setenv("POOLGUIDE_SQLITE_PATH", "/tmp/seed.db")

	cfg, err := LoadStorageConfig()
	require.NoError(t, err, "storage-only loading does not need a signing secret")
	assert.Equal(t, "/tmp/seed.db", cfg.SQLitePath)

	t.Setenv("POOLGUIDE_STORAGE_TYPE", "postgres")
	_, err = LoadStorageConfig()
	assert.ErrorContains(t, err, "database URL is required")
}

func TestLoadAuditConfig(t *testing.T) {
	t.Setenv("POOLGUIDE_JWT_SECRET", "")
	t.Setenv("POOLGUIDE_ENV", EnvTest)
	t.Setenv("POOLGUIDE_AUDIT_ENABLED", "true")
	t.Setenv("POOLGUIDE_AUDIT_PATH", "/var/log/poolguide")

	cfg, err := LoadAuditConfig()
	require.NoError(t, err, "audit-only loading does not need a signing secret")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "/var/log/poolguide", cfg.Path)

	t.Setenv("POOLGUIDE_AUDIT_MAX_FILES", "0")
	_, err = LoadAuditConfig()
	assert.ErrorContains(t, err, "audit log size")
}

func TestAuditConfig_Sink(t *testing.T) {
	sink := AuditConfig{Enabled: true}.Sink()
	assert.True(t, sink.Enabled)
	assert.Nil(t, sink.File, "no path keeps events in the service log")

	sink = AuditConfig{Enabled: true, Path: "/var/log/poolguide", MaxSizeMB: 5, MaxFiles: 3}.Sink()
	require.NotNil(t, sink.File)
	assert.Equal(t, "/var/log/poolguide", sink.File.BasePath)
	assert.Equal(t, int64(5*1024*1024), sink.File.MaxSize)
	assert.Equal(t, 3, sink.File.MaxFiles)

	assert.False(t, AuditConfig{}.Sink().Enabled)
}

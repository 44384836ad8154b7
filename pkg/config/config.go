package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/poolguide/pkg/audit"
	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/middleware"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
	"github.com/platinummonkey/poolguide/pkg/storage/sqlstore"
)

// Deployment environments
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Rate limiter backends
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Env is one of development, test or production
	Env string

	Server        ServerConfig
	Auth          AuthConfig
	RateLimit     RateLimitConfig
	Storage       storage.Config
	Observability ObservabilityConfig
	Audit         AuditConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string

	CORSOrigins []string

	// TrustProxy derives the client IP from X-Forwarded-For / X-Real-IP
	TrustProxy bool
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// RateLimitConfig holds the general and auth limiter settings
type RateLimitConfig struct {
	Enabled       bool
	Backend       string
	GeneralLimit  int
	GeneralWindow time.Duration
	AuthLimit     int
	AuthWindow    time.Duration
	RedisPrefix   string
}

// AuditConfig holds the security audit log settings. With an empty Path
// events only go to the structured application log.
type AuditConfig struct {
	Enabled   bool
	Path      string
	MaxSizeMB int
	MaxFiles  int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelSampleRatio    float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	env := strings.ToLower(getEnv("POOLGUIDE_ENV", EnvDevelopment))

	cfg := &Config{
		Env:           env,
		Server:        loadServerConfig(),
		Auth:          loadAuthConfig(env),
		RateLimit:     loadRateLimitConfig(env),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
		Audit:         loadAuditConfig(env),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// IsTest reports whether the service runs in the test environment
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("POOLGUIDE_HOST", "0.0.0.0"),
		Port:            getEnv("POOLGUIDE_PORT", "3000"),
		ReadTimeout:     getEnvDuration("POOLGUIDE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("POOLGUIDE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("POOLGUIDE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("POOLGUIDE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("POOLGUIDE_HEALTH_PORT", "9090"),
		CORSOrigins:     getEnvList("POOLGUIDE_CORS_ORIGINS", []string{"*"}),
		TrustProxy:      getEnvBool("POOLGUIDE_TRUST_PROXY", false),
	}
}

// loadAuthConfig loads token settings. The test environment falls back to
// the well-known test secret when none is configured.
func loadAuthConfig(env string) AuthConfig {
	secret := getEnv("POOLGUIDE_JWT_SECRET", "")
	if secret == "" && env == EnvTest {
		secret = auth.TestSecret
	}

	return AuthConfig{
		JWTSecret:  secret,
		TokenTTL:   getEnvDuration("POOLGUIDE_TOKEN_TTL", auth.DefaultTokenTTL),
		BcryptCost: getEnvInt("POOLGUIDE_BCRYPT_COST", 10),
	}
}

// loadRateLimitConfig loads limiter settings; limiting is off by default in test
func loadRateLimitConfig(env string) RateLimitConfig {
	return RateLimitConfig{
		Enabled:       getEnvBool("POOLGUIDE_RATELIMIT_ENABLED", env != EnvTest),
		Backend:       strings.ToLower(getEnv("POOLGUIDE_RATELIMIT_BACKEND", RateLimitMemory)),
		GeneralLimit:  getEnvInt("POOLGUIDE_RATELIMIT_GENERAL_LIMIT", middleware.DefaultGeneralLimit),
		GeneralWindow: getEnvDuration("POOLGUIDE_RATELIMIT_GENERAL_WINDOW", middleware.DefaultWindow),
		AuthLimit:     getEnvInt("POOLGUIDE_RATELIMIT_AUTH_LIMIT", middleware.DefaultAuthLimit),
		AuthWindow:    getEnvDuration("POOLGUIDE_RATELIMIT_AUTH_WINDOW", middleware.DefaultWindow),
		RedisPrefix:   getEnv("POOLGUIDE_RATELIMIT_REDIS_PREFIX", "poolguide:ratelimit"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("POOLGUIDE_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = strings.ToLower(storageType)
	}

	// PostgreSQL config
	if pgURL := getEnv("POOLGUIDE_DATABASE_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	cfg.PostgresReplicaURLs = sqlstore.ParseReplicaURLs(getEnv("POOLGUIDE_DATABASE_REPLICA_URLS", ""))
	if maxConns := getEnvInt("POOLGUIDE_DATABASE_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("POOLGUIDE_DATABASE_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("POOLGUIDE_DATABASE_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}

	// SQLite config
	if sqlitePath := getEnv("POOLGUIDE_SQLITE_PATH", ""); sqlitePath != "" {
		cfg.SQLitePath = sqlitePath
	}

	// Redis config
	cfg.RedisURL = getEnv("POOLGUIDE_REDIS_URL", cfg.RedisURL)
	if redisPassword := getEnv("POOLGUIDE_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("POOLGUIDE_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("POOLGUIDE_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		cfg.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("POOLGUIDE_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	// Cache config
	cfg.CacheEnabled = getEnvBool("POOLGUIDE_CACHE_ENABLED", cfg.CacheEnabled)
	if cacheSize := getEnvInt("POOLGUIDE_CACHE_SIZE", 0); cacheSize > 0 {
		cfg.CacheSize = cacheSize
	}
	if cacheTTL := getEnvDuration("POOLGUIDE_CACHE_TTL", 0); cacheTTL > 0 {
		cfg.CacheTTL = cacheTTL
	}

	return cfg
}

// loadAuditConfig loads audit settings; auditing is off by default in test
func loadAuditConfig(env string) AuditConfig {
	return AuditConfig{
		Enabled:   getEnvBool("POOLGUIDE_AUDIT_ENABLED", env != EnvTest),
		Path:      getEnv("POOLGUIDE_AUDIT_PATH", ""),
		MaxSizeMB: getEnvInt("POOLGUIDE_AUDIT_MAX_SIZE_MB", 100),
		MaxFiles:  getEnvInt("POOLGUIDE_AUDIT_MAX_FILES", 10),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("POOLGUIDE_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("POOLGUIDE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("POOLGUIDE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("POOLGUIDE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("POOLGUIDE_OTEL_SERVICE_NAME", "poolguide"),
		OTelServiceVersion: getEnv("POOLGUIDE_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("POOLGUIDE_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("POOLGUIDE_OTEL_SAMPLE_RATIO", 1.0),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("invalid environment: %s (must be development, test, or production)", c.Env)
	}

	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate auth config
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("POOLGUIDE_JWT_SECRET is required outside the test environment")
	}
	if !c.IsTest() && c.Auth.JWTSecret == auth.TestSecret {
		return fmt.Errorf("POOLGUIDE_JWT_SECRET must not be the test secret outside the test environment")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	// Validate rate limit config
	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case RateLimitMemory:
		case RateLimitRedis:
			if c.Storage.RedisURL == "" {
				return fmt.Errorf("redis URL is required for the redis rate limit backend")
			}
		default:
			return fmt.Errorf("invalid rate limit backend: %s (must be memory or redis)", c.RateLimit.Backend)
		}
		if c.RateLimit.GeneralLimit <= 0 || c.RateLimit.AuthLimit <= 0 {
			return fmt.Errorf("rate limits must be positive")
		}
		if c.RateLimit.GeneralWindow <= 0 || c.RateLimit.AuthWindow <= 0 {
			return fmt.Errorf("rate limit windows must be positive")
		}
	}

	if err := validateStorage(c.Storage); err != nil {
		return err
	}

	if err := validateAudit(c.Audit); err != nil {
		return err
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// validateStorage checks the storage config based on type
func validateStorage(cfg storage.Config) error {
	switch cfg.Type {
	case storage.TypePostgres:
		if cfg.PostgresURL == "" {
			return fmt.Errorf("database URL is required for postgres storage")
		}
	case storage.TypeSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be postgres or sqlite)", cfg.Type)
	}
	return nil
}

// LoadStorageConfig loads and validates only the storage settings,
// for operator tools that do not serve requests or sign tokens
func LoadStorageConfig() (storage.Config, error) {
	cfg := loadStorageConfig()
	if err := validateStorage(cfg); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func validateAudit(c AuditConfig) error {
	if c.Enabled && c.Path != "" {
		if c.MaxSizeMB <= 0 || c.MaxFiles <= 0 {
			return fmt.Errorf("audit log size and file count must be positive")
		}
	}
	return nil
}

// LoadAuditConfig loads and validates only the audit settings,
// for operator tools that record audit events
func LoadAuditConfig() (AuditConfig, error) {
	cfg := loadAuditConfig(strings.ToLower(getEnv("POOLGUIDE_ENV", EnvDevelopment)))
	if err := validateAudit(cfg); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Sink converts the audit settings to an audit.SinkConfig
func (c AuditConfig) Sink() audit.SinkConfig {
	sink := audit.SinkConfig{Enabled: c.Enabled}
	if c.Path != "" {
		file := audit.DefaultFileLoggerConfig()
		file.BasePath = c.Path
		if c.MaxSizeMB > 0 {
			file.MaxSize = int64(c.MaxSizeMB) * 1024 * 1024
		}
		if c.MaxFiles > 0 {
			file.MaxFiles = c.MaxFiles
		}
		sink.File = &file
	}
	return sink
}

// OTel converts the observability settings to an OTelConfig
func (c ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.OTelEnabled,
		Endpoint:       c.OTelEndpoint,
		ServiceName:    c.OTelServiceName,
		ServiceVersion: c.OTelServiceVersion,
		Insecure:       c.OTelInsecure,
		SampleRatio:    c.OTelSampleRatio,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. A missing signing secret is only tolerated
// in the test environment, where the well-known test secret is used instead.
//
// # Configuration Structure
//
// Environment:
//
//	POOLGUIDE_ENV="development"  # development, test, production
//
// Server settings:
//
//	POOLGUIDE_HOST="0.0.0.0"
//	POOLGUIDE_PORT="3000"
//	POOLGUIDE_HEALTH_PORT="9090"
//	POOLGUIDE_CORS_ORIGINS="*"
//	POOLGUIDE_TRUST_PROXY="false"
//
// Auth settings:
//
//	POOLGUIDE_JWT_SECRET="..."
//	POOLGUIDE_TOKEN_TTL="24h"
//	POOLGUIDE_BCRYPT_COST="10"
//
// Rate limiting:
//
//	POOLGUIDE_RATELIMIT_ENABLED="true"
//	POOLGUIDE_RATELIMIT_BACKEND="memory"  # memory, redis
//	POOLGUIDE_RATELIMIT_GENERAL_LIMIT="100"
//	POOLGUIDE_RATELIMIT_AUTH_LIMIT="10"
//
// Storage settings:
//
//	POOLGUIDE_STORAGE_TYPE="sqlite"  # postgres, sqlite
//	POOLGUIDE_DATABASE_URL="postgres://localhost/poolguide?sslmode=disable"
//	POOLGUIDE_DATABASE_REPLICA_URLS="postgres://replica1/poolguide,postgres://replica2/poolguide"
//	POOLGUIDE_SQLITE_PATH="poolguide.db"
//	POOLGUIDE_REDIS_URL="localhost:6379"
//
// Cache settings:
//
//	POOLGUIDE_CACHE_ENABLED="true"
//	POOLGUIDE_CACHE_SIZE="256"
//	POOLGUIDE_CACHE_TTL="1m"
//
// Observability settings:
//
//	POOLGUIDE_LOG_LEVEL="info"  # debug, info, warn, error
//	POOLGUIDE_METRICS_ENABLED="true"
//	POOLGUIDE_OTEL_ENABLED="true"
//	POOLGUIDE_OTEL_ENDPOINT="otel-collector:4317"
//
// Audit log (an empty path writes audit events to the application log only):
//
//	POOLGUIDE_AUDIT_ENABLED="true"
//	POOLGUIDE_AUDIT_PATH="/var/log/poolguide"
//	POOLGUIDE_AUDIT_MAX_SIZE_MB="100"
//	POOLGUIDE_AUDIT_MAX_FILES="10"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/middleware: Uses rate limit configuration
//   - pkg/observability: Uses observability configuration
//   - pkg/audit: Uses audit configuration
package config

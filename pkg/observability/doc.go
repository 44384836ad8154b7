// Package observability provides structured logging, Prometheus metrics,
// health probes, graceful shutdown and OpenTelemetry setup.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("pool_id", id).Info("Pool created")
//
// Request handlers use the request-scoped logger, which carries the request ID
// and, once authenticated, the user ID:
//
//	observability.FromContext(r.Context()).WithError(err).Error("Lookup failed")
//
// # Prometheus Metrics
//
//	registry := observability.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
//	observability.RegisterMetricsEndpoint(healthMux, registry)
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(logger, 30*time.Second)
//	sm.RegisterServer(apiServer)
//	sm.RegisterShutdownFunc("database", func(ctx context.Context) error { return db.Close() })
//	err := sm.WaitForShutdown(ctx)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability

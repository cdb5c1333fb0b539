// Package observability provides structured logging, Prometheus metrics,
// health checks and OpenTelemetry tracing for storedash.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("plan", "growth").Info("plan selected")
//
// Request-scoped logging picks up the request and merchant IDs set by middleware:
//
//	observability.FromContext(r.Context()).WithError(err).Error("checkout failed")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.WorkflowTransitionsTotal.WithLabelValues("checkout_loaded", "proof_captured").Inc()
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	checker.AddDependency("s3", false, uploader.Ping)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
package observability

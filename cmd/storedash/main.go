package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nextcommerce/storedash/pkg/api"
	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/config"
	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/middleware"
	"github.com/nextcommerce/storedash/pkg/observability"
	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/proof"
	"github.com/nextcommerce/storedash/pkg/quota"
	"github.com/nextcommerce/storedash/pkg/storage"
	"github.com/nextcommerce/storedash/pkg/storeapi"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
	"github.com/nextcommerce/storedash/pkg/upgrade"
)

var version = "dev"

// submissionBackend records and lists subscription requests
type submissionBackend interface {
	subscriptions.Submitter
	subscriptions.Lister
}

func main() {
	migrate := flag.Bool("migrate", true, "Apply database migrations on startup (sql submission mode)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	if err := run(cfg, logger, *migrate); err != nil {
		logger.WithError(err).Error("storedash exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger, migrate bool) error {
	ctx := context.Background()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Environment:    cfg.Observability.OTelEnvironment,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Checkout state and rate limits live in Redis when configured
	var (
		redisClient *redis.Client
		store       upgrade.Store
		limiter     middleware.Limiter
	)
	limitCfg := middleware.DefaultRateLimitConfig()
	limitCfg.RequestsPerWindow = cfg.Server.WriteRateLimit
	if cfg.Storage.RedisURL != "" {
		redisClient, err = storage.NewRedisClient(cfg.Storage)
		if err != nil {
			return err
		}
		store = upgrade.NewRedisStore(redisClient)
		limiter = middleware.NewDistributedRateLimiter(redisClient, limitCfg, "storedash:ratelimit")
		logger.Info("Using Redis for checkout state")
	} else {
		store = upgrade.NewMemoryStore()
		local := middleware.NewRateLimiter(limitCfg)
		local.StartCleanup(ctx)
		limiter = local
		logger.Warn("No Redis configured, checkout state is kept in process")
	}

	s3Client, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	s3Uploader := proof.NewS3Uploader(s3Client, cfg.Storage.S3Bucket, storage.PublicBaseURL(cfg.Storage), metrics)
	uploader, err := proof.NewDedupUploader(s3Uploader, cfg.Upgrade.DedupCacheSize, metrics)
	if err != nil {
		return err
	}

	var (
		db      *sql.DB
		backend submissionBackend
	)
	switch cfg.Submission.Mode {
	case "sql":
		db, err = storage.OpenDB(cfg.Storage)
		if err != nil {
			return err
		}
		if migrate {
			if err := subscriptions.Migrate(ctx, db, cfg.Storage.DatabaseDriver); err != nil {
				return err
			}
		}
		backend = subscriptions.NewSQLStore(db, metrics)
	case "remote":
		backend = subscriptions.NewHTTPSubmitter(cfg.Submission.RemoteURL, cfg.Submission.Timeout, metrics)
	}

	var authenticator auth.Authenticator
	switch cfg.Auth.Mode {
	case "oidc":
		authenticator, err = auth.NewOIDCAuthenticator(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCAudience)
		if err != nil {
			return err
		}
	case "header":
		authenticator = auth.NewHeaderAuthenticator(cfg.Auth.HeaderName)
	}

	storeClient := storeapi.NewClient(cfg.StoreAPI.BaseURL, cfg.StoreAPI.Timeout, cfg.StoreAPI.FreeOrderLimit, metrics)

	catalog := plans.DefaultCatalog()
	workflow := upgrade.NewWorkflow(catalog, store, uploader, backend, upgrade.Config{
		IntentTTL:        cfg.Upgrade.IntentTTL,
		SessionTTL:       cfg.Upgrade.SessionTTL,
		LockTTL:          cfg.Upgrade.LockTTL,
		OperationTimeout: cfg.Upgrade.OperationTimeout,
		Payment: upgrade.PaymentInfo{
			CCP:         cfg.Payment.CCP,
			RIP:         cfg.Payment.RIP,
			AccountName: cfg.Payment.AccountName,
			Phone:       cfg.Payment.Phone,
		},
	}, metrics)

	var writeLimit *middleware.RateLimitMiddleware
	if cfg.Server.WriteRateLimit > 0 {
		writeLimit = middleware.NewRateLimitMiddleware(limiter)
	}

	apiServer := api.NewServer(api.Config{
		Catalog:       catalog,
		Workflow:      workflow,
		Dashboard:     storeClient,
		Requests:      backend,
		Auth:          auth.NewMiddleware(authenticator, false),
		Quota:         quota.NewMiddleware(storeClient, metrics),
		WriteLimit:    writeLimit,
		MaxProofBytes: cfg.Upgrade.MaxProofBytes,
	})
	if cfg.Observability.MetricsEnabled {
		apiServer.Router().Use(mux.MiddlewareFunc(observability.HTTPMetricsMiddleware(metrics)))
	}

	handler := httputil.Chain(
		httputil.RecoveryMiddleware(logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(cfg.Server.CORSOrigins),
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
	)(otelhttp.NewHandler(apiServer, "storedash"))

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port
	checker := observability.NewHealthChecker(db, redisClient).WithVersion(version)
	checker.AddDependency("object_storage", true, s3Uploader.Ping)
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error { return redisClient.Close() })
	}
	if db != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error { return db.Close() })
	}

	errCh := make(chan error, 2)
	for _, srv := range []*http.Server{httpServer, healthServer} {
		go func(srv *http.Server) {
			logger.Infof("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	logger.WithFields(map[string]interface{}{
		"version":         version,
		"auth_mode":       cfg.Auth.Mode,
		"submission_mode": cfg.Submission.Mode,
	}).Info("storedash started")

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := <-errCh; err != nil {
			logger.WithError(err).Error("server failed")
			cancel()
		}
	}()

	return shutdown.WaitForShutdown(waitCtx)
}

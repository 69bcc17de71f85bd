package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phantomos-app/phantomos-backend/api/routes"
	"github.com/phantomos-app/phantomos-backend/internal/analytics"
	"github.com/phantomos-app/phantomos-backend/internal/assets"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/connectors"
	"github.com/phantomos-app/phantomos-backend/internal/importer"
	"github.com/phantomos-app/phantomos-backend/internal/invitations"
	"github.com/phantomos-app/phantomos-backend/internal/mapping"
	"github.com/phantomos-app/phantomos-backend/internal/products"
	"github.com/phantomos-app/phantomos-backend/internal/tagging"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/llm"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/metrics"
	"github.com/phantomos-app/phantomos-backend/pkg/migrate"
	"github.com/phantomos-app/phantomos-backend/pkg/redis"
	"github.com/phantomos-app/phantomos-backend/pkg/shopify"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	llmClient, err := llm.New(cfg.AI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create llm client", err)
		os.Exit(1)
	}

	shopifyClient, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	taggingMetrics := metrics.NewTaggingMetrics(registry)

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	assetsRepo := assets.NewRepository(dbClient.DB())
	assetsService, err := assets.NewService(assetsRepo, dbClient, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create assets service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	mappingService, err := mapping.NewService(mapping.NewRepository(dbClient.DB()), assetsRepo, dbClient, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create mapping service", err)
		os.Exit(1)
	}

	taggingService, err := tagging.NewService(
		tagging.NewRepository(dbClient.DB()),
		llmClient,
		dbClient,
		auditService,
		cfg.AI,
		taggingMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create tagging service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	connectorsService, err := connectors.NewService(
		connectors.NewRepository(dbClient.DB()),
		shopifyClient,
		productsService,
		dbClient,
		auditService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create connectors service", err)
		os.Exit(1)
	}

	importerService, err := importer.NewService(productsService, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create importer service", err)
		os.Exit(1)
	}

	invitationsService, err := invitations.NewService(
		invitations.NewRepository(dbClient.DB()),
		dbClient,
		auditService,
		cfg.Invites,
		cfg.JWT,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create invitations service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Registry:    registry,
			HTTPMetrics: httpMetrics,
			Redis:       redisClient,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			Assets:      assetsService,
			Products:    productsService,
			Mapping:     mappingService,
			Tagging:     taggingService,
			Analytics:   analyticsService,
			Connectors:  connectorsService,
			Importer:    importerService,
			Invitations: invitationsService,
			Audit:       auditService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pasturelink/marketplace-backend/api/routes"
	"github.com/pasturelink/marketplace-backend/internal/drafts"
	"github.com/pasturelink/marketplace-backend/internal/flowcatalog"
	"github.com/pasturelink/marketplace-backend/internal/onboarding"
	"github.com/pasturelink/marketplace-backend/internal/partnersearch"
	"github.com/pasturelink/marketplace-backend/internal/partnerships"
	"github.com/pasturelink/marketplace-backend/internal/stores"
	"github.com/pasturelink/marketplace-backend/pkg/config"
	"github.com/pasturelink/marketplace-backend/pkg/db"
	"github.com/pasturelink/marketplace-backend/pkg/logger"
	"github.com/pasturelink/marketplace-backend/pkg/metrics"
	"github.com/pasturelink/marketplace-backend/pkg/migrate"
	"github.com/pasturelink/marketplace-backend/pkg/redis"
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

	onboardingMetrics := metrics.NewOnboardingMetrics(prometheus.DefaultRegisterer)

	catalogSource, err := flowcatalog.NewHTTPSource(cfg.FlowCatalog.BaseURL, cfg.FlowCatalog.Timeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create flow catalog source", err)
		os.Exit(1)
	}
	catalog, err := flowcatalog.NewCatalog(catalogSource)
	if err != nil {
		logg.Error(context.Background(), "failed to create flow catalog", err)
		os.Exit(1)
	}

	draftStore, err := drafts.NewStore(redisClient, cfg.Onboarding.DraftRetention())
	if err != nil {
		logg.Error(context.Background(), "failed to create draft store", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(stores.NewRepository(dbClient.DB()), catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	partnershipRepo := partnerships.NewRepository(dbClient.DB())
	partnershipService, err := partnerships.NewService(partnershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create partnership service", err)
		os.Exit(1)
	}

	reconciler, err := partnerships.NewReconciler(partnershipService, onboardingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create partnership reconciler", err)
		os.Exit(1)
	}

	searchService, err := partnersearch.NewService(
		partnersearch.NewRepository(dbClient.DB()),
		partnershipRepo,
		stores.NewRepository(dbClient.DB()),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create partner search service", err)
		os.Exit(1)
	}

	wizardService, err := onboarding.NewService(onboarding.ServiceParams{
		Catalog:      catalog,
		Drafts:       draftStore,
		Stores:       storeService,
		Search:       searchService,
		Reconciler:   reconciler,
		Partnerships: partnershipService,
		Config:       cfg.Onboarding,
		Logger:       logg,
		Metrics:      onboardingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create onboarding service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, wizardService, partnershipService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

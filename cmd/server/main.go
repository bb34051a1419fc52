// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/api"
	"github.com/Sohamiota/Target-JIT-org/internal/cache"
	"github.com/Sohamiota/Target-JIT-org/internal/config"
	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/drive"
	"github.com/Sohamiota/Target-JIT-org/internal/repository/postgres"
	"github.com/Sohamiota/Target-JIT-org/internal/scheduler"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
	"github.com/Sohamiota/Target-JIT-org/internal/storage"
	"github.com/Sohamiota/Target-JIT-org/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		logger.UseJSON()
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	summaryCache, err := cache.NewSummaryCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		summaryCache = cache.NewNoopSummaryCache()
	}

	store := service.NewPolicyStore(cfg.Optimizer.PolicyPath)
	seedPolicyFile(store, cfg.Optimizer)

	items := postgres.NewItemRepository(db)
	sales := postgres.NewSalesRepository(db)
	runs := postgres.NewRunRepository(db)
	policies := postgres.NewPolicyRepository(db)
	summaries := postgres.NewSummaryRepository(db)

	optimizeService := service.NewOptimizeService(
		items, runs, policies, summaries,
		summaryCache, store, cfg.Optimizer.Workers,
	)
	analysisService := service.NewAnalysisService(items, sales)
	datasetService := service.NewDatasetService(db.DB.DB)

	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, uploads will not be mirrored")
		} else {
			datasetService = datasetService.WithMirror(store, cfg.Storage.DatasetPrefix)
		}
	}

	baseCtx, stop := context.WithCancel(context.Background())
	defer stop()

	sched, err := scheduler.Configure(baseCtx, cfg.Scheduler, optimizeService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure scheduler")
	}
	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	if cfg.Drive.CredentialsJSON != "" && cfg.Drive.FolderID != "" {
		driveService, err := drive.NewService(baseCtx, cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize drive service, continuing without sync")
		} else {
			syncDir := filepath.Join(cfg.App.UploadDir, "drive")
			syncer := drive.NewSyncer(driveService, datasetService, cfg.Drive, syncDir)
			go syncer.Watch(baseCtx)
		}
	}

	router := api.NewRouter(&api.Services{
		OptimizeService: optimizeService,
		AnalysisService: analysisService,
		DatasetService:  datasetService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}

// seedPolicyFile writes the env-configured rates to the policy file
// when none exists yet, so they become the first active policy.
func seedPolicyFile(store *service.PolicyStore, cfg config.OptimizerConfig) {
	if _, found, err := store.Load(); err != nil || found {
		return
	}

	policy := domain.Policy{
		HoldingCostRate:  cfg.HoldingCostRate,
		StockoutCostRate: cfg.StockoutCostRate,
		ServiceLevel:     cfg.ServiceLevel,
	}
	if err := store.Save(policy); err != nil {
		log.Warn().Err(err).Str("path", store.Path()).Msg("failed to seed policy file from config")
	}
}

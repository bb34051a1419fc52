package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/config"
	"github.com/Sohamiota/Target-JIT-org/internal/drive"
	"github.com/Sohamiota/Target-JIT-org/internal/repository/postgres"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
	"github.com/Sohamiota/Target-JIT-org/pkg/logger"
)

// The ingest server bridges the shared Drive folder to the dataset
// pipelines: list the folder, trigger sync passes, and poll for new
// drops when a folder ID is configured.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode != "debug" {
		logger.UseJSON()
	}

	baseCtx, stop := context.WithCancel(context.Background())
	defer stop()

	driveService, err := drive.NewService(baseCtx, cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize drive service")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	datasets := service.NewDatasetService(db.DB.DB)
	syncDir := filepath.Join(cfg.App.UploadDir, "drive")
	syncer := drive.NewSyncer(driveService, datasets, cfg.Drive, syncDir)

	if cfg.Drive.FolderID != "" {
		go syncer.Watch(baseCtx)
	}

	r := mux.NewRouter()
	driveHandler := drive.NewHandler(driveService, syncer)
	driveHandler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("ingest server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ingest server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down ingest server")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("ingest server forced to shutdown")
	}
}

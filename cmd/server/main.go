// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/api"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/cache"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/gestor"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/service"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/storage"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/store/postgres"
	syncer "github.com/David815-hue/FrecuenciaCompra-sub000/internal/sync"
	"github.com/David815-hue/FrecuenciaCompra-sub000/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var gestores *gestor.Directory
	if cfg.Pipeline.GestorFile != "" {
		var err error
		gestores, err = gestor.LoadFile(cfg.Pipeline.GestorFile)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to load gestor directory")
		}
	}

	dashCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize dashboard cache")
	}

	archive, err := storage.NewUploadArchive(cfg.Archive)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize upload archive")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	merger := syncer.NewMerger(
		postgres.NewCustomerStore(db),
		cfg.Sync.BatchSize,
		time.Duration(cfg.Sync.BatchDelayMS)*time.Millisecond,
	)

	dashboard := service.NewDashboardService(cfg.Pipeline, gestores, dashCache, archive, merger)

	router := api.NewRouter(dashboard, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

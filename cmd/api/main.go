// cmd/api/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/cache"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/drive"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/gestor"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/service"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/storage"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/store/postgres"
	syncer "github.com/David815-hue/FrecuenciaCompra-sub000/internal/sync"
)

// The Drive-facing ingest server: it lists the shared export folder,
// downloads header/line pairs and feeds them to the same pipeline the
// upload endpoint uses.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	driveService, err := drive.NewService(cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	var gestores *gestor.Directory
	if cfg.Pipeline.GestorFile != "" {
		gestores, err = gestor.LoadFile(cfg.Pipeline.GestorFile)
		if err != nil {
			log.Fatalf("Failed to load gestor directory: %v", err)
		}
	}

	dashCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize dashboard cache: %v", err)
	}

	archive, err := storage.NewUploadArchive(cfg.Archive)
	if err != nil {
		log.Fatalf("Failed to initialize upload archive: %v", err)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	merger := syncer.NewMerger(
		postgres.NewCustomerStore(db),
		cfg.Sync.BatchSize,
		time.Duration(cfg.Sync.BatchDelayMS)*time.Millisecond,
	)

	dashboard := service.NewDashboardService(cfg.Pipeline, gestores, dashCache, archive, merger)

	r := mux.NewRouter()

	driveHandler := drive.NewHandler(driveService, dashboard, cfg.Drive.ExportFolder)
	driveHandler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Drive ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// cmd/ingest/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/cache"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/export"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/gestor"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/service"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/storage"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/store/postgres"
	syncer "github.com/David815-hue/FrecuenciaCompra-sub000/internal/sync"
	"github.com/David815-hue/FrecuenciaCompra-sub000/pkg/logger"
)

func newHeadersFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "headers",
		Usage:    "Path to the order-management export (xlsx)",
		Required: true,
	}
}

func newLinesFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "lines",
		Usage:    "Path to the POS line-item export (xlsx)",
		Required: true,
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	app := &cli.App{
		Name:  "ingest",
		Usage: "Run the purchase-history pipeline from the command line",
		Commands: []*cli.Command{
			{
				Name:  "process",
				Usage: "Reconcile a header/line export pair and print a summary",
				Flags: []cli.Flag{
					newHeadersFlag(),
					newLinesFlag(),
					&cli.BoolFlag{
						Name:  "sync",
						Usage: "Push the result into the customer collection",
					},
				},
				Action: runProcess,
			},
			{
				Name:  "export",
				Usage: "Reconcile an export pair and write the frequency workbook",
				Flags: []cli.Flag{
					newHeadersFlag(),
					newLinesFlag(),
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output workbook path",
						Value: "frecuencia.xlsx",
					},
				},
				Action: runExport,
			},
			{
				Name:   "reset",
				Usage:  "Delete every persisted customer document",
				Action: runReset,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildDashboard(cfg *config.Config, withStore bool) (*service.DashboardService, error) {
	var gestores *gestor.Directory
	if cfg.Pipeline.GestorFile != "" {
		var err error
		gestores, err = gestor.LoadFile(cfg.Pipeline.GestorFile)
		if err != nil {
			return nil, err
		}
	}

	archive, err := storage.NewUploadArchive(cfg.Archive)
	if err != nil {
		return nil, err
	}

	var merger *syncer.Merger
	if withStore {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		merger = syncer.NewMerger(
			postgres.NewCustomerStore(db),
			cfg.Sync.BatchSize,
			time.Duration(cfg.Sync.BatchDelayMS)*time.Millisecond,
		)
	}

	return service.NewDashboardService(cfg.Pipeline, gestores, cache.NewNoopDashboardCache(), archive, merger), nil
}

func runProcess(c *cli.Context) error {
	cfg := config.Load()

	dashboard, err := buildDashboard(cfg, c.Bool("sync"))
	if err != nil {
		return err
	}

	snap, err := dashboard.ProcessFiles(c.Context, c.String("headers"), c.String("lines"))
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	fmt.Printf("orders: %d\ncustomers: %d\ndropped: %d\n",
		snap.OrderCount, len(snap.Customers), snap.DroppedOrders)

	if !c.Bool("sync") {
		return nil
	}

	result, err := dashboard.Sync(c.Context)
	if err != nil {
		return fmt.Errorf("sync failed after %d/%d batches: %w",
			result.BatchesDone, result.Batches, err)
	}
	fmt.Printf("synced: %d customers in %d batches\n", result.Customers, result.Batches)
	return nil
}

func runExport(c *cli.Context) error {
	cfg := config.Load()

	dashboard, err := buildDashboard(cfg, false)
	if err != nil {
		return err
	}

	snap, err := dashboard.ProcessFiles(c.Context, c.String("headers"), c.String("lines"))
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	out := c.String("out")
	if err := export.WriteWorkbook(out, snap.Customers, dashboard.Temporal()); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d customers)\n", out, len(snap.Customers))
	return nil
}

func runReset(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.NewCustomerStore(db).DeleteAll(c.Context); err != nil {
		return err
	}
	fmt.Println("customer collection cleared")
	return nil
}

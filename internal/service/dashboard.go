// internal/service/dashboard.go
package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/cache"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/gestor"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/ingest"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/pipeline"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/storage"
	syncer "github.com/David815-hue/FrecuenciaCompra-sub000/internal/sync"
)

// ErrNoSnapshot is returned when a query arrives before any upload has
// been processed.
var ErrNoSnapshot = fmt.Errorf("no upload has been processed yet")

// Heatmap is the per-customer temporal payload: month buckets plus the
// contribution days with their rendering intensity.
type Heatmap struct {
	Months []domain.MonthBucket `json:"months"`
	Days   []HeatmapDay         `json:"days"`
}

type HeatmapDay struct {
	domain.DayContribution
	Level int `json:"level"`
}

// DashboardService runs the reconciliation pipeline over uploaded
// exports and answers dashboard queries from the resulting snapshot.
// The pipeline itself is pure; all state lives in the snapshot.
type DashboardService struct {
	normalizer pipeline.Normalizer
	temporal   pipeline.TemporalAggregator
	headerCols pipeline.HeaderColumns
	lineCols   pipeline.LineColumns

	cache   cache.DashboardCache
	archive storage.UploadArchive
	merger  *syncer.Merger

	mu       sync.RWMutex
	snapshot *cache.Snapshot
	digest   string
}

func NewDashboardService(
	cfg config.PipelineConfig,
	gestores *gestor.Directory,
	dashCache cache.DashboardCache,
	archive storage.UploadArchive,
	merger *syncer.Merger,
) *DashboardService {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	if archive == nil {
		archive = storage.NewNoopArchive()
	}
	return &DashboardService{
		normalizer: pipeline.Normalizer{
			DeliveredStatus: cfg.DeliveredStatus,
			Gestores:        gestores,
		},
		temporal: pipeline.TemporalAggregator{
			DeliverySKU:  cfg.DeliverySKU,
			MonthSpanCap: cfg.MonthSpanCap,
		},
		headerCols: ingest.DefaultHeaderColumns(),
		lineCols:   ingest.DefaultLineColumns(),
		cache:      dashCache,
		archive:    archive,
		merger:     merger,
	}
}

// ProcessUpload ingests the two exports, runs the full reconciliation
// pipeline and installs the result as the current snapshot. The raw
// files are archived and the snapshot cached by upload digest.
func (s *DashboardService) ProcessUpload(ctx context.Context, headerFile, lineFile io.Reader, headerName, lineName string) (*cache.Snapshot, error) {
	headerData, err := io.ReadAll(headerFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read header upload: %w", err)
	}
	lineData, err := io.ReadAll(lineFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read line upload: %w", err)
	}

	digest := uploadDigest(headerData, lineData)
	if snap, ok, err := s.cache.GetSnapshot(ctx, digest); err == nil && ok {
		s.install(snap, digest)
		return snap, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get snapshot failed")
	}

	if _, err := s.archive.Archive(ctx, "headers", headerName, bytes.NewReader(headerData), int64(len(headerData))); err != nil {
		log.Warn().Err(err).Str("file", headerName).Msg("dashboard: archive failed")
	}
	if _, err := s.archive.Archive(ctx, "lines", lineName, bytes.NewReader(lineData), int64(len(lineData))); err != nil {
		log.Warn().Err(err).Str("file", lineName).Msg("dashboard: archive failed")
	}

	var headerRows, lineRows []pipeline.Row
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		headerRows, err = ingest.ReadXLSXFrom(bytes.NewReader(headerData), headerName)
		return err
	})
	g.Go(func() error {
		var err error
		lineRows, err = ingest.ReadXLSXFrom(bytes.NewReader(lineData), lineName)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := s.runPipeline(headerRows, lineRows)

	if err := s.cache.SetSnapshot(ctx, digest, snap); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set snapshot failed")
	}
	s.install(snap, digest)

	log.Info().
		Int("orders", snap.OrderCount).
		Int("customers", len(snap.Customers)).
		Int("dropped", snap.DroppedOrders).
		Msg("upload processed")

	return snap, nil
}

// ProcessFiles is the CLI entry point: same pipeline, sources read from
// disk.
func (s *DashboardService) ProcessFiles(ctx context.Context, headerPath, linePath string) (*cache.Snapshot, error) {
	var headerRows, lineRows []pipeline.Row
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		headerRows, err = ingest.ReadXLSX(headerPath)
		return err
	})
	g.Go(func() error {
		var err error
		lineRows, err = ingest.ReadXLSX(linePath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := s.runPipeline(headerRows, lineRows)
	s.install(snap, "")
	return snap, nil
}

// runPipeline is the pure core: normalize, aggregate, join, group.
func (s *DashboardService) runPipeline(headerRows, lineRows []pipeline.Row) *cache.Snapshot {
	headers := s.normalizer.NormalizeHeaders(headerRows, s.headerCols)
	lines := s.normalizer.NormalizeLines(lineRows, s.lineCols)

	orders := pipeline.Join(headers, pipeline.AggregateLines(lines))
	customers, dropped := pipeline.GroupCustomers(orders)

	return &cache.Snapshot{
		Customers:     customers,
		OrderCount:    len(orders),
		DroppedOrders: dropped,
		ProcessedAt:   time.Now().UTC(),
	}
}

func (s *DashboardService) install(snap *cache.Snapshot, digest string) {
	s.mu.Lock()
	s.snapshot = snap
	s.digest = digest
	s.mu.Unlock()
}

func (s *DashboardService) current() (*cache.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return s.snapshot, nil
}

// Customers returns the grouped customers, filtered by query when one
// is given. Queries shorter than pipeline.MinQueryLength are ignored
// here; this is the caller-side guard the search engine documents.
func (s *DashboardService) Customers(query string) ([]domain.CustomerAggregate, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	if len(query) < pipeline.MinQueryLength {
		return snap.Customers, nil
	}
	return pipeline.FilterCustomers(snap.Customers, query), nil
}

// DroppedOrders reports how many orders could not be attributed to any
// customer in the current snapshot.
func (s *DashboardService) DroppedOrders() (int, error) {
	snap, err := s.current()
	if err != nil {
		return 0, err
	}
	return snap.DroppedOrders, nil
}

// CustomerHeatmap builds the month buckets and day contributions for
// one customer.
func (s *DashboardService) CustomerHeatmap(customerKey string) (*Heatmap, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}

	for _, c := range snap.Customers {
		if c.Key != customerKey {
			continue
		}
		contributions := s.temporal.DayContributions(c.Orders)
		days := make([]HeatmapDay, len(contributions))
		for i, d := range contributions {
			days[i] = HeatmapDay{DayContribution: d, Level: pipeline.IntensityLevel(d.Count)}
		}
		return &Heatmap{
			Months: s.temporal.MonthBuckets(c.Orders),
			Days:   days,
		}, nil
	}
	return nil, fmt.Errorf("customer %q not found", customerKey)
}

// SKUMonthCounts exposes the (customer, month, sku) counts the export
// surface flattens into a spreadsheet.
func (s *DashboardService) SKUMonthCounts(customerKey string) (map[string]map[string]float64, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	for _, c := range snap.Customers {
		if c.Key == customerKey {
			return s.temporal.SKUMonthCounts(c.Orders), nil
		}
	}
	return nil, fmt.Errorf("customer %q not found", customerKey)
}

// RFM scores the current customer population against the given
// evaluation date.
func (s *DashboardService) RFM(at time.Time) ([]domain.RFMSegment, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return pipeline.ScoreRFM(snap.Customers, at), nil
}

// Sync merges the current snapshot into the persisted customer
// collection.
func (s *DashboardService) Sync(ctx context.Context) (syncer.Result, error) {
	snap, err := s.current()
	if err != nil {
		return syncer.Result{}, err
	}
	if s.merger == nil {
		return syncer.Result{}, fmt.Errorf("sync is not configured")
	}
	return s.merger.Sync(ctx, snap.Customers)
}

// Snapshot exposes the current snapshot for exports.
func (s *DashboardService) Snapshot() (*cache.Snapshot, error) {
	return s.current()
}

// Temporal exposes the configured aggregator so exports apply the same
// delivery-SKU policy as the dashboard views.
func (s *DashboardService) Temporal() *pipeline.TemporalAggregator {
	return &s.temporal
}

func uploadDigest(headerData, lineData []byte) string {
	h := sha1.New()
	h.Write(headerData)
	h.Write(lineData)
	return hex.EncodeToString(h.Sum(nil))
}

// internal/api/handlers/dashboard_handler.go
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/export"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Upload receives the order-management export ("headers") and the POS
// line-item export ("lines") and runs the reconciliation pipeline.
func (h *DashboardHandler) Upload(c *gin.Context) {
	headerFile, err := c.FormFile("headers")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "headers file is required"})
		return
	}
	lineFile, err := c.FormFile("lines")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lines file is required"})
		return
	}

	headerReader, err := headerFile.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open headers file"})
		return
	}
	defer headerReader.Close()

	lineReader, err := lineFile.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open lines file"})
		return
	}
	defer lineReader.Close()

	snap, err := h.dashboard.ProcessUpload(c.Request.Context(), headerReader, lineReader, headerFile.Filename, lineFile.Filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to process upload")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":    snap.OrderCount,
		"customers": len(snap.Customers),
		"dropped":   snap.DroppedOrders,
	})
}

// GetCustomers lists grouped customers, optionally filtered by the
// search query. Queries under three characters return the full list;
// that guard lives here by contract, not in the search engine.
func (h *DashboardHandler) GetCustomers(c *gin.Context) {
	customers, err := h.dashboard.Customers(c.Query("q"))
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"count":     len(customers),
	})
}

// GetHeatmap returns one customer's month buckets and day
// contributions.
func (h *DashboardHandler) GetHeatmap(c *gin.Context) {
	heatmap, err := h.dashboard.CustomerHeatmap(c.Param("key"))
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, heatmap)
}

// GetSKUMonthCounts returns the (month, sku) purchase counts for one
// customer, the shape the export flattens.
func (h *DashboardHandler) GetSKUMonthCounts(c *gin.Context) {
	counts, err := h.dashboard.SKUMonthCounts(c.Param("key"))
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetRFM scores the customer population. An optional ?at=YYYY-MM-DD
// pins the evaluation date, mainly for reproducing past reports.
func (h *DashboardHandler) GetRFM(c *gin.Context) {
	var at time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'at' date, expected YYYY-MM-DD"})
			return
		}
		at = parsed
	}

	segments, err := h.dashboard.RFM(at)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": segments})
}

// Sync pushes the current snapshot into the persisted customer
// collection. Partial progress is reported even on failure.
func (h *DashboardHandler) Sync(c *gin.Context) {
	result, err := h.dashboard.Sync(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Int("batches_done", result.BatchesDone).Msg("sync failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":        err.Error(),
			"batches_done": result.BatchesDone,
			"batches":      result.Batches,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportWorkbook streams the month×SKU frequency workbook.
func (h *DashboardHandler) ExportWorkbook(c *gin.Context) {
	snap, err := h.dashboard.Snapshot()
	if err != nil {
		h.queryError(c, err)
		return
	}

	f, err := export.BuildWorkbook(snap.Customers, h.dashboard.Temporal())
	if err != nil {
		log.Error().Err(err).Msg("failed to build export workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
		return
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Error().Err(err).Msg("failed to encode export workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode workbook"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="frecuencia.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *DashboardHandler) queryError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoSnapshot) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
}

// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/api/handlers"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/api/middleware"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/service"
)

func NewRouter(dashboard *service.DashboardService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if dashboard != nil {
		h := handlers.NewDashboardHandler(dashboard)
		apiGroup.POST("/upload", h.Upload)
		apiGroup.POST("/sync", h.Sync)

		customersGroup := apiGroup.Group("/customers")
		{
			customersGroup.GET("", h.GetCustomers)
			customersGroup.GET("/:key/heatmap", h.GetHeatmap)
			customersGroup.GET("/:key/frequency", h.GetSKUMonthCounts)
		}

		apiGroup.GET("/rfm", h.GetRFM)
		apiGroup.GET("/export", h.ExportWorkbook)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}

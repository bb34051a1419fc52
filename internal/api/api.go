// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Sohamiota/Target-JIT-org/internal/api/handlers"
	"github.com/Sohamiota/Target-JIT-org/internal/api/middleware"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
)

type Services struct {
	OptimizeService *service.OptimizeService
	AnalysisService *service.AnalysisService
	DatasetService  *service.DatasetService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(), middleware.Recovery(), corsPolicy(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.OptimizeService != nil {
			optimizeHandler := handlers.NewOptimizeHandler(services.OptimizeService)

			apiGroup.POST("/optimize", optimizeHandler.Optimize)
			apiGroup.GET("/summary", optimizeHandler.GetSummary)

			runsGroup := apiGroup.Group("/runs")
			{
				runsGroup.POST("", optimizeHandler.StartRun)
				runsGroup.GET("", optimizeHandler.ListRuns)
				runsGroup.GET("/latest", optimizeHandler.GetLatestRun)
				runsGroup.GET("/:id", optimizeHandler.GetRun)
				runsGroup.GET("/:id/results", optimizeHandler.GetRunResults)
			}

			itemsGroup := apiGroup.Group("/items")
			{
				itemsGroup.GET("", optimizeHandler.GetItems)
				itemsGroup.GET("/:sku", optimizeHandler.GetItem)
			}

			policyGroup := apiGroup.Group("/policy")
			{
				policyGroup.GET("", optimizeHandler.GetPolicy)
				policyGroup.PUT("", optimizeHandler.UpdatePolicy)
				policyGroup.GET("/versions", optimizeHandler.ListPolicyVersions)
			}
		}

		if services.AnalysisService != nil {
			analysisHandler := handlers.NewAnalysisHandler(services.AnalysisService)
			analysisGroup := apiGroup.Group("/analysis")
			{
				analysisGroup.GET("/movement", analysisHandler.GetMovement)
				analysisGroup.GET("/forecast", analysisHandler.GetForecast)
				analysisGroup.GET("/anomalies", analysisHandler.GetAnomalies)
			}
		}

		if services.DatasetService != nil {
			datasetHandler := handlers.NewDatasetHandler(services.DatasetService)
			datasetGroup := apiGroup.Group("/datasets")
			{
				datasetGroup.POST("/upload", datasetHandler.Upload)
				datasetGroup.GET("/stats", datasetHandler.GetStats)
				datasetGroup.POST("/retry", datasetHandler.Retry)
			}
		}
	}

	return router
}

// corsPolicy builds the CORS middleware. Origins may arrive as
// repeated values or comma-separated lists; "*" anywhere opens the
// API to every origin. With nothing configured the local frontend
// ports are allowed.
func corsPolicy(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins, allowAll := flattenOrigins(allowedOrigins)
	switch {
	case allowAll:
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	default:
		cfg.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	return cors.New(cfg)
}

// flattenOrigins splits comma-separated entries and reports whether a
// wildcard was present.
func flattenOrigins(origins []string) ([]string, bool) {
	var flat []string
	allowAll := false
	for _, entry := range origins {
		for _, origin := range strings.Split(entry, ",") {
			origin = strings.TrimSpace(origin)
			switch origin {
			case "":
			case "*":
				allowAll = true
			default:
				flat = append(flat, origin)
			}
		}
	}
	return flat, allowAll
}

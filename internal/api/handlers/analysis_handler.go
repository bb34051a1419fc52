package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sohamiota/Target-JIT-org/internal/service"
)

type AnalysisHandler struct {
	service *service.AnalysisService
}

func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// GetMovement clusters the catalog into movement bands.
func (h *AnalysisHandler) GetMovement(c *gin.Context) {
	analysis, err := h.service.CategorizeMovement(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to categorize catalog")
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetForecast projects demand for one SKU (or the whole catalog when
// sku_id is omitted). Query params: sku_id, method (ma|ses|holt),
// horizon in days.
func (h *AnalysisHandler) GetForecast(c *gin.Context) {
	skuID := strings.TrimSpace(c.Query("sku_id"))
	method := strings.TrimSpace(c.Query("method"))
	horizon := parsePositiveIntWithDefault(c.Query("horizon"), 0)

	forecast, err := h.service.ForecastDemand(c.Request.Context(), skuID, method, horizon)
	if err != nil {
		respondError(c, err, "failed to forecast demand")
		return
	}

	c.JSON(http.StatusOK, forecast)
}

// GetAnomalies z-scores the catalog. Query params: threshold (|z|
// cutoff), flagged_only to drop clean items.
func (h *AnalysisHandler) GetAnomalies(c *gin.Context) {
	var threshold float64
	if v := strings.TrimSpace(c.Query("threshold")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			threshold = f
		}
	}
	flaggedOnly, _ := strconv.ParseBool(c.DefaultQuery("flagged_only", "false"))

	scan, err := h.service.DetectAnomalies(c.Request.Context(), threshold, flaggedOnly)
	if err != nil {
		respondError(c, err, "failed to scan for anomalies")
		return
	}

	c.JSON(http.StatusOK, scan)
}

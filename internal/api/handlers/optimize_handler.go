// internal/api/handlers/optimize_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
)

type OptimizeHandler struct {
	service *service.OptimizeService
}

func NewOptimizeHandler(service *service.OptimizeService) *OptimizeHandler {
	return &OptimizeHandler{service: service}
}

type optimizeRequest struct {
	Items []domain.Item `json:"items"`
	// ServiceLevel overrides the policy's target for this request only.
	ServiceLevel *float64 `json:"service_level,omitempty"`
}

type startRunRequest struct {
	SKUIDs     []string `json:"sku_ids"`
	Categories []string `json:"categories"`
}

// Optimize runs the optimizer over the items in the request body
// without persisting anything. Items that fail validation come back in
// the failures list; the rest are optimized.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no items provided"})
		return
	}

	result, err := h.service.OptimizeBatch(c.Request.Context(), req.Items, req.ServiceLevel)
	if err != nil {
		respondError(c, err, "optimization failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// StartRun optimizes the stored catalog under the current policy and
// persists the run. An optional body narrows the run to specific SKUs
// or categories; an empty body optimizes the whole catalog.
func (h *OptimizeHandler) StartRun(c *gin.Context) {
	var scope *domain.ItemFilter
	if c.Request.ContentLength != 0 {
		var req startRunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		if len(req.SKUIDs) > 0 || len(req.Categories) > 0 {
			scope = &domain.ItemFilter{SKUIDs: req.SKUIDs, Categories: req.Categories}
		}
	}

	run, failures, err := h.service.RunOptimization(c.Request.Context(), scope)
	if err != nil {
		respondError(c, err, "optimization run failed")
		return
	}

	if failures == nil {
		failures = []domain.ItemFailure{}
	}
	c.JSON(http.StatusCreated, gin.H{
		"run":      run,
		"failures": failures,
	})
}

func (h *OptimizeHandler) ListRuns(c *gin.Context) {
	limit := parsePositiveIntWithDefault(c.Query("limit"), 20)

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "failed to fetch runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *OptimizeHandler) GetLatestRun(c *gin.Context) {
	run, err := h.service.LatestCompletedRun(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch latest run")
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed optimization run"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *OptimizeHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), runID)
	if err != nil {
		respondError(c, err, "failed to fetch run")
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *OptimizeHandler) GetRunResults(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	page, err := h.service.GetResults(c.Request.Context(), runID, parseItemFilter(c))
	if err != nil {
		respondError(c, err, "failed to fetch results")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *OptimizeHandler) GetItems(c *gin.Context) {
	page, err := h.service.GetItems(c.Request.Context(), parseItemFilter(c))
	if err != nil {
		respondError(c, err, "failed to fetch items")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *OptimizeHandler) GetItem(c *gin.Context) {
	item, err := h.service.GetItem(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, err, "failed to fetch item")
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetSummary serves the dashboard rollup of the latest completed run,
// or of the run named by run_id.
func (h *OptimizeHandler) GetSummary(c *gin.Context) {
	filter := &domain.SummaryFilter{
		Category: c.Query("category"),
		RunID:    c.Query("run_id"),
	}

	summary, err := h.service.GetSummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "failed to fetch summary")
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed optimization run"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *OptimizeHandler) GetPolicy(c *gin.Context) {
	policy, version, err := h.service.CurrentPolicy(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch policy")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"policy":  policy,
		"version": version,
	})
}

// UpdatePolicy replaces the active policy. All three parameters are
// required; the stored version number increments on every update.
func (h *OptimizeHandler) UpdatePolicy(c *gin.Context) {
	var policy domain.Policy
	if err := c.ShouldBindJSON(&policy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	saved, err := h.service.UpdatePolicy(c.Request.Context(), policy)
	if err != nil {
		respondError(c, err, "failed to update policy")
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (h *OptimizeHandler) ListPolicyVersions(c *gin.Context) {
	limit := parsePositiveIntWithDefault(c.Query("limit"), 20)

	versions, err := h.service.ListPolicyVersions(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "failed to fetch policy versions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

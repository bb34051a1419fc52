// internal/api/handlers/dataset_handler.go
package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/service"
)

const uploadRoot = "data/uploads"

type DatasetHandler struct {
	service *service.DatasetService
}

func NewDatasetHandler(service *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

// Upload stages catalog or sales files (CSV or XLSX) and ingests them
// in the background. The kind form field selects the dataset; files go
// under data/uploads/<kind>/ so retries can find them later.
func (h *DatasetHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	kind := strings.TrimSpace(c.PostForm("kind"))
	if kind != service.DatasetCatalog && kind != service.DatasetSales {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be catalog or sales"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	saved := make([]string, 0, len(files))
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".csv" && ext != ".xlsx" {
			log.Warn().Str("filename", file.Filename).Msg("unsupported upload extension skipped")
			continue
		}

		path := filepath.Join(uploadRoot, kind, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, path); err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
			continue
		}
		saved = append(saved, path)
	}
	if len(saved) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid files to process"})
		return
	}

	// Detached from the request so the ingest outlives the response.
	go func() {
		if err := h.service.IngestFiles(context.Background(), kind, saved); err != nil {
			log.Error().Err(err).Str("kind", kind).Msg("failed to ingest uploaded files")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "files are being processed",
		"kind":    kind,
		"count":   len(saved),
	})
}

// GetStats reports pipeline throughput for one dataset kind over the
// last N days.
func (h *DatasetHandler) GetStats(c *gin.Context) {
	kind := c.DefaultQuery("kind", service.DatasetCatalog)
	days := parsePositiveIntWithDefault(c.Query("days"), 7)

	stats, err := h.service.Stats(c.Request.Context(), kind, time.Now().AddDate(0, 0, -days))
	if err != nil {
		respondError(c, err, "failed to fetch pipeline stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Retry re-runs failed file jobs for one dataset kind.
func (h *DatasetHandler) Retry(c *gin.Context) {
	kind := c.DefaultQuery("kind", service.DatasetCatalog)

	if err := h.service.RetryFailed(c.Request.Context(), kind); err != nil {
		respondError(c, err, "failed to retry jobs")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "retry started", "kind": kind})
}

package drive

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler exposes the Drive folder over the ingest server: list the
// folder, fetch one file, or trigger a sync pass.
type Handler struct {
	service *Service
	syncer  *Syncer
}

func NewHandler(service *Service, syncer *Syncer) *Handler {
	return &Handler{service: service, syncer: syncer}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/drive/files/download", h.DownloadFile).Methods("GET")
	router.HandleFunc("/api/drive/sync", h.Sync).Methods("POST")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListFiles lists a folder by ID (folderId) or by slash-separated
// path (path). With neither, it lists the Drive root.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	folderID := r.URL.Query().Get("folderId")

	if path := r.URL.Query().Get("path"); path != "" {
		id, err := h.service.FindFolderByPath(ctx, path)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		folderID = id
	}

	files, err := h.service.ListFiles(ctx, folderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// DownloadFile streams one file by fileId. A name query sets the
// download filename and defaults to data.csv.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "fileId parameter is required")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "data.csv"
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if err := h.service.DownloadFile(r.Context(), fileID, w); err != nil {
		// The headers may already be out, so the error status is best effort.
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Sync runs one pull-and-ingest pass over the configured folder.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "drive sync is not configured")
		return
	}

	count, err := h.syncer.SyncOnce(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("sync failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"files":  count,
	})
}

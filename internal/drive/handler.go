// internal/drive/handler.go
package drive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/service"
)

// Handler exposes the Drive-backed ingest flow: list the export folder,
// pick a header/line file pair, run the pipeline on them.
type Handler struct {
	service   *Service
	dashboard *service.DashboardService
	folderID  string
}

func NewHandler(svc *Service, dashboard *service.DashboardService, folderID string) *Handler {
	return &Handler{
		service:   svc,
		dashboard: dashboard,
		folderID:  folderID,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/exports", h.ListExports).Methods("GET")
	router.HandleFunc("/api/drive/exports/download", h.DownloadExport).Methods("GET")
	router.HandleFunc("/api/drive/ingest", h.IngestExports).Methods("POST")
}

func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	folderID := h.folderID
	if path := r.URL.Query().Get("path"); path != "" {
		var err error
		folderID, err = h.service.FindFolderByPath(path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}

	files, err := h.service.ListExports(folderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=export.xlsx")

	if err := h.service.DownloadFile(fileID, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// IngestExports downloads the given header and line file pair from
// Drive and runs the reconciliation pipeline on them.
func (h *Handler) IngestExports(w http.ResponseWriter, r *http.Request) {
	headerID := r.URL.Query().Get("headerFileId")
	lineID := r.URL.Query().Get("lineFileId")
	if headerID == "" || lineID == "" {
		http.Error(w, "headerFileId and lineFileId parameters are required", http.StatusBadRequest)
		return
	}

	var headerBuf, lineBuf bytes.Buffer
	if err := h.service.DownloadFile(headerID, &headerBuf); err != nil {
		http.Error(w, fmt.Sprintf("header download failed: %v", err), http.StatusInternalServerError)
		return
	}
	if err := h.service.DownloadFile(lineID, &lineBuf); err != nil {
		http.Error(w, fmt.Sprintf("line download failed: %v", err), http.StatusInternalServerError)
		return
	}

	snap, err := h.dashboard.ProcessUpload(r.Context(), &headerBuf, &lineBuf, headerID+".xlsx", lineID+".xlsx")
	if err != nil {
		http.Error(w, fmt.Sprintf("ingestion failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"orders":    snap.OrderCount,
		"customers": len(snap.Customers),
		"dropped":   snap.DroppedOrders,
	})
}

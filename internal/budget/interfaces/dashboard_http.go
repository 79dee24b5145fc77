package interfaces

import (
	"errors"
	"io"
	"log"
	"net/http"

	"tryognik-dashboard/internal/audit"
	budgetapp "tryognik-dashboard/internal/budget/application"
	budget "tryognik-dashboard/internal/budget/domain"
)

// DefaultMaxUploadBytes caps ledger uploads.
const DefaultMaxUploadBytes int64 = 10 << 20

const uploadField = "file"

// DashboardHandler serves ledger uploads and the metrics overview.
type DashboardHandler struct {
	service        *budgetapp.DashboardService
	auditLogger    audit.Logger
	logger         *log.Logger
	maxUploadBytes int64
}

// NewDashboardHandler constructs a handler.
func NewDashboardHandler(service *budgetapp.DashboardService, auditLogger audit.Logger, logger *log.Logger, maxUploadBytes int64) (*DashboardHandler, error) {
	if service == nil {
		return nil, errors.New("dashboard handler: nil service")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &DashboardHandler{
		service:        service,
		auditLogger:    auditLogger,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// ServeHTTP handles /api/v1/upload/* and /api/v1/metrics/overview.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/upload/budget":
		if r.Method == http.MethodPost {
			h.handleUpload(w, r)
			return
		}
	case "/api/v1/upload/load-sample":
		if r.Method == http.MethodGet || r.Method == http.MethodPost {
			h.handleLoadSample(w, r)
			return
		}
	case "/api/v1/metrics/overview":
		if r.Method == http.MethodGet {
			h.handleOverview(w, r)
			return
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (h *DashboardHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	pub, err := h.service.Ingest(r.Context(), budgetapp.IngestRequest{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Source:      budget.SourceUpload,
	})
	if err != nil {
		h.respondIngestError(w, err)
		return
	}
	h.respondPublished(w, pub)
	logAudit(h.auditLogger, r, audit.ActionUploadBudget, "ledger", pub.Filename, map[string]any{
		"rows":          pub.RowCount,
		"snapshot_hash": pub.Digest,
	})
}

func (h *DashboardHandler) handleLoadSample(w http.ResponseWriter, r *http.Request) {
	pub, err := h.service.LoadSample(r.Context())
	if err != nil {
		h.respondIngestError(w, err)
		return
	}
	h.respondPublished(w, pub)
	logAudit(h.auditLogger, r, audit.ActionLoadSample, "ledger", pub.Filename, map[string]any{
		"rows":          pub.RowCount,
		"snapshot_hash": pub.Digest,
	})
}

func (h *DashboardHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Overview(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "overview error")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *DashboardHandler) respondPublished(w http.ResponseWriter, pub budget.Publication) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"metrics":       pub.Snapshot,
		"snapshot_hash": pub.Digest,
		"rows":          pub.RowCount,
	})
}

func (h *DashboardHandler) respondIngestError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, budget.ErrMalformedLedger):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusBadRequest, "upload too large")
	case errors.Is(err, budgetapp.ErrNilReader):
		writeError(w, http.StatusBadRequest, "file required")
	default:
		h.logger.Printf("ingest failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

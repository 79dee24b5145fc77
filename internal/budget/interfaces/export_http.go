package interfaces

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"tryognik-dashboard/internal/audit"
	budgetapp "tryognik-dashboard/internal/budget/application"
	budget "tryognik-dashboard/internal/budget/domain"
	"tryognik-dashboard/internal/observability/metrics"
)

// DefaultReportFilename is the attachment base name for report exports.
const DefaultReportFilename = "tryognik-investor-report"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves report exports under /api/v1/export.
type ExportHandler struct {
	service     *budgetapp.DashboardService
	auditLogger audit.Logger
	title       string
	filename    string
	now         func() time.Time
}

// NewExportHandler constructs a handler.
func NewExportHandler(service *budgetapp.DashboardService, auditLogger audit.Logger, title, filename string) (*ExportHandler, error) {
	if service == nil {
		return nil, errors.New("export handler: nil service")
	}
	if title == "" {
		title = DefaultReportTitle
	}
	if filename == "" {
		filename = DefaultReportFilename
	}
	return &ExportHandler{
		service:     service,
		auditLogger: auditLogger,
		title:       title,
		filename:    filename,
		now:         time.Now,
	}, nil
}

// ServeHTTP handles export routes.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/export/investor-report":
		h.handleExport(w, r, "pdf")
	case "/api/v1/export/investor-report.xlsx":
		h.handleExport(w, r, "xlsx")
	case "/api/v1/export/departments.csv":
		h.handleExport(w, r, "csv")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ExportHandler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(start))
	}()

	input, err := h.reportInput(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "snapshot error", http.StatusInternalServerError)
		return
	}

	var (
		data        []byte
		contentType string
		filename    string
		action      = audit.ActionExportReport
	)
	switch format {
	case "pdf":
		data, err = BuildInvestorReportPDF(input)
		contentType = "application/pdf"
		filename = h.filename + ".pdf"
	case "xlsx":
		data, err = BuildInvestorReportXLSX(input)
		contentType = xlsxContentType
		filename = h.filename + ".xlsx"
	case "csv":
		data, err = BuildDepartmentsCSV(input.Snapshot)
		contentType = "text/csv"
		filename = "departments.csv"
		action = audit.ActionExportDepartments
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, fmt.Sprintf("export %s error", format), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	logAudit(h.auditLogger, r, action, "report", filename, map[string]any{
		"format":        format,
		"snapshot_hash": input.Snapshot.Digest(),
	})
}

func (h *ExportHandler) reportInput(r *http.Request) (ReportInput, error) {
	input := ReportInput{Title: h.title, GeneratedAt: h.now()}
	pub, ok, err := h.service.Current(r.Context())
	if err != nil {
		return ReportInput{}, err
	}
	if !ok {
		input.Snapshot = budget.EmptySnapshot()
		return input, nil
	}
	input.Snapshot = pub.Snapshot
	input.Source = pub.Source
	input.Filename = pub.Filename
	return input, nil
}

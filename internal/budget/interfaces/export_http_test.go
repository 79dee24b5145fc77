package interfaces

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"tryognik-dashboard/internal/audit"
	"tryognik-dashboard/internal/auth"
	budget "tryognik-dashboard/internal/budget/domain"
)

func loadLedger(t *testing.T, env testEnv) {
	t.Helper()
	resp := httptest.NewRecorder()
	env.dashboard.ServeHTTP(resp, multipartRequest(t, "file", "ledger.csv", validLedger))
	if resp.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", resp.Code, resp.Body.String())
	}
}

func TestExportInvestorReportPDF(t *testing.T) {
	env := newTestEnv(t, 0)
	loadLedger(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/investor-report", nil)
	req.Header.Set(auth.RoleHeader, "investor")
	resp := httptest.NewRecorder()
	env.export.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	want := `attachment; filename="tryognik-investor-report.pdf"`
	if cd := resp.Header().Get("Content-Disposition"); cd != want {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF body")
	}

	entries, _ := env.auditLog.Recent(context.Background(), 0)
	if len(entries) != 2 {
		t.Fatalf("expected upload and export entries, got %d", len(entries))
	}
	latest := entries[0]
	if latest.Action != audit.ActionExportReport || latest.Role != "investor" {
		t.Fatalf("unexpected audit entry: %+v", latest)
	}
}

func TestExportWithoutSnapshot(t *testing.T) {
	env := newTestEnv(t, 0)
	resp := httptest.NewRecorder()
	env.export.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/export/investor-report", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF body")
	}
	entries, _ := env.auditLog.Recent(context.Background(), 0)
	if len(entries) != 1 || entries[0].Role != string(auth.RoleAnonymous) {
		t.Fatalf("expected anonymous export entry, got %+v", entries)
	}
}

func TestExportInvestorReportXLSX(t *testing.T) {
	env := newTestEnv(t, 0)
	loadLedger(t, env)

	resp := httptest.NewRecorder()
	env.export.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/export/investor-report.xlsx", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(resp.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	dept, err := f.GetCellValue("departments", "A2")
	if err != nil {
		t.Fatalf("read departments: %v", err)
	}
	if dept != "Art" {
		t.Fatalf("expected Art in departments sheet, got %q", dept)
	}
	rows, err := f.GetRows("monthly")
	if err != nil {
		t.Fatalf("read monthly: %v", err)
	}
	if len(rows) != 13 {
		t.Fatalf("expected header plus 12 months, got %d rows", len(rows))
	}
}

func TestExportDepartmentsCSV(t *testing.T) {
	env := newTestEnv(t, 0)
	loadLedger(t, env)

	resp := httptest.NewRecorder()
	env.export.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/export/departments.csv", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 departments, got %d lines", len(lines))
	}
	if lines[0] != "department,budget,actual,variance_pct" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "Art,500,100,-80.00" {
		t.Fatalf("unexpected Art line %q", lines[1])
	}
	entries, _ := env.auditLog.Recent(context.Background(), 1)
	if len(entries) != 1 || entries[0].Action != audit.ActionExportDepartments {
		t.Fatalf("expected export_departments entry, got %+v", entries)
	}
}

func TestExportRejectsPost(t *testing.T) {
	env := newTestEnv(t, 0)
	resp := httptest.NewRecorder()
	env.export.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/export/investor-report", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestReportNAFormatting(t *testing.T) {
	snap := budget.EmptySnapshot()
	if got := moneyOrNA(snap.CashOnHand); got != "N/A" {
		t.Fatalf("expected N/A, got %q", got)
	}
	if got := runwayOrNA(snap.CashRunwayDays); got != "N/A" {
		t.Fatalf("expected N/A, got %q", got)
	}
	if got := moneyOrNA(budget.ParseAmount("1234.5")); got != "$1234.50" {
		t.Fatalf("unexpected money %q", got)
	}
	if _, err := BuildInvestorReportPDF(ReportInput{Snapshot: snap}); err != nil {
		t.Fatalf("empty report: %v", err)
	}
}

package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	budget "tryognik-dashboard/internal/budget/domain"
)

// DefaultReportTitle is used when ReportInput.Title is empty.
const DefaultReportTitle = "Tryognik Investor Report"

const reportNotes = "This report was generated from Tryognik Dashboard metrics. " +
	"For legal and financial advice, consult your auditors."

// ReportInput carries everything rendered into an investor report.
type ReportInput struct {
	Title       string
	GeneratedAt time.Time
	Snapshot    budget.MetricsSnapshot
	Source      budget.Source
	Filename    string
}

func (in ReportInput) title() string {
	if in.Title == "" {
		return DefaultReportTitle
	}
	return in.Title
}

// BuildInvestorReportPDF renders the investor report as PDF.
func BuildInvestorReportPDF(in ReportInput) ([]byte, error) {
	snap := in.Snapshot
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, in.title(), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", in.GeneratedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	if in.Filename != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Source: %s (%s)", in.Filename, in.Source))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	section(pdf, "Overview")
	pdf.Cell(0, 6, fmt.Sprintf("Burn Rate (daily): %s", moneyOrNA(snap.BurnRateDaily)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Burn Rate (monthly): %s", moneyOrNA(snap.BurnRateMonthly)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Cash On Hand: %s", moneyOrNA(snap.CashOnHand)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Cash Runway (days): %s", runwayOrNA(snap.CashRunwayDays)))
	pdf.Ln(8)

	section(pdf, "Department Budget vs Actual")
	if len(snap.Departments) == 0 {
		pdf.Cell(0, 6, "No departmental data available")
		pdf.Ln(8)
	} else {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 6, "Department", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Budget", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Actual", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Variance %", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, dept := range snap.Departments {
			pdf.CellFormat(60, 6, dept.Department, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, dept.Budget.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, dept.Actual.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, dept.VariancePct.StringFixed(1), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	if len(snap.Monthly) > 0 {
		section(pdf, "Monthly Spend")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, "Month", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, "Cash", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, point := range snap.Monthly {
			pdf.CellFormat(40, 6, point.Month, "1", 0, "C", false, 0, "")
			pdf.CellFormat(50, 6, point.Cash.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	section(pdf, "Notes")
	pdf.MultiCell(0, 5, reportNotes, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "BU", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
}

// moneyOrNA renders zero as N/A, like the dashboard UI.
func moneyOrNA(value decimal.Decimal) string {
	if value.IsZero() {
		return "N/A"
	}
	return "$" + value.StringFixed(2)
}

func runwayOrNA(value decimal.NullDecimal) string {
	if !value.Valid || value.Decimal.IsZero() {
		return "N/A"
	}
	return value.Decimal.Round(0).String()
}

// BuildInvestorReportXLSX renders the investor report as a workbook.
func BuildInvestorReportXLSX(in ReportInput) ([]byte, error) {
	snap := in.Snapshot
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	deptSheet := "departments"
	monthlySheet := "monthly"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(deptSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", in.title())
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", in.GeneratedAt.UTC().Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Source")
	_ = f.SetCellValue(summarySheet, "B4", string(in.Source))
	_ = f.SetCellValue(summarySheet, "A5", "File")
	_ = f.SetCellValue(summarySheet, "B5", in.Filename)
	_ = f.SetCellValue(summarySheet, "A6", "Burn Rate (daily)")
	_ = f.SetCellValue(summarySheet, "B6", snap.BurnRateDaily.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A7", "Burn Rate (monthly)")
	_ = f.SetCellValue(summarySheet, "B7", snap.BurnRateMonthly.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A8", "Cash On Hand")
	_ = f.SetCellValue(summarySheet, "B8", snap.CashOnHand.InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A9", "Cash Runway (days)")
	if snap.CashRunwayDays.Valid {
		_ = f.SetCellValue(summarySheet, "B9", snap.CashRunwayDays.Decimal.InexactFloat64())
	} else {
		_ = f.SetCellValue(summarySheet, "B9", "N/A")
	}

	_ = f.SetCellValue(deptSheet, "A1", "Department")
	_ = f.SetCellValue(deptSheet, "B1", "Budget")
	_ = f.SetCellValue(deptSheet, "C1", "Actual")
	_ = f.SetCellValue(deptSheet, "D1", "Variance %")
	for i, dept := range snap.Departments {
		row := i + 2
		_ = f.SetCellValue(deptSheet, fmt.Sprintf("A%d", row), dept.Department)
		_ = f.SetCellValue(deptSheet, fmt.Sprintf("B%d", row), dept.Budget.InexactFloat64())
		_ = f.SetCellValue(deptSheet, fmt.Sprintf("C%d", row), dept.Actual.InexactFloat64())
		_ = f.SetCellValue(deptSheet, fmt.Sprintf("D%d", row), dept.VariancePct.InexactFloat64())
	}

	_ = f.SetCellValue(monthlySheet, "A1", "Month")
	_ = f.SetCellValue(monthlySheet, "B1", "Cash")
	for i, point := range snap.Monthly {
		row := i + 2
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("A%d", row), point.Month)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("B%d", row), point.Cash.InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDepartmentsCSV renders the department table as CSV.
func BuildDepartmentsCSV(snap budget.MetricsSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"department", "budget", "actual", "variance_pct"}); err != nil {
		return nil, err
	}
	for _, dept := range snap.Departments {
		record := []string{
			dept.Department,
			dept.Budget.String(),
			dept.Actual.String(),
			dept.VariancePct.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

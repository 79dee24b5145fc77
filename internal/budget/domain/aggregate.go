package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// BurnWindowDays is the trailing window used for the burn rate.
	BurnWindowDays = 30
	// BurnWindow is BurnWindowDays as a duration.
	BurnWindow = BurnWindowDays * 24 * time.Hour
	// MonthlyPoints is the length of the trailing monthly cash series.
	MonthlyPoints = 12
)

var (
	windowDays = decimal.NewFromInt(BurnWindowDays)
	hundred    = decimal.NewFromInt(100)
)

type departmentTotals struct {
	budget decimal.Decimal
	actual decimal.Decimal
}

// Aggregate turns ledger rows into a metrics snapshot as of now.
// It has no side effects and never fails: malformed fields were already
// defaulted when the rows were built.
func Aggregate(rows []LedgerRow, now time.Time) MetricsSnapshot {
	windowStart := now.Add(-BurnWindow)

	actualInWindow := decimal.Zero
	cashOnHand := decimal.Zero
	order := make([]string, 0)
	departments := make(map[string]*departmentTotals)
	monthly := make(map[string]decimal.Decimal)

	for _, row := range rows {
		department := row.Department
		if department == "" {
			department = UnknownDepartment
		}
		totals, ok := departments[department]
		if !ok {
			totals = &departmentTotals{}
			departments[department] = totals
			order = append(order, department)
		}

		if row.IsBudget() {
			totals.budget = totals.budget.Add(row.Amount)
		} else {
			totals.actual = totals.actual.Add(row.Amount)
			if row.Date != nil && !row.Date.Before(windowStart) {
				actualInWindow = actualInWindow.Add(row.Amount)
			}
			if key := row.MonthKey(); key != "" {
				monthly[key] = monthly[key].Add(row.Amount)
			}
		}

		if row.IsStartingCash() {
			cashOnHand = row.Amount
		}
	}

	burnDaily := actualInWindow.Div(windowDays)
	snapshot := MetricsSnapshot{
		BurnRateDaily:   burnDaily,
		BurnRateMonthly: burnDaily.Mul(windowDays),
		CashOnHand:      cashOnHand,
		Departments:     make([]DepartmentSummary, 0, len(order)),
		Monthly:         make([]MonthlyPoint, 0, MonthlyPoints),
	}
	if burnDaily.IsPositive() {
		snapshot.CashRunwayDays = decimal.NewNullDecimal(cashOnHand.Div(burnDaily))
	}

	for _, name := range order {
		totals := departments[name]
		snapshot.Departments = append(snapshot.Departments, DepartmentSummary{
			Department:  name,
			Budget:      totals.budget,
			Actual:      totals.actual,
			VariancePct: VariancePct(totals.budget, totals.actual),
		})
	}

	for _, month := range TrailingMonths(now, MonthlyPoints) {
		snapshot.Monthly = append(snapshot.Monthly, MonthlyPoint{Month: month, Cash: monthly[month]})
	}
	return snapshot
}

// VariancePct returns (actual-budget)/budget*100, or zero when budget is zero.
func VariancePct(budget, actual decimal.Decimal) decimal.Decimal {
	if budget.IsZero() {
		return decimal.Zero
	}
	return actual.Sub(budget).Div(budget).Mul(hundred)
}

// TrailingMonths returns count YYYY-MM keys ending at the month of now, oldest first.
func TrailingMonths(now time.Time, count int) []string {
	if count <= 0 {
		return nil
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]string, 0, count)
	for i := count - 1; i >= 0; i-- {
		months = append(months, first.AddDate(0, -i, 0).Format(monthLayout))
	}
	return months
}

package budget

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RowType classifies a ledger row as planned or spent money.
type RowType string

const (
	RowTypeBudget RowType = "budget"
	RowTypeActual RowType = "actual"
)

// Recognized ledger columns.
const (
	ColumnDate       = "date"
	ColumnVendor     = "vendor"
	ColumnDepartment = "department"
	ColumnLineItem   = "line_item"
	ColumnAmount     = "amount"
	ColumnType       = "type"
	ColumnCurrency   = "currency"
)

// Columns lists the ledger columns in canonical order.
var Columns = []string{ColumnDate, ColumnVendor, ColumnDepartment, ColumnLineItem, ColumnAmount, ColumnType, ColumnCurrency}

const (
	// UnknownDepartment is used when a row has no department.
	UnknownDepartment = "Unknown"
	// StartingCashLineItem marks the row carrying the opening cash balance.
	StartingCashLineItem = "starting_cash"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// LedgerRow is one decoded ledger record.
type LedgerRow struct {
	Date       *time.Time
	RawDate    string
	Vendor     string
	Department string
	LineItem   string
	Amount     decimal.Decimal
	RawAmount  string
	Type       RowType
	RawType    string
	Currency   string
}

// NewLedgerRow builds a row from raw column values keyed by column name.
// Missing or malformed values fall back to their defaults.
func NewLedgerRow(fields map[string]string) LedgerRow {
	get := func(key string) string {
		return strings.TrimSpace(fields[key])
	}
	rawDate := get(ColumnDate)
	rawAmount := get(ColumnAmount)
	rawType := get(ColumnType)
	department := get(ColumnDepartment)
	if department == "" {
		department = UnknownDepartment
	}
	return LedgerRow{
		Date:       ParseDate(rawDate),
		RawDate:    rawDate,
		Vendor:     get(ColumnVendor),
		Department: department,
		LineItem:   get(ColumnLineItem),
		Amount:     ParseAmount(rawAmount),
		RawAmount:  rawAmount,
		Type:       ParseRowType(rawType),
		RawType:    rawType,
		Currency:   get(ColumnCurrency),
	}
}

// ParseAmount parses a decimal amount, returning zero on failure.
func ParseAmount(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}

// ParseRowType classifies a raw type. Only "budget" (any case) is a budget row.
func ParseRowType(value string) RowType {
	if strings.ToLower(value) == string(RowTypeBudget) {
		return RowTypeBudget
	}
	return RowTypeActual
}

// ParseDate parses the date formats seen in ledger exports.
// Values without a zone are read as UTC. Returns nil when unparseable.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return &parsed
		}
	}
	return nil
}

// IsBudget reports whether the row is a budget row.
func (r LedgerRow) IsBudget() bool { return r.Type == RowTypeBudget }

// IsStartingCash reports whether the row carries the opening cash balance.
func (r LedgerRow) IsStartingCash() bool {
	return strings.ToLower(r.LineItem) == StartingCashLineItem
}

// MonthKey returns the YYYY-MM prefix of the raw date, or "" when the
// date string does not start with one.
func (r LedgerRow) MonthKey() string {
	if !hasMonthPrefix(r.RawDate) {
		return ""
	}
	return r.RawDate[:7]
}

func hasMonthPrefix(value string) bool {
	if len(value) < 7 {
		return false
	}
	for i := 0; i < 7; i++ {
		c := value[i]
		if i == 4 {
			if c != '-' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

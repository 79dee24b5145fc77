package budget

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

// DepartmentSummary is the budget vs actual view of one department.
type DepartmentSummary struct {
	Department  string
	Budget      decimal.Decimal
	Actual      decimal.Decimal
	VariancePct decimal.Decimal
}

// MonthlyPoint is the actual spend of one calendar month.
type MonthlyPoint struct {
	Month string
	Cash  decimal.Decimal
}

// MetricsSnapshot is the dashboard view model produced by Aggregate.
type MetricsSnapshot struct {
	BurnRateDaily   decimal.Decimal
	BurnRateMonthly decimal.Decimal
	CashOnHand      decimal.Decimal
	CashRunwayDays  decimal.NullDecimal
	Departments     []DepartmentSummary
	Monthly         []MonthlyPoint
}

// EmptySnapshot returns the snapshot served before anything was published.
func EmptySnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Departments: []DepartmentSummary{},
		Monthly:     []MonthlyPoint{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s MetricsSnapshot) Clone() MetricsSnapshot {
	out := s
	out.Departments = append([]DepartmentSummary{}, s.Departments...)
	out.Monthly = append([]MonthlyPoint{}, s.Monthly...)
	return out
}

// Department returns the summary for a department name.
func (s MetricsSnapshot) Department(name string) (DepartmentSummary, bool) {
	for _, dept := range s.Departments {
		if dept.Department == name {
			return dept, true
		}
	}
	return DepartmentSummary{}, false
}

type departmentJSON struct {
	Department  string  `json:"department"`
	Budget      float64 `json:"budget"`
	Actual      float64 `json:"actual"`
	VariancePct float64 `json:"variancePct"`
}

type monthlyJSON struct {
	Month string  `json:"month"`
	Cash  float64 `json:"cash"`
}

type snapshotJSON struct {
	BurnRateDaily   float64          `json:"burnRateDaily"`
	BurnRateMonthly float64          `json:"burnRateMonthly"`
	CashOnHand      float64          `json:"cashOnHand"`
	CashRunwayDays  *float64         `json:"cashRunwayDays"`
	Dept            []departmentJSON `json:"dept"`
	Monthly         []monthlyJSON    `json:"monthly"`
}

// MarshalJSON renders decimals as JSON numbers in the dashboard wire shape.
func (s MetricsSnapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		BurnRateDaily:   s.BurnRateDaily.InexactFloat64(),
		BurnRateMonthly: s.BurnRateMonthly.InexactFloat64(),
		CashOnHand:      s.CashOnHand.InexactFloat64(),
		Dept:            make([]departmentJSON, 0, len(s.Departments)),
		Monthly:         make([]monthlyJSON, 0, len(s.Monthly)),
	}
	if s.CashRunwayDays.Valid {
		runway := s.CashRunwayDays.Decimal.InexactFloat64()
		out.CashRunwayDays = &runway
	}
	for _, dept := range s.Departments {
		out.Dept = append(out.Dept, departmentJSON{
			Department:  dept.Department,
			Budget:      dept.Budget.InexactFloat64(),
			Actual:      dept.Actual.InexactFloat64(),
			VariancePct: dept.VariancePct.InexactFloat64(),
		})
	}
	for _, point := range s.Monthly {
		out.Monthly = append(out.Monthly, monthlyJSON{Month: point.Month, Cash: point.Cash.InexactFloat64()})
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the dashboard wire shape back into decimals.
func (s *MetricsSnapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := MetricsSnapshot{
		BurnRateDaily:   decimal.NewFromFloat(in.BurnRateDaily),
		BurnRateMonthly: decimal.NewFromFloat(in.BurnRateMonthly),
		CashOnHand:      decimal.NewFromFloat(in.CashOnHand),
		Departments:     make([]DepartmentSummary, 0, len(in.Dept)),
		Monthly:         make([]MonthlyPoint, 0, len(in.Monthly)),
	}
	if in.CashRunwayDays != nil {
		out.CashRunwayDays = decimal.NewNullDecimal(decimal.NewFromFloat(*in.CashRunwayDays))
	}
	for _, dept := range in.Dept {
		out.Departments = append(out.Departments, DepartmentSummary{
			Department:  dept.Department,
			Budget:      decimal.NewFromFloat(dept.Budget),
			Actual:      decimal.NewFromFloat(dept.Actual),
			VariancePct: decimal.NewFromFloat(dept.VariancePct),
		})
	}
	for _, point := range in.Monthly {
		out.Monthly = append(out.Monthly, MonthlyPoint{Month: point.Month, Cash: decimal.NewFromFloat(point.Cash)})
	}
	*s = out
	return nil
}

// Digest returns the SHA256 hex digest of the snapshot JSON.
func (s MetricsSnapshot) Digest() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Source identifies where a published snapshot came from.
type Source string

const (
	SourceUpload Source = "upload"
	SourceSample Source = "sample"
	SourceCLI    Source = "cli"
)

// Publication is a snapshot together with its provenance.
type Publication struct {
	Snapshot    MetricsSnapshot
	Source      Source
	Filename    string
	RowCount    int
	Digest      string
	PublishedAt time.Time
}

// NewPublication wraps a snapshot and computes its digest.
func NewPublication(snapshot MetricsSnapshot, source Source, filename string, rowCount int, publishedAt time.Time) Publication {
	return Publication{
		Snapshot:    snapshot,
		Source:      source,
		Filename:    filename,
		RowCount:    rowCount,
		Digest:      snapshot.Digest(),
		PublishedAt: publishedAt,
	}
}

// Clone returns a deep copy of the publication.
func (p Publication) Clone() Publication {
	out := p
	out.Snapshot = p.Snapshot.Clone()
	return out
}

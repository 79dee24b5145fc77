package budget

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEmptySnapshotJSON(t *testing.T) {
	data, err := json.Marshal(EmptySnapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"burnRateDaily":0,"burnRateMonthly":0,"cashOnHand":0,"cashRunwayDays":null,"dept":[],"monthly":[]}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}

func TestSnapshotJSONNumbers(t *testing.T) {
	snap := Aggregate([]LedgerRow{
		row("2026-10-19", "Art", "", "300", "actual"),
		row("", "", "starting_cash", "900", ""),
	}, testNow)

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, part := range []string{`"burnRateDaily":10`, `"cashOnHand":900`, `"cashRunwayDays":90`, `"department":"Art"`, `"month":"2026-10","cash":300`} {
		if !strings.Contains(body, part) {
			t.Fatalf("expected %q in %s", part, body)
		}
	}

	var decoded MetricsSnapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.CashRunwayDays.Valid || decoded.CashRunwayDays.Decimal.InexactFloat64() != 90 {
		t.Fatalf("unexpected runway after decode: %+v", decoded.CashRunwayDays)
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := map[string]bool{
		"2026-10-01":           true,
		"2026-10-01T08:30:00Z": true,
		"2026-10-01T08:30:00":  true,
		"2026-10-01 08:30:00":  true,
		"2026/10/01":           true,
		"10/01/2026":           true,
		"":                     false,
		"yesterday":            false,
		"2026-13-01":           false,
	}
	for input, ok := range cases {
		got := ParseDate(input)
		if (got != nil) != ok {
			t.Fatalf("ParseDate(%q): expected ok=%v, got %v", input, ok, got)
		}
	}
}

func TestNewLedgerRowDefaults(t *testing.T) {
	r := NewLedgerRow(map[string]string{ColumnDepartment: "   ", ColumnAmount: "n/a"})
	if r.Department != UnknownDepartment {
		t.Fatalf("expected Unknown department, got %q", r.Department)
	}
	if !r.Amount.IsZero() {
		t.Fatalf("expected zero amount, got %s", r.Amount)
	}
	if r.Type != RowTypeActual {
		t.Fatalf("expected actual type, got %s", r.Type)
	}
	if r.Date != nil {
		t.Fatalf("expected nil date")
	}
}

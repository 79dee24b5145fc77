package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBeforeInitIsNoop(t *testing.T) {
	if ingestTotal != nil {
		t.Skip("metrics already initialised in this process")
	}
	ObserveIngest("upload", ResultSuccess, 3, time.Millisecond)
	ObserveExport("pdf", ResultSuccess, time.Millisecond)
	ObserveSnapshot(1, 2, nil)
	IncAuditEvent("export_report")
}

func TestSnapshotGauges(t *testing.T) {
	Init(nil, nil)

	runway := 42.5
	ObserveSnapshot(10, 425, &runway)
	if got := testutil.ToFloat64(snapshotRunwayDays); got != 42.5 {
		t.Fatalf("expected runway 42.5, got %v", got)
	}
	if got := testutil.ToFloat64(snapshotRunwayAvailable); got != 1 {
		t.Fatalf("expected runway available, got %v", got)
	}

	ObserveSnapshot(0, 425, nil)
	if got := testutil.ToFloat64(snapshotRunwayAvailable); got != 0 {
		t.Fatalf("expected runway unavailable, got %v", got)
	}
	if got := testutil.ToFloat64(snapshotCashOnHand); got != 425 {
		t.Fatalf("expected cash on hand 425, got %v", got)
	}
}

func TestIngestCounters(t *testing.T) {
	Init(nil, nil)

	before := testutil.ToFloat64(ingestTotal.WithLabelValues("sample", ResultSuccess))
	ObserveIngest("sample", ResultSuccess, 5, time.Millisecond)
	after := testutil.ToFloat64(ingestTotal.WithLabelValues("sample", ResultSuccess))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", after-before)
	}
}

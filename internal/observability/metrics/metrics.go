package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "dashboard_"

	resultSuccess = "success"
	resultError   = "error"
	resultInvalid = "invalid"
)

var (
	registerOnce sync.Once

	ingestTotal   *prometheus.CounterVec
	ingestLatency *prometheus.HistogramVec
	ingestRows    *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	snapshotBurnDaily       prometheus.Gauge
	snapshotCashOnHand      prometheus.Gauge
	snapshotRunwayDays      prometheus.Gauge
	snapshotRunwayAvailable prometheus.Gauge

	auditEventsTotal *prometheus.CounterVec
)

// Init registers dashboard metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_total",
				Help: "Total ledger ingests by source and result",
			},
			[]string{"source", "result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ledger ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "result"},
		)
		ingestRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_rows_total",
				Help: "Total ledger rows aggregated by source",
			},
			[]string{"source"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		snapshotBurnDaily = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "snapshot_burn_rate_daily",
			Help: "Daily burn rate of the published snapshot",
		})
		snapshotCashOnHand = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "snapshot_cash_on_hand",
			Help: "Cash on hand of the published snapshot",
		})
		snapshotRunwayDays = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "snapshot_runway_days",
			Help: "Cash runway in days of the published snapshot",
		})
		snapshotRunwayAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "snapshot_runway_available",
			Help: "1 when the published snapshot has a runway, 0 otherwise",
		})

		auditEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "audit_events_total",
				Help: "Total audit events by action",
			},
			[]string{"action"},
		)

		prometheus.MustRegister(
			ingestTotal,
			ingestLatency,
			ingestRows,
			exportTotal,
			exportLatency,
			snapshotBurnDaily,
			snapshotCashOnHand,
			snapshotRunwayDays,
			snapshotRunwayAvailable,
			auditEventsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveIngest records ingest duration, result and row count.
func ObserveIngest(source, result string, rows int, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if ingestTotal != nil {
		ingestTotal.WithLabelValues(source, result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(source, result).Observe(duration.Seconds())
	}
	if ingestRows != nil && rows > 0 {
		ingestRows.WithLabelValues(source).Add(float64(rows))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveSnapshot sets the published snapshot gauges. runway is nil when absent.
func ObserveSnapshot(burnDaily, cashOnHand float64, runway *float64) {
	if snapshotBurnDaily != nil {
		snapshotBurnDaily.Set(burnDaily)
	}
	if snapshotCashOnHand != nil {
		snapshotCashOnHand.Set(cashOnHand)
	}
	if snapshotRunwayDays == nil || snapshotRunwayAvailable == nil {
		return
	}
	if runway == nil {
		snapshotRunwayDays.Set(0)
		snapshotRunwayAvailable.Set(0)
		return
	}
	snapshotRunwayDays.Set(*runway)
	snapshotRunwayAvailable.Set(1)
}

// IncAuditEvent increments the audit counter.
func IncAuditEvent(action string) {
	if action == "" {
		action = "unknown"
	}
	if auditEventsTotal != nil {
		auditEventsTotal.WithLabelValues(action).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
	ResultInvalid = resultInvalid
)

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tryognik-dashboard/internal/audit"
	"tryognik-dashboard/internal/auth"
	budgetapp "tryognik-dashboard/internal/budget/application"
	"tryognik-dashboard/internal/budget/infrastructure/ledgerfile"
	"tryognik-dashboard/internal/budget/infrastructure/memory"
	budgetinterfaces "tryognik-dashboard/internal/budget/interfaces"
	"tryognik-dashboard/internal/eventbus"
	"tryognik-dashboard/internal/observability/metrics"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flagConfigPath)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.HTTPAddr = flagAddr
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
	}
	metrics.Init(db, logger)

	app, err := newApp(ctx, cfg, logger, db)
	if err != nil {
		return err
	}
	if !app.authEnforced {
		logger.Printf("auth: AUTH_JWT_SECRET not set, roles from %s are advisory", auth.RoleHeader)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(app.handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Printf("http shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

type app struct {
	handler      http.Handler
	service      *budgetapp.DashboardService
	auditLog     *audit.MemoryLog
	authEnforced bool
}

// newApp wires the dashboard. db is optional; when set, audit entries are
// also written to Postgres and the feed is read from there.
func newApp(ctx context.Context, cfg config, logger *log.Logger, db *sql.DB) (*app, error) {
	bus := eventbus.NewInMemoryBus()
	eventbus.SubscribeTyped(bus, func(ctx context.Context, event budgetapp.SnapshotPublished) error {
		snap := event.Publication.Snapshot
		var runway *float64
		if snap.CashRunwayDays.Valid {
			days := snap.CashRunwayDays.Decimal.InexactFloat64()
			runway = &days
		}
		metrics.ObserveSnapshot(snap.BurnRateDaily.InexactFloat64(), snap.CashOnHand.InexactFloat64(), runway)
		return nil
	})
	eventbus.SubscribeTyped(bus, func(ctx context.Context, event budgetapp.SnapshotPublished) error {
		pub := event.Publication
		logger.Printf("snapshot published source=%s file=%s rows=%d hash=%s", pub.Source, pub.Filename, pub.RowCount, pub.Digest)
		return nil
	})

	service, err := budgetapp.NewDashboardService(
		memory.NewSnapshotStore(),
		ledgerfile.Decoder{},
		budgetapp.SystemClock{},
		bus,
		budgetapp.WithSamplePath(cfg.SampleCSVPath),
		budgetapp.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	memoryLog := audit.NewMemoryLog(cfg.AuditLogCapacity)
	var auditLogger audit.Logger = memoryLog
	var auditReader audit.Reader = memoryLog
	if db != nil {
		repo := audit.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("audit schema: %w", err)
		}
		auditLogger = audit.NewMultiLogger(memoryLog, repo)
		auditReader = repo
	}

	dashboardHandler, err := budgetinterfaces.NewDashboardHandler(service, auditLogger, logger, cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	exportHandler, err := budgetinterfaces.NewExportHandler(service, auditLogger, cfg.ReportTitle, cfg.ReportFilename)
	if err != nil {
		return nil, err
	}
	feedHandler, err := audit.NewFeedHandler(auditReader)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/upload/budget", dashboardHandler)
	mux.Handle("/api/v1/upload/load-sample", dashboardHandler)
	mux.Handle("/api/v1/metrics/overview", dashboardHandler)
	mux.Handle("/api/v1/export/", exportHandler)
	mux.Handle("/api/v1/audit", feedHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	return &app{
		handler:      authMiddleware.Wrap(mux),
		service:      service,
		auditLog:     memoryLog,
		authEnforced: authMiddleware.Enforced(),
	}, nil
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

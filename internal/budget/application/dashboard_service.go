package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	budget "tryognik-dashboard/internal/budget/domain"
	"tryognik-dashboard/internal/budget/sample"
	"tryognik-dashboard/internal/observability/metrics"
)

// SnapshotPublished is emitted after a new snapshot replaces the current one.
type SnapshotPublished struct {
	Publication budget.Publication
	OccurredAt  time.Time
}

// LedgerDecoder turns an uploaded ledger into rows.
type LedgerDecoder interface {
	DecodeLedger(filename, contentType string, r io.Reader) ([]budget.LedgerRow, error)
}

// SnapshotStore holds the single published snapshot.
type SnapshotStore interface {
	Publish(ctx context.Context, publication budget.Publication) error
	Current(ctx context.Context) (budget.Publication, bool, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// IngestRequest describes one ledger to aggregate and publish.
type IngestRequest struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Source      budget.Source
}

// Option configures a DashboardService.
type Option func(*DashboardService)

// WithSamplePath overrides the bundled sample ledger with a file.
func WithSamplePath(path string) Option {
	return func(s *DashboardService) {
		s.samplePath = path
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *DashboardService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DashboardService handles ledger ingest and snapshot reads.
type DashboardService struct {
	store      SnapshotStore
	decoder    LedgerDecoder
	clock      Clock
	publisher  EventPublisher
	samplePath string
	logger     *log.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(
	store SnapshotStore,
	decoder LedgerDecoder,
	clock Clock,
	publisher EventPublisher,
	opts ...Option,
) (*DashboardService, error) {
	if store == nil {
		return nil, errors.New("dashboard service: nil store")
	}
	if decoder == nil {
		return nil, errors.New("dashboard service: nil decoder")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	s := &DashboardService{
		store:     store,
		decoder:   decoder,
		clock:     clock,
		publisher: publisher,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest decodes a ledger, aggregates it and replaces the published snapshot.
// A decode failure leaves the current snapshot untouched.
func (s *DashboardService) Ingest(ctx context.Context, req IngestRequest) (budget.Publication, error) {
	start := time.Now()
	source := req.Source
	if source == "" {
		source = budget.SourceUpload
	}
	result := metrics.ResultSuccess
	rowCount := 0
	defer func() {
		metrics.ObserveIngest(string(source), result, rowCount, time.Since(start))
	}()

	if req.Reader == nil {
		result = metrics.ResultInvalid
		return budget.Publication{}, ErrNilReader
	}
	rows, err := s.decoder.DecodeLedger(req.Filename, req.ContentType, req.Reader)
	if err != nil {
		result = metrics.ResultInvalid
		return budget.Publication{}, err
	}
	rowCount = len(rows)

	now := s.clock.Now()
	snapshot := budget.Aggregate(rows, now)
	publication := budget.NewPublication(snapshot, source, req.Filename, rowCount, now)
	if err := s.store.Publish(ctx, publication); err != nil {
		result = metrics.ResultError
		return budget.Publication{}, fmt.Errorf("publish snapshot: %w", err)
	}

	if s.publisher != nil {
		event := SnapshotPublished{Publication: publication.Clone(), OccurredAt: now}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Printf("snapshot event publish failed: %v", err)
		}
	}
	return publication, nil
}

// LoadSample ingests the sample ledger.
func (s *DashboardService) LoadSample(ctx context.Context) (budget.Publication, error) {
	rc, name, err := sample.Open(s.samplePath)
	if err != nil {
		metrics.ObserveIngest(string(budget.SourceSample), metrics.ResultError, 0, 0)
		return budget.Publication{}, fmt.Errorf("%w: %v", ErrSampleUnavailable, err)
	}
	defer rc.Close()
	return s.Ingest(ctx, IngestRequest{
		Reader:   rc,
		Filename: name,
		Source:   budget.SourceSample,
	})
}

// Overview returns the current snapshot, or the empty default.
func (s *DashboardService) Overview(ctx context.Context) (budget.MetricsSnapshot, error) {
	publication, ok, err := s.store.Current(ctx)
	if err != nil {
		return budget.MetricsSnapshot{}, err
	}
	if !ok {
		return budget.EmptySnapshot(), nil
	}
	return publication.Snapshot, nil
}

// Current returns the published snapshot with its provenance.
func (s *DashboardService) Current(ctx context.Context) (budget.Publication, bool, error) {
	return s.store.Current(ctx)
}

package intervention

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	fleetmodels "convoy/internal/fleet/models"
	intmetrics "convoy/internal/intervention/metrics"
	"convoy/internal/scoring"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/requestcontext"
)

// DriverStore lists the organization's drivers.
type DriverStore interface {
	ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*fleetmodels.Driver, error)
}

// EventStore lists recent risk events across the organization.
type EventStore interface {
	ListByOrgSince(ctx context.Context, orgID domain.OrgID, since time.Time) ([]scoring.RiskEvent, error)
}

// CoachingSource reports which drivers currently have an active plan.
type CoachingSource interface {
	ActiveDriverIDs(ctx context.Context, orgID domain.OrgID) ([]domain.DriverID, error)
}

// Service builds the intervention queue from store reads plus the pure
// ranking in BuildQueue.
type Service struct {
	drivers    DriverStore
	events     EventStore
	coaching   CoachingSource
	windowDays int
	logger     *slog.Logger
	metrics    *intmetrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *intmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRecentWindowDays overrides the default 30-day recent-event window.
func WithRecentWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

func NewService(drivers DriverStore, events EventStore, coaching CoachingSource, opts ...Option) (*Service, error) {
	if drivers == nil || events == nil || coaching == nil {
		return nil, derrors.New(derrors.CodeValidation, "driver, event, and coaching sources are required")
	}

	svc := &Service{
		drivers:    drivers,
		events:     events,
		coaching:   coaching,
		windowDays: 30,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Build assembles the ranked queue for the caller's organization. The three
// reads are independent and issued concurrently.
func (s *Service) Build(ctx context.Context) (*Queue, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}

	start := time.Now()
	now := requestcontext.Now(ctx)
	since := now.AddDate(0, 0, -s.windowDays)

	var (
		drivers   []*fleetmodels.Driver
		events    []scoring.RiskEvent
		activeIDs []domain.DriverID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		drivers, err = s.drivers.ListByOrg(gctx, orgID)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to list drivers")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = s.events.ListByOrgSince(gctx, orgID, since)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to list recent risk events")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		activeIDs, err = s.coaching.ActiveDriverIDs(gctx, orgID)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to list active coaching plans")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	active := make(map[domain.DriverID]bool, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = true
	}

	items := BuildQueue(drivers, events, active, now)
	s.metrics.ObserveBuild(time.Since(start), len(items))

	s.logger.InfoContext(ctx, "intervention queue built",
		"org_id", orgID,
		"drivers", len(drivers),
		"queued", len(items),
		"window_days", s.windowDays,
	)

	return &Queue{OrgID: orgID, AsOf: now, Items: items}, nil
}

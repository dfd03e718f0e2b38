package scoring

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	fleetmodels "convoy/internal/fleet/models"
	scormetrics "convoy/internal/scoring/metrics"
	"convoy/internal/telemetry"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	audit "convoy/pkg/platform/audit"
	"convoy/pkg/platform/sentinel"
	"convoy/pkg/requestcontext"
)

var tracer = otel.Tracer("convoy/scoring")

// TelemetrySource is the external safety-score boundary. A degraded result
// carries no error; the engine substitutes the fallback.
type TelemetrySource interface {
	GetScores(ctx context.Context, start, end time.Time) telemetry.Result
}

// Service orchestrates risk scoring: concurrent evidence reads, the pure
// engine computation, and the snapshot-plus-projection write.
//
// Ingesting an event and recomputing the score are two separate, idempotent
// operations. The staleness window between them is accepted; callers that
// need a fresh score issue an explicit Score call after ingestion.
type Service struct {
	drivers   DriverStore
	events    EventStore
	snapshots SnapshotStore
	telemetry TelemetrySource

	windowDays int
	logger     *slog.Logger
	auditor    audit.Emitter
	metrics    *scormetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditEmitter(auditor audit.Emitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *scormetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEventWindowDays overrides the default 90-day scoring window.
func WithEventWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

func NewService(drivers DriverStore, events EventStore, snapshots SnapshotStore, source TelemetrySource, opts ...Option) (*Service, error) {
	if drivers == nil || events == nil || snapshots == nil {
		return nil, derrors.New(derrors.CodeValidation, "driver, event, and snapshot stores are required")
	}
	if source == nil {
		return nil, derrors.New(derrors.CodeValidation, "telemetry source is required")
	}

	svc := &Service{
		drivers:    drivers,
		events:     events,
		snapshots:  snapshots,
		telemetry:  source,
		windowDays: 90,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IngestEvent appends a risk event. It does not recompute the score; that
// is an explicit follow-up call.
func (s *Service) IngestEvent(ctx context.Context, e RiskEvent) (*RiskEvent, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	e.OrgID = orgID

	if e.ID.IsNil() {
		e.ID = domain.EventID(uuid.New())
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	// Reject events for drivers outside the organization scope.
	if _, err := s.drivers.FindByID(ctx, orgID, e.DriverID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "driver not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load driver")
	}

	if err := s.events.Append(ctx, e); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to append risk event")
	}

	s.metrics.IncrementIngested(string(e.Type))
	s.emit(ctx, audit.Event{
		OrgID:    orgID,
		DriverID: e.DriverID,
		Action:   string(audit.EventRiskEventIngested),
		Subject:  string(e.Type),
		ActorID:  requestcontext.ActorID(ctx),
	})
	return &e, nil
}

// evidence is everything a scoring run reads before computing.
type evidence struct {
	driver    *fleetmodels.Driver
	events    []RiskEvent
	telemetry telemetry.Result
}

// Score recomputes and persists the composite risk score for a driver.
// Idempotent for the same inputs and window; safe to retry after a
// persistence failure.
func (s *Service) Score(ctx context.Context, driverID domain.DriverID) (*RiskScoreSnapshot, error) {
	ctx, span := tracer.Start(ctx, "scoring.Score")
	defer span.End()

	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	if driverID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "driver id is required")
	}

	start := time.Now()
	now := requestcontext.Now(ctx)
	windowStart := now.AddDate(0, 0, -s.windowDays)

	ev, err := s.gatherEvidence(ctx, orgID, driverID, windowStart, now)
	if err != nil {
		return nil, err
	}

	localScore := LocalScore(ev.events)
	motiveScore, degraded := ResolveMotiveScore(driverID, ev.telemetry)
	composite := Composite(motiveScore, localScore)
	band := BandFor(composite)

	snap := RiskScoreSnapshot{
		ID:          domain.SnapshotID(uuid.New()),
		OrgID:       orgID,
		DriverID:    driverID,
		Composite:   composite,
		MotiveScore: motiveScore,
		LocalScore:  localScore,
		Band:        band,
		Degraded:    degraded,
		WindowStart: windowStart,
		WindowEnd:   now,
		AsOf:        now,
	}

	// Both the snapshot append and the driver projection must land; the
	// store guarantees atomicity and any failure propagates to the caller.
	if err := s.snapshots.AppendAndProject(ctx, snap); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "driver not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to persist score snapshot")
	}

	span.SetAttributes(
		attribute.Int("scoring.composite", composite),
		attribute.String("scoring.band", string(band)),
		attribute.Bool("scoring.degraded", degraded),
	)
	s.metrics.ObserveScoreLatency(time.Since(start))
	s.metrics.IncrementOutcome(string(band), degraded)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "risk score computed",
			"driver_id", driverID,
			"composite", composite,
			"motive", motiveScore,
			"local", localScore,
			"band", band,
			"degraded", degraded,
			"event_count", len(ev.events),
		)
	}

	s.emit(ctx, audit.Event{
		OrgID:    orgID,
		DriverID: driverID,
		Action:   string(audit.EventRiskScoreComputed),
		Decision: string(band),
		ActorID:  requestcontext.ActorID(ctx),
	})
	if degraded {
		s.emit(ctx, audit.Event{
			OrgID:    orgID,
			DriverID: driverID,
			Action:   string(audit.EventTelemetryDegraded),
			Reason:   "external signal unavailable, fallback score substituted",
		})
	}

	return &snap, nil
}

// gatherEvidence issues the independent reads concurrently and joins them.
// The telemetry fetch cannot fail (degraded result instead); the two store
// reads cancel each other on first failure.
func (s *Service) gatherEvidence(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID, windowStart, now time.Time) (*evidence, error) {
	g, gctx := errgroup.WithContext(ctx)
	ev := &evidence{}

	g.Go(func() error {
		start := time.Now()
		driver, err := s.drivers.FindByID(gctx, orgID, driverID)
		s.metrics.ObserveEvidenceLatency("driver", time.Since(start))
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return derrors.New(derrors.CodeNotFound, "driver not found")
			}
			return derrors.Wrap(err, derrors.CodeInternal, "failed to load driver")
		}
		ev.driver = driver
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		events, err := s.events.ListByDriverSince(gctx, orgID, driverID, windowStart)
		s.metrics.ObserveEvidenceLatency("events", time.Since(start))
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to load risk events")
		}
		ev.events = events
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		ev.telemetry = s.telemetry.GetScores(gctx, windowStart, now)
		s.metrics.ObserveEvidenceLatency("telemetry", time.Since(start))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ev, nil
}

// Latest returns the most recent snapshot for a driver.
func (s *Service) Latest(ctx context.Context, driverID domain.DriverID) (*RiskScoreSnapshot, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}

	snap, err := s.snapshots.Latest(ctx, orgID, driverID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "no score snapshot for driver")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load snapshot")
	}
	return snap, nil
}

// History returns the driver's chronological score history.
func (s *Service) History(ctx context.Context, driverID domain.DriverID) ([]ScorePoint, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}

	points, err := s.snapshots.History(ctx, orgID, driverID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load score history")
	}
	return points, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

package compliance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	compmetrics "convoy/internal/compliance/metrics"
	fleetmodels "convoy/internal/fleet/models"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/requestcontext"
)

// TaskStore persists compliance tasks.
type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*Task, error)
	UpdateStatus(ctx context.Context, orgID domain.OrgID, taskID domain.TaskID, status TaskStatus) error
}

// InspectionStore persists inspections.
type InspectionStore interface {
	Create(ctx context.Context, i *Inspection) error
	ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*Inspection, error)
	UpdateRemediation(ctx context.Context, orgID domain.OrgID, inspectionID uuid.UUID, status RemediationStatus) error
}

// DocumentStore persists filed documents.
type DocumentStore interface {
	Create(ctx context.Context, d *Document) error
	ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*Document, error)
}

// DriverStore lists the organization's drivers for credential checks.
type DriverStore interface {
	ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*fleetmodels.Driver, error)
}

// Service builds the merged compliance snapshot and owns the ingest
// operations for its three sources.
type Service struct {
	tasks       TaskStore
	inspections InspectionStore
	documents   DocumentStore
	drivers     DriverStore
	logger      *slog.Logger
	metrics     *compmetrics.Metrics
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
func WithMetrics(m *compmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(tasks TaskStore, inspections InspectionStore, documents DocumentStore, drivers DriverStore, opts ...Option) (*Service, error) {
	if tasks == nil || inspections == nil || documents == nil || drivers == nil {
		return nil, derrors.New(derrors.CodeValidation, "task, inspection, document, and driver stores are required")
	}

	svc := &Service{
		tasks:       tasks,
		inspections: inspections,
		documents:   documents,
		drivers:     drivers,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateTask records a new compliance task in open status.
func (s *Service) CreateTask(ctx context.Context, t Task) (*Task, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	now := requestcontext.Now(ctx)

	t.ID = domain.TaskID(uuid.New())
	t.OrgID = orgID
	if t.Status == "" {
		t.Status = TaskOpen
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, &t); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create compliance task")
	}
	return &t, nil
}

// RecordInspection files a new inspection finding.
func (s *Service) RecordInspection(ctx context.Context, i Inspection) (*Inspection, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}
	now := requestcontext.Now(ctx)

	i.ID = uuid.New()
	i.OrgID = orgID
	if i.RemediationStatus == "" {
		i.RemediationStatus = RemediationOpen
	}
	if i.InspectedAt.IsZero() {
		i.InspectedAt = now
	}
	i.CreatedAt = now

	if err := i.Validate(); err != nil {
		return nil, err
	}
	if err := s.inspections.Create(ctx, &i); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to record inspection")
	}
	return &i, nil
}

// FileDocument records an organization-level document.
func (s *Service) FileDocument(ctx context.Context, d Document) (*Document, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}

	d.ID = uuid.New()
	d.OrgID = orgID
	d.UploadedAt = requestcontext.Now(ctx)

	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.documents.Create(ctx, &d); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to file document")
	}
	return &d, nil
}

// Snapshot assembles the merged action queue and credential report. The
// four reads are independent and issued concurrently.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "organization context is required")
	}

	start := time.Now()
	now := requestcontext.Now(ctx)

	var (
		tasks       []*Task
		inspections []*Inspection
		documents   []*Document
		drivers     []*fleetmodels.Driver
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.ListByOrg(gctx, orgID)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to list compliance tasks")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		inspections, err = s.inspections.ListByOrg(gctx, orgID)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to list inspections")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		documents, err = s.documents.ListByOrg(gctx, orgID)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to list documents")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		drivers, err = s.drivers.ListByOrg(gctx, orgID)
		if err != nil {
			return derrors.Wrap(err, derrors.CodeInternal, "failed to list drivers")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	queue := BuildActionQueue(tasks, inspections, documents, drivers, now)
	credentials := CredentialReport(drivers, now)

	s.metrics.ObserveSnapshot(time.Since(start))
	for _, item := range queue {
		s.metrics.CountItem(item.Source)
	}

	s.logger.InfoContext(ctx, "compliance snapshot built",
		"org_id", orgID,
		"queue_items", len(queue),
		"credentials", len(credentials),
	)

	return &Snapshot{
		OrgID:       orgID,
		AsOf:        now,
		ActionQueue: queue,
		Credentials: credentials,
	}, nil
}

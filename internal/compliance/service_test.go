package compliance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/compliance"
	documentstore "convoy/internal/compliance/store/document"
	inspectionstore "convoy/internal/compliance/store/inspection"
	taskstore "convoy/internal/compliance/store/task"
	fleetmodels "convoy/internal/fleet/models"
	driverstore "convoy/internal/fleet/store/driver"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/requestcontext"
)

type complianceFixture struct {
	orgID       domain.OrgID
	tasks       *taskstore.InMemoryStore
	inspections *inspectionstore.InMemoryStore
	documents   *documentstore.InMemoryStore
	drivers     *driverstore.InMemoryStore
	svc         *compliance.Service
	now         time.Time
}

func newComplianceFixture(t *testing.T) *complianceFixture {
	t.Helper()

	f := &complianceFixture{
		orgID:       domain.OrgID(uuid.New()),
		tasks:       taskstore.NewMemory(),
		inspections: inspectionstore.NewMemory(),
		documents:   documentstore.NewMemory(),
		drivers:     driverstore.NewMemory(),
		now:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	svc, err := compliance.NewService(f.tasks, f.inspections, f.documents, f.drivers)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *complianceFixture) ctx() context.Context {
	ctx := requestcontext.WithOrgID(context.Background(), f.orgID)
	ctx = requestcontext.WithActorID(ctx, "manager-1")
	return requestcontext.WithTime(ctx, f.now)
}

func (f *complianceFixture) addDriver(t *testing.T, name string, license, medical *time.Time) *fleetmodels.Driver {
	t.Helper()
	driver, err := fleetmodels.NewDriver(domain.DriverID(uuid.New()), f.orgID, name, f.now.AddDate(0, -6, 0))
	require.NoError(t, err)
	driver.LicenseExpiry = license
	driver.MedicalCardExpiry = medical
	require.NoError(t, f.drivers.Create(context.Background(), driver))
	return driver
}

func TestCreateTask_DefaultsToOpen(t *testing.T) {
	f := newComplianceFixture(t)

	created, err := f.svc.CreateTask(f.ctx(), compliance.Task{
		Title:    "renew operating authority",
		Priority: compliance.PriorityMedium,
	})
	require.NoError(t, err)

	assert.Equal(t, compliance.TaskOpen, created.Status)
	assert.Equal(t, f.orgID, created.OrgID)
	assert.False(t, created.ID.IsNil())
	assert.Equal(t, f.now, created.CreatedAt)
}

func TestCreateTask_RejectsMissingTitle(t *testing.T) {
	f := newComplianceFixture(t)

	_, err := f.svc.CreateTask(f.ctx(), compliance.Task{Priority: compliance.PriorityLow})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeValidation))
}

func TestRecordInspection_DefaultsRemediationOpen(t *testing.T) {
	f := newComplianceFixture(t)

	created, err := f.svc.RecordInspection(f.ctx(), compliance.Inspection{Finding: "tire tread below minimum"})
	require.NoError(t, err)

	assert.Equal(t, compliance.RemediationOpen, created.RemediationStatus)
	assert.Equal(t, f.now, created.InspectedAt)
}

func TestFileDocument_StampsUpload(t *testing.T) {
	f := newComplianceFixture(t)

	expires := f.now.AddDate(1, 0, 0)
	created, err := f.svc.FileDocument(f.ctx(), compliance.Document{
		Category:  compliance.DocInsurance,
		Name:      "liability policy",
		ExpiresAt: &expires,
	})
	require.NoError(t, err)

	assert.Equal(t, f.now, created.UploadedAt)
	assert.Equal(t, f.orgID, created.OrgID)
}

func TestSnapshot_MergesAllSources(t *testing.T) {
	f := newComplianceFixture(t)
	ctx := f.ctx()

	soon := f.now.AddDate(0, 0, 5)
	_, err := f.svc.CreateTask(ctx, compliance.Task{
		Title:    "quarterly IFTA filing",
		Priority: compliance.PriorityHigh,
		DueDate:  &soon,
	})
	require.NoError(t, err)

	overdue := f.now.AddDate(0, 0, -2)
	_, err = f.svc.RecordInspection(ctx, compliance.Inspection{
		Finding:            "brake adjustment out of spec",
		RemediationDueDate: &overdue,
	})
	require.NoError(t, err)

	insuranceExpiry := f.now.AddDate(1, 0, 0)
	_, err = f.svc.FileDocument(ctx, compliance.Document{
		Category:  compliance.DocInsurance,
		Name:      "liability policy",
		ExpiresAt: &insuranceExpiry,
	})
	require.NoError(t, err)

	license := f.now.AddDate(0, 0, 14)
	f.addDriver(t, "Dana Flores", &license, nil)

	snap, err := f.svc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, f.orgID, snap.OrgID)
	assert.Equal(t, f.now, snap.AsOf)

	// Overdue inspection, dated task, registration gap, medical card gap.
	require.Len(t, snap.ActionQueue, 4)
	assert.Equal(t, compliance.SourceInspection, snap.ActionQueue[0].Source)
	assert.Equal(t, compliance.PriorityHigh, snap.ActionQueue[0].Priority)
	assert.Equal(t, compliance.SourceTask, snap.ActionQueue[1].Source)

	sources := map[string]bool{}
	for _, item := range snap.ActionQueue[2:] {
		assert.Nil(t, item.DueDate)
		sources[item.Source] = true
	}
	assert.True(t, sources[compliance.SourceDocument])
	assert.True(t, sources[compliance.SourceCredential])

	require.Len(t, snap.Credentials, 1)
	assert.Equal(t, compliance.CredentialLicense, snap.Credentials[0].Kind)
	assert.Equal(t, compliance.CredentialWarning, snap.Credentials[0].Band)
}

func TestSnapshot_EmptyOrganization(t *testing.T) {
	f := newComplianceFixture(t)

	snap, err := f.svc.Snapshot(f.ctx())
	require.NoError(t, err)

	// An organization with nothing filed still owes its baseline documents.
	require.Len(t, snap.ActionQueue, len(compliance.RequiredDocumentCategories))
	for _, item := range snap.ActionQueue {
		assert.Equal(t, compliance.SourceDocument, item.Source)
		assert.Equal(t, compliance.StatusMissing, item.Status)
	}
	assert.Empty(t, snap.Credentials)
}

func TestSnapshot_MissingOrgContext(t *testing.T) {
	f := newComplianceFixture(t)

	_, err := f.svc.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeValidation))
}

type failingTaskStore struct {
	compliance.TaskStore
}

func (failingTaskStore) ListByOrg(context.Context, domain.OrgID) ([]*compliance.Task, error) {
	return nil, errors.New("connection reset")
}

func TestSnapshot_StoreFailurePropagates(t *testing.T) {
	f := newComplianceFixture(t)

	svc, err := compliance.NewService(failingTaskStore{f.tasks}, f.inspections, f.documents, f.drivers)
	require.NoError(t, err)

	_, err = svc.Snapshot(f.ctx())
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInternal))
}

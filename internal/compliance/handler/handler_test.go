package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/compliance"
	"convoy/internal/compliance/handler"
	documentstore "convoy/internal/compliance/store/document"
	inspectionstore "convoy/internal/compliance/store/inspection"
	taskstore "convoy/internal/compliance/store/task"
	driverstore "convoy/internal/fleet/store/driver"
	"convoy/internal/platform/logger"
	"convoy/pkg/domain"
	"convoy/pkg/testutil"
)

type handlerFixture struct {
	orgID  domain.OrgID
	router chi.Router
	now    time.Time
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	svc, err := compliance.NewService(
		taskstore.NewMemory(),
		inspectionstore.NewMemory(),
		documentstore.NewMemory(),
		driverstore.NewMemory(),
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.New(svc, logger.New()).Register(router)

	return &handlerFixture{
		orgID:  domain.OrgID(uuid.New()),
		router: router,
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *handlerFixture) prepare(req *http.Request) *http.Request {
	req = testutil.WithOrgContext(req, f.orgID, "manager-1", domain.RoleManager)
	return testutil.WithRequestTime(req, f.now)
}

func TestHandleCreateTask(t *testing.T) {
	f := newHandlerFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/compliance/tasks", map[string]any{
		"title":    "quarterly IFTA filing",
		"priority": "high",
	})
	rr := testutil.DoRequest(f.router, f.prepare(req))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[compliance.Task](t, rr)
	assert.Equal(t, "quarterly IFTA filing", created.Title)
	assert.Equal(t, compliance.TaskOpen, created.Status)
}

func TestHandleCreateTask_RejectsUnknownPriority(t *testing.T) {
	f := newHandlerFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/compliance/tasks", map[string]any{
		"title":    "renew plates",
		"priority": "urgent",
	})
	rr := testutil.DoRequest(f.router, f.prepare(req))

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHandleRecordInspection(t *testing.T) {
	f := newHandlerFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/compliance/inspections", map[string]any{
		"finding": "brake adjustment out of spec",
	})
	rr := testutil.DoRequest(f.router, f.prepare(req))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[compliance.Inspection](t, rr)
	assert.Equal(t, compliance.RemediationOpen, created.RemediationStatus)
}

func TestHandleSnapshot(t *testing.T) {
	f := newHandlerFixture(t)

	task := testutil.NewJSONRequest(t, http.MethodPost, "/compliance/tasks", map[string]any{
		"title":    "renew operating authority",
		"priority": "medium",
	})
	testutil.AssertStatus(t, testutil.DoRequest(f.router, f.prepare(task)), http.StatusCreated)

	rr := testutil.DoRequest(f.router, f.prepare(testutil.NewRequest(t, http.MethodGet, "/compliance/snapshot")))

	testutil.AssertStatusOK(t, rr)
	// Two synthetic document-gap items outrank the medium task.
	snap := testutil.UnmarshalResponse[compliance.Snapshot](t, rr)
	require.Len(t, snap.ActionQueue, 3)
	assert.Equal(t, compliance.SourceDocument, snap.ActionQueue[0].Source)
	assert.Equal(t, compliance.SourceTask, snap.ActionQueue[2].Source)
}

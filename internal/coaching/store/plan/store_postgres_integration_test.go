//go:build integration

package plan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"convoy/internal/coaching"
	"convoy/internal/coaching/store/plan"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
	"convoy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *plan.PostgresStore

	orgID domain.OrgID
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = plan.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "coaching_plans"))
	s.orgID = domain.OrgID(uuid.New())
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newPlan(driverID domain.DriverID, weeks int) *coaching.CoachingPlan {
	checkIns := make([]coaching.CheckIn, 0, weeks)
	for week := 1; week <= weeks; week++ {
		checkIns = append(checkIns, coaching.CheckIn{
			Week:     week,
			Assignee: "coach-1",
			Status:   coaching.CheckInPending,
		})
	}
	return &coaching.CoachingPlan{
		ID:            domain.PlanID(uuid.New()),
		OrgID:         s.orgID,
		DriverID:      driverID,
		Type:          "defensive driving",
		Status:        coaching.PlanActive,
		StartDate:     s.now,
		DurationWeeks: weeks,
		CheckIns:      checkIns,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
}

// TestCheckInsRoundTrip verifies the JSONB check-in column preserves order,
// notes, and audit entries.
func (s *PostgresStoreSuite) TestCheckInsRoundTrip() {
	ctx := context.Background()
	driverID := domain.DriverID(uuid.New())

	p := s.newPlan(driverID, 3)
	notes := "reviewed braking telemetry"
	p.CheckIns[1].Notes = &notes
	p.CheckIns[1].Audit = []coaching.AuditEntry{
		{At: s.now, Actor: "coach-1", Field: "status", From: "pending", To: "in_progress"},
	}
	s.Require().NoError(s.store.Create(ctx, p))

	found, err := s.store.FindByID(ctx, s.orgID, p.ID)
	s.Require().NoError(err)
	s.Require().Len(found.CheckIns, 3)
	s.Equal(2, found.CheckIns[1].Week)
	s.Require().NotNil(found.CheckIns[1].Notes)
	s.Equal(notes, *found.CheckIns[1].Notes)
	s.Require().Len(found.CheckIns[1].Audit, 1)
	s.Equal("status", found.CheckIns[1].Audit[0].Field)
}

func (s *PostgresStoreSuite) TestUpdatePersistsTransition() {
	ctx := context.Background()
	p := s.newPlan(domain.DriverID(uuid.New()), 2)
	s.Require().NoError(s.store.Create(ctx, p))

	p.CheckIns[0].Status = coaching.CheckInComplete
	p.Status = coaching.PlanCompleted
	p.UpdatedAt = s.now.Add(time.Hour)
	s.Require().NoError(s.store.Update(ctx, p))

	found, err := s.store.FindByID(ctx, s.orgID, p.ID)
	s.Require().NoError(err)
	s.Equal(coaching.PlanCompleted, found.Status)
	s.Equal(coaching.CheckInComplete, found.CheckIns[0].Status)
}

func (s *PostgresStoreSuite) TestActiveDriverIDsAreDistinct() {
	ctx := context.Background()
	coached := domain.DriverID(uuid.New())
	finished := domain.DriverID(uuid.New())

	s.Require().NoError(s.store.Create(ctx, s.newPlan(coached, 2)))
	s.Require().NoError(s.store.Create(ctx, s.newPlan(coached, 4)))

	done := s.newPlan(finished, 1)
	done.Status = coaching.PlanCompleted
	s.Require().NoError(s.store.Create(ctx, done))

	active, err := s.store.ActiveDriverIDs(ctx, s.orgID)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(coached, active[0])
}

func (s *PostgresStoreSuite) TestFindMissingPlan() {
	_, err := s.store.FindByID(context.Background(), s.orgID, domain.PlanID(uuid.New()))
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

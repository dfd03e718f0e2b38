//go:build integration

package snapshot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	fleetmodels "convoy/internal/fleet/models"
	driverstore "convoy/internal/fleet/store/driver"
	"convoy/internal/scoring"
	"convoy/internal/scoring/store/snapshot"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
	"convoy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *snapshot.PostgresStore
	drivers  *driverstore.PostgresStore

	orgID    domain.OrgID
	driverID domain.DriverID
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = snapshot.NewPostgres(s.postgres.DB)
	s.drivers = driverstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "risk_score_snapshots", "drivers"))

	s.orgID = domain.OrgID(uuid.New())
	s.driverID = domain.DriverID(uuid.New())
	s.now = time.Now().UTC().Truncate(time.Microsecond)

	driver, err := fleetmodels.NewDriver(s.driverID, s.orgID, "Dana Flores", s.now.AddDate(0, -6, 0))
	s.Require().NoError(err)
	s.Require().NoError(s.drivers.Create(ctx, driver))
}

func (s *PostgresStoreSuite) newSnapshot(composite int, asOf time.Time) scoring.RiskScoreSnapshot {
	return scoring.RiskScoreSnapshot{
		ID:          domain.SnapshotID(uuid.New()),
		OrgID:       s.orgID,
		DriverID:    s.driverID,
		Composite:   composite,
		MotiveScore: composite + 2,
		LocalScore:  composite - 2,
		Band:        scoring.BandYellow,
		WindowStart: asOf.AddDate(0, 0, -90),
		WindowEnd:   asOf,
		AsOf:        asOf,
	}
}

// TestAppendProjectsDriverScore verifies the snapshot insert and the driver
// projection land together.
func (s *PostgresStoreSuite) TestAppendProjectsDriverScore() {
	ctx := context.Background()

	s.Require().NoError(s.store.AppendAndProject(ctx, s.newSnapshot(62, s.now)))

	latest, err := s.store.Latest(ctx, s.orgID, s.driverID)
	s.Require().NoError(err)
	s.Equal(62, latest.Composite)

	driver, err := s.drivers.FindByID(ctx, s.orgID, s.driverID)
	s.Require().NoError(err)
	s.Equal(62, driver.RiskScore)
}

// TestAppendUnknownDriverRollsBack verifies no orphan snapshot survives a
// failed projection.
func (s *PostgresStoreSuite) TestAppendUnknownDriverRollsBack() {
	ctx := context.Background()

	snap := s.newSnapshot(70, s.now)
	snap.DriverID = domain.DriverID(uuid.New())

	err := s.store.AppendAndProject(ctx, snap)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	_, err = s.store.Latest(ctx, s.orgID, snap.DriverID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestHistoryIsChronological() {
	ctx := context.Background()

	for i, composite := range []int{70, 64, 58} {
		asOf := s.now.AddDate(0, 0, i*7)
		s.Require().NoError(s.store.AppendAndProject(ctx, s.newSnapshot(composite, asOf)))
	}

	history, err := s.store.History(ctx, s.orgID, s.driverID)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(70, history[0].Score)
	s.Equal(58, history[2].Score)
	s.True(history[0].AsOf.Before(history[1].AsOf))

	latest, err := s.store.Latest(ctx, s.orgID, s.driverID)
	s.Require().NoError(err)
	s.Equal(58, latest.Composite)

	driver, err := s.drivers.FindByID(ctx, s.orgID, s.driverID)
	s.Require().NoError(err)
	s.Equal(58, driver.RiskScore)
}

func (s *PostgresStoreSuite) TestOrgScopeIsolation() {
	ctx := context.Background()

	s.Require().NoError(s.store.AppendAndProject(ctx, s.newSnapshot(55, s.now)))

	_, err := s.store.Latest(ctx, domain.OrgID(uuid.New()), s.driverID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

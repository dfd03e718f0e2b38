package intervention_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fleetmodels "convoy/internal/fleet/models"
	driverstore "convoy/internal/fleet/store/driver"
	"convoy/internal/intervention"
	"convoy/internal/scoring"
	eventstore "convoy/internal/scoring/store/event"
	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
	"convoy/pkg/requestcontext"
)

type staticCoaching struct {
	ids []domain.DriverID
	err error
}

func (s *staticCoaching) ActiveDriverIDs(context.Context, domain.OrgID) ([]domain.DriverID, error) {
	return s.ids, s.err
}

func TestServiceBuild(t *testing.T) {
	orgID := domain.OrgID(uuid.New())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(requestcontext.WithOrgID(context.Background(), orgID), now)

	drivers := driverstore.NewMemory()
	events := eventstore.NewMemory()
	coaching := &staticCoaching{}

	hot, err := fleetmodels.NewDriver(domain.DriverID(uuid.New()), orgID, "Hot Driver", now)
	require.NoError(t, err)
	hot.RiskScore = 85
	require.NoError(t, drivers.Create(ctx, hot))

	coached, err := fleetmodels.NewDriver(domain.DriverID(uuid.New()), orgID, "Coached Driver", now)
	require.NoError(t, err)
	coached.RiskScore = 75
	require.NoError(t, drivers.Create(ctx, coached))
	coaching.ids = []domain.DriverID{coached.ID}

	// Old event outside the recent window never counts.
	require.NoError(t, events.Append(ctx, scoring.RiskEvent{
		ID:         domain.EventID(uuid.New()),
		OrgID:      orgID,
		DriverID:   hot.ID,
		Type:       scoring.EventCitation,
		Severity:   3,
		OccurredAt: now.AddDate(0, 0, -45),
	}))

	svc, err := intervention.NewService(drivers, events, coaching)
	require.NoError(t, err)

	queue, err := svc.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, orgID, queue.OrgID)
	assert.Equal(t, now, queue.AsOf)
	require.Len(t, queue.Items, 2)
	assert.Equal(t, hot.ID, queue.Items[0].DriverID)
	assert.Equal(t, 67, queue.Items[0].PriorityScore)
	assert.Zero(t, queue.Items[0].RecentEventCount, "45-day-old event is outside the window")
	assert.Equal(t, coached.ID, queue.Items[1].DriverID)
	assert.True(t, queue.Items[1].HasActiveCoaching)
}

func TestServiceBuild_MissingOrgContext(t *testing.T) {
	svc, err := intervention.NewService(driverstore.NewMemory(), eventstore.NewMemory(), &staticCoaching{})
	require.NoError(t, err)

	_, err = svc.Build(context.Background())
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeValidation))
}

func TestServiceBuild_CoachingReadFailurePropagates(t *testing.T) {
	orgID := domain.OrgID(uuid.New())
	ctx := requestcontext.WithOrgID(context.Background(), orgID)

	svc, err := intervention.NewService(driverstore.NewMemory(), eventstore.NewMemory(),
		&staticCoaching{err: errors.New("connection reset")})
	require.NoError(t, err)

	_, err = svc.Build(ctx)
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInternal))
}

func TestNewService_RequiresSources(t *testing.T) {
	_, err := intervention.NewService(nil, eventstore.NewMemory(), &staticCoaching{})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeValidation))
}

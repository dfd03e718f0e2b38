package intervention_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fleetmodels "convoy/internal/fleet/models"
	"convoy/internal/intervention"
	"convoy/internal/scoring"
	"convoy/pkg/domain"
)

var buildNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func driver(name string, riskScore int) *fleetmodels.Driver {
	return &fleetmodels.Driver{
		ID:        domain.DriverID(uuid.New()),
		Name:      name,
		RiskScore: riskScore,
	}
}

func eventFor(d *fleetmodels.Driver, severity int, daysAgo int) scoring.RiskEvent {
	return scoring.RiskEvent{
		ID:         domain.EventID(uuid.New()),
		DriverID:   d.ID,
		Type:       scoring.EventSpeeding,
		Severity:   severity,
		OccurredAt: buildNow.AddDate(0, 0, -daysAgo),
	}
}

func TestBuildQueue_InclusionFilter(t *testing.T) {
	quiet := driver("Quiet Low", 40)
	highScore := driver("High Score", 70)
	withEvent := driver("Recent Event", 10)

	items := intervention.BuildQueue(
		[]*fleetmodels.Driver{quiet, highScore, withEvent},
		[]scoring.RiskEvent{eventFor(withEvent, 2, 3)},
		nil, buildNow,
	)

	require.Len(t, items, 2)
	ids := []domain.DriverID{items[0].DriverID, items[1].DriverID}
	assert.Contains(t, ids, highScore.ID)
	assert.Contains(t, ids, withEvent.ID)
	assert.NotContains(t, ids, quiet.ID, "low score with no events stays out")
}

func TestBuildQueue_HighScoreNoEventsNoCoaching(t *testing.T) {
	d := driver("Desk Review", 85)

	items := intervention.BuildQueue([]*fleetmodels.Driver{d}, nil, nil, buildNow)

	require.Len(t, items, 1)
	// 85*0.6 + 1*8 + 0 + 0 + 8
	assert.Equal(t, 67, items[0].PriorityScore)
	assert.Equal(t, 1, items[0].MaxSeverity)
	assert.Zero(t, items[0].RecentEventCount)
	assert.Nil(t, items[0].LatestEventAt)
	assert.False(t, items[0].HasActiveCoaching)
	assert.Equal(t, intervention.ActionAssignCoaching, items[0].RecommendedAction)
}

func TestBuildQueue_ActiveCoachingLowersPriority(t *testing.T) {
	coached := driver("Coached", 85)
	uncoached := driver("Uncoached", 85)

	items := intervention.BuildQueue(
		[]*fleetmodels.Driver{coached, uncoached},
		nil,
		map[domain.DriverID]bool{coached.ID: true},
		buildNow,
	)

	require.Len(t, items, 2)
	assert.Equal(t, uncoached.ID, items[0].DriverID)
	assert.Equal(t, 67, items[0].PriorityScore)
	assert.Equal(t, coached.ID, items[1].DriverID)
	assert.Equal(t, 51, items[1].PriorityScore, "coaching flips the +8 to -8")
	assert.Equal(t, intervention.ActionReviewCheckIns, items[1].RecommendedAction)
}

func TestBuildQueue_AgeBonusTiers(t *testing.T) {
	cases := []struct {
		name    string
		daysAgo int
		bonus   int
	}{
		{"within a week", 3, 10},
		{"within two weeks", 10, 5},
		{"within a month", 20, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := driver("Bonus", 50)
			items := intervention.BuildQueue(
				[]*fleetmodels.Driver{d},
				[]scoring.RiskEvent{eventFor(d, 1, tc.daysAgo)},
				nil, buildNow,
			)
			require.Len(t, items, 1)
			// 50*0.6 + 1*8 + 1*3 + bonus + 8
			assert.Equal(t, 49+tc.bonus, items[0].PriorityScore)
		})
	}
}

func TestBuildQueue_EventCountBoostCapped(t *testing.T) {
	d := driver("Busy", 50)
	events := make([]scoring.RiskEvent, 0, 10)
	for i := 0; i < 10; i++ {
		events = append(events, eventFor(d, 1, 2))
	}

	items := intervention.BuildQueue([]*fleetmodels.Driver{d}, events, nil, buildNow)

	require.Len(t, items, 1)
	// 50*0.6 + 1*8 + min(20, 30) + 10 + 8
	assert.Equal(t, 76, items[0].PriorityScore)
	assert.Equal(t, 10, items[0].RecentEventCount)
}

func TestBuildQueue_UsesMaxSeverityAndLatestEvent(t *testing.T) {
	d := driver("Mixed", 50)
	older := eventFor(d, 5, 25)
	newer := eventFor(d, 2, 2)

	items := intervention.BuildQueue(
		[]*fleetmodels.Driver{d},
		[]scoring.RiskEvent{older, newer},
		nil, buildNow,
	)

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].MaxSeverity)
	require.NotNil(t, items[0].LatestEventAt)
	assert.Equal(t, newer.OccurredAt, *items[0].LatestEventAt)
	// 50*0.6 + 5*8 + 2*3 + 10 + 8
	assert.Equal(t, 94, items[0].PriorityScore)
}

func TestBuildQueue_StableSortOnTies(t *testing.T) {
	first := driver("Alpha", 80)
	second := driver("Beta", 80)
	third := driver("Gamma", 80)

	items := intervention.BuildQueue(
		[]*fleetmodels.Driver{first, second, third},
		nil, nil, buildNow,
	)

	require.Len(t, items, 3)
	assert.Equal(t, first.ID, items[0].DriverID)
	assert.Equal(t, second.ID, items[1].DriverID)
	assert.Equal(t, third.ID, items[2].DriverID)
}

func TestBuildQueue_SortsDescendingByPriority(t *testing.T) {
	low := driver("Low", 70)
	high := driver("High", 95)

	items := intervention.BuildQueue([]*fleetmodels.Driver{low, high}, nil, nil, buildNow)

	require.Len(t, items, 2)
	assert.Equal(t, high.ID, items[0].DriverID)
	assert.Greater(t, items[0].PriorityScore, items[1].PriorityScore)
}

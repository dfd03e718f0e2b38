package coaching_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/coaching"
	"convoy/internal/scoring"
)

var evalNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func planStarting(start time.Time, weeks int) *coaching.CoachingPlan {
	return &coaching.CoachingPlan{StartDate: start, DurationWeeks: weeks}
}

func point(score int, daysAfter time.Time, days int) scoring.ScorePoint {
	return scoring.ScorePoint{Score: score, AsOf: daysAfter.AddDate(0, 0, days)}
}

func TestEvaluateOutcome_EmptyHistory(t *testing.T) {
	out := coaching.EvaluateOutcome(planStarting(evalNow, 4), nil, evalNow)

	assert.Equal(t, coaching.TrendInsufficientData, out.Trend)
	assert.Nil(t, out.BaselineScore)
	assert.Nil(t, out.LatestScore)
	assert.Nil(t, out.Delta)
	assert.NotEmpty(t, out.Summary)
}

func TestEvaluateOutcome_Improved(t *testing.T) {
	start := evalNow.AddDate(0, 0, -60)
	plan := planStarting(start, 4)
	history := []scoring.ScorePoint{
		point(80, start, 1),
		point(70, start, 14),
		point(55, start, 27),
	}

	out := coaching.EvaluateOutcome(plan, history, evalNow)

	assert.Equal(t, coaching.TrendImproved, out.Trend)
	require.NotNil(t, out.BaselineScore)
	assert.Equal(t, 80, *out.BaselineScore)
	require.NotNil(t, out.LatestScore)
	assert.Equal(t, 55, *out.LatestScore)
	require.NotNil(t, out.Delta)
	assert.Equal(t, -25, *out.Delta)
	assert.Contains(t, out.Summary, "improved")
	assert.Contains(t, out.Summary, "down 25")
}

func TestEvaluateOutcome_Worsened(t *testing.T) {
	start := evalNow.AddDate(0, 0, -30)
	history := []scoring.ScorePoint{
		point(40, start, 0),
		point(62, start, 20),
	}

	out := coaching.EvaluateOutcome(planStarting(start, 4), history, evalNow)

	assert.Equal(t, coaching.TrendWorsened, out.Trend)
	assert.Equal(t, 22, *out.Delta)
	assert.Contains(t, out.Summary, "worsened")
}

func TestEvaluateOutcome_Unchanged(t *testing.T) {
	start := evalNow.AddDate(0, 0, -30)
	history := []scoring.ScorePoint{
		point(50, start, 0),
		point(50, start, 21),
	}

	out := coaching.EvaluateOutcome(planStarting(start, 4), history, evalNow)

	assert.Equal(t, coaching.TrendUnchanged, out.Trend)
	assert.Contains(t, out.Summary, "unchanged at 50")
}

func TestEvaluateOutcome_BaselineFallsBackToNearestBefore(t *testing.T) {
	start := evalNow.AddDate(0, 0, -10)
	// All history predates the plan start.
	history := []scoring.ScorePoint{
		point(90, start, -40),
		point(72, start, -5),
	}

	out := coaching.EvaluateOutcome(planStarting(start, 2), history, evalNow)

	require.NotNil(t, out.BaselineScore)
	assert.Equal(t, 72, *out.BaselineScore, "nearest point before the start wins")
	assert.Equal(t, 72, *out.LatestScore)
	assert.Equal(t, coaching.TrendUnchanged, out.Trend)
}

func TestEvaluateOutcome_LatestBoundedByPlanEnd(t *testing.T) {
	start := evalNow.AddDate(0, 0, -60)
	plan := planStarting(start, 2) // ends 14 days after start
	history := []scoring.ScorePoint{
		point(80, start, 0),
		point(60, start, 10),
		point(95, start, 40), // after plan end; must not count
	}

	out := coaching.EvaluateOutcome(plan, history, evalNow)

	assert.Equal(t, 60, *out.LatestScore)
	assert.Equal(t, coaching.TrendImproved, out.Trend)
}

func TestEvaluateOutcome_DueDateOverridesDuration(t *testing.T) {
	start := evalNow.AddDate(0, 0, -60)
	due := start.AddDate(0, 0, 5)
	plan := &coaching.CoachingPlan{StartDate: start, DurationWeeks: 8, DueDate: &due}
	history := []scoring.ScorePoint{
		point(80, start, 0),
		point(75, start, 3),
		point(20, start, 30), // beyond the explicit due date
	}

	out := coaching.EvaluateOutcome(plan, history, evalNow)

	assert.Equal(t, 75, *out.LatestScore)
}

func TestEvaluateOutcome_AllPointsAfterPlanEnd(t *testing.T) {
	start := evalNow.AddDate(0, 0, -60)
	plan := planStarting(start, 1)
	history := []scoring.ScorePoint{
		point(70, start, 30),
		point(66, start, 45),
	}

	out := coaching.EvaluateOutcome(plan, history, evalNow)

	assert.Equal(t, 70, *out.BaselineScore)
	assert.Equal(t, 66, *out.LatestScore, "most recent overall when nothing precedes plan end")
	assert.Equal(t, coaching.TrendImproved, out.Trend)
}

package coaching

import (
	"fmt"
	"time"

	"convoy/internal/scoring"
)

// Trend classifies a plan's effect on the driver's risk score. Lower risk
// is better, so a negative delta means improvement.
type Trend string

const (
	TrendImproved         Trend = "improved"
	TrendWorsened         Trend = "worsened"
	TrendUnchanged        Trend = "unchanged"
	TrendInsufficientData Trend = "insufficient_data"
)

// Outcome is the evaluated result of a coaching plan.
type Outcome struct {
	Trend         Trend  `json:"trend"`
	BaselineScore *int   `json:"baseline_score,omitempty"`
	LatestScore   *int   `json:"latest_score,omitempty"`
	Delta         *int   `json:"delta,omitempty"`
	Summary       string `json:"summary"`
}

// EvaluateOutcome measures whether the driver's risk trend improved over
// the plan window. History must be in chronological order.
//
// Baseline is the first point at or after the plan start, else the nearest
// point before it, else the earliest. Latest is the nearest point at or
// before the plan end, else the most recent overall.
func EvaluateOutcome(plan *CoachingPlan, history []scoring.ScorePoint, now time.Time) Outcome {
	if len(history) == 0 {
		return Outcome{
			Trend:   TrendInsufficientData,
			Summary: "no score history recorded for this driver",
		}
	}

	planEnd := plan.End(now)

	baseline := history[0]
	found := false
	for _, p := range history {
		if !p.AsOf.Before(plan.StartDate) {
			baseline = p
			found = true
			break
		}
	}
	if !found {
		// All points predate the start; take the nearest one before it.
		baseline = history[len(history)-1]
	}

	latest := history[len(history)-1]
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].AsOf.After(planEnd) {
			latest = history[i]
			break
		}
	}

	delta := latest.Score - baseline.Score
	trend := TrendUnchanged
	switch {
	case delta < 0:
		trend = TrendImproved
	case delta > 0:
		trend = TrendWorsened
	}

	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	var summary string
	switch trend {
	case TrendImproved:
		summary = fmt.Sprintf("risk score improved from %d to %d (down %d points)", baseline.Score, latest.Score, magnitude)
	case TrendWorsened:
		summary = fmt.Sprintf("risk score worsened from %d to %d (up %d points)", baseline.Score, latest.Score, magnitude)
	default:
		summary = fmt.Sprintf("risk score unchanged at %d", latest.Score)
	}

	b, l, d := baseline.Score, latest.Score, delta
	return Outcome{
		Trend:         trend,
		BaselineScore: &b,
		LatestScore:   &l,
		Delta:         &d,
		Summary:       summary,
	}
}

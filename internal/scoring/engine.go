package scoring

import (
	"math"

	"convoy/internal/telemetry"
	"convoy/pkg/domain"
)

// Pure scoring math. No I/O, no side effects; the service owns reads,
// persistence, and the computation sits between them.

const (
	// localBase anchors the local score so a clean record still carries
	// weight in the blend.
	localBase = 20

	// fallbackMotiveScore substitutes for the external signal when the
	// provider is degraded or has no entry for the driver.
	fallbackMotiveScore = 60

	// Blend weights: external signal dominates but local history always
	// contributes.
	motiveWeight = 0.6
	localWeight  = 0.4

	bandRedFloor    = 80
	bandYellowFloor = 50
)

// typeWeights are the per-event-type score deltas. Unknown types use
// defaultTypeWeight.
var typeWeights = map[EventType]int{
	EventSpeeding:     8,
	EventHardBraking:  6,
	EventHOSViolation: 7,
	EventAccident:     15,
	EventCitation:     5,
}

const defaultTypeWeight = 5

// LocalScore folds the driver's windowed event history into a 0-100 score.
// Each event contributes its explicit delta override when present, otherwise
// typeWeight * clamp(severity, 1, 5). Saturates at 100.
func LocalScore(events []RiskEvent) int {
	total := localBase
	for _, e := range events {
		total += eventDelta(e)
	}
	return clamp(total, 0, 100)
}

func eventDelta(e RiskEvent) int {
	if e.DeltaOverride != nil {
		return *e.DeltaOverride
	}
	weight, ok := typeWeights[e.Type]
	if !ok {
		weight = defaultTypeWeight
	}
	return weight * clamp(e.Severity, 1, 5)
}

// ResolveMotiveScore picks the external score for a driver: the matching
// entry if present, else the first entry with a numeric score, else the
// fixed fallback. The second return reports whether the fallback was used,
// which is recorded on the snapshot as Degraded.
func ResolveMotiveScore(driverID domain.DriverID, result telemetry.Result) (int, bool) {
	if result.Degraded {
		return fallbackMotiveScore, true
	}
	for _, s := range result.Scores {
		if s.DriverID == driverID && s.Score != nil {
			return clampFloat(*s.Score), false
		}
	}
	for _, s := range result.Scores {
		if s.Score != nil {
			return clampFloat(*s.Score), false
		}
	}
	return fallbackMotiveScore, true
}

// Composite blends the external and local scores per the fixed weights.
func Composite(motiveScore, localScore int) int {
	blended := motiveWeight*float64(motiveScore) + localWeight*float64(localScore)
	return clamp(int(math.Round(blended)), 0, 100)
}

// BandFor classifies a composite score.
func BandFor(score int) Band {
	switch {
	case score >= bandRedFloor:
		return BandRed
	case score >= bandYellowFloor:
		return BandYellow
	default:
		return BandGreen
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v float64) int {
	return clamp(int(math.Round(v)), 0, 100)
}

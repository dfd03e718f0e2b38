package intervention

import (
	"math"
	"sort"
	"time"

	fleetmodels "convoy/internal/fleet/models"
	"convoy/internal/scoring"
	"convoy/pkg/domain"
)

// Ranking weights. Risk score dominates; event recency and volume nudge,
// and an active coaching plan lowers urgency because the driver is already
// being handled.
const (
	riskScoreWeight  = 0.6
	severityWeight   = 8
	eventCountWeight = 3
	eventCountCap    = 20
	coachingAdjust   = 8
	defaultSeverity  = 1
)

func ageBonus(latest time.Time, now time.Time) int {
	age := now.Sub(latest)
	switch {
	case age <= 7*24*time.Hour:
		return 10
	case age <= 14*24*time.Hour:
		return 5
	case age <= 30*24*time.Hour:
		return 2
	default:
		return 0
	}
}

// BuildQueue ranks drivers needing attention. Pure: all reads happen before
// the call. Drivers enter the queue when they have recent events or a risk
// score of 70 or above. Ties on priority preserve the input driver order.
func BuildQueue(drivers []*fleetmodels.Driver, recentEvents []scoring.RiskEvent, activeCoaching map[domain.DriverID]bool, now time.Time) []QueueItem {
	byDriver := make(map[domain.DriverID][]scoring.RiskEvent, len(drivers))
	for _, e := range recentEvents {
		byDriver[e.DriverID] = append(byDriver[e.DriverID], e)
	}

	items := make([]QueueItem, 0, len(drivers))
	for _, d := range drivers {
		events := byDriver[d.ID]
		if len(events) == 0 && d.RiskScore < 70 {
			continue
		}

		maxSeverity := defaultSeverity
		var latest time.Time
		for _, e := range events {
			if e.Severity > maxSeverity {
				maxSeverity = e.Severity
			}
			if e.OccurredAt.After(latest) {
				latest = e.OccurredAt
			}
		}

		score := float64(d.RiskScore)*riskScoreWeight + float64(maxSeverity)*severityWeight
		countBoost := len(events) * eventCountWeight
		if countBoost > eventCountCap {
			countBoost = eventCountCap
		}
		score += float64(countBoost)
		if !latest.IsZero() {
			score += float64(ageBonus(latest, now))
		}

		coached := activeCoaching[d.ID]
		if coached {
			score -= coachingAdjust
		} else {
			score += coachingAdjust
		}

		item := QueueItem{
			DriverID:          d.ID,
			DriverName:        d.Name,
			RiskScore:         d.RiskScore,
			PriorityScore:     int(math.Round(score)),
			RecentEventCount:  len(events),
			MaxSeverity:       maxSeverity,
			HasActiveCoaching: coached,
			RecommendedAction: ActionAssignCoaching,
		}
		if coached {
			item.RecommendedAction = ActionReviewCheckIns
		}
		if !latest.IsZero() {
			t := latest
			item.LatestEventAt = &t
		}
		items = append(items, item)
	}

	// Stable so equal priorities keep the caller's driver order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PriorityScore > items[j].PriorityScore
	})
	return items
}

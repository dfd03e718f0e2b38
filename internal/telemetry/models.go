package telemetry

import "convoy/pkg/domain"

// DriverScore is one per-driver safety score from the external provider.
// Score is a pointer because the provider can return entries without a
// numeric score (driver not yet rated).
type DriverScore struct {
	DriverID domain.DriverID `json:"driver_id"`
	Score    *float64        `json:"score"`
}

// Result is the outcome of a score fetch. Degraded means the provider was
// unreachable or returned an error; callers must treat an empty or degraded
// result as "no external signal", never as a failure.
type Result struct {
	Scores   []DriverScore
	Degraded bool
}

package pulse

import "pulse.app/engine/internal/domain"

// TrendDeadzone is the score delta that must be exceeded before a trend
// flips to up or down. It absorbs rounding noise from the score calculator
// so the trend doesn't flap between directions day to day.
const TrendDeadzone = 3

// ClassifyTrend compares the current score against the most recent prior
// score. A trend needs two points: with no previous score it is stable.
// Deltas of exactly ±TrendDeadzone are inside the deadzone.
func ClassifyTrend(current domain.Score, previous *domain.Score) domain.Trend {
	if previous == nil {
		return domain.TrendStable
	}
	delta := int(current) - int(*previous)
	switch {
	case delta > TrendDeadzone:
		return domain.TrendUp
	case delta < -TrendDeadzone:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}

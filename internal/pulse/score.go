// Package pulse holds the deterministic scoring pipeline: score calculator,
// trend classifier, friction detector, note themes and the rule-based
// narrative generator. Everything here is pure — no I/O, no clock, no
// randomness — so the fallback beneath the remote narrative path is
// trustworthy by construction.
package pulse

import (
	"math"

	"pulse.app/engine/internal/domain"
)

const (
	baselineScore = 50

	// Weight is considered stable when it moved less than this against the
	// nearest earlier entry.
	weightStableTolerance = 0.5
	weightStableBonus     = 3
)

// ComputeScore maps one entry (plus recent history, newest first) to a
// bounded score. Absent sub-signals contribute zero: missing data is
// neutral, never penalized. The weight-stability bonus is the only place
// history beyond the current entry is consulted.
func ComputeScore(entry domain.LogEntry, recent []domain.LogEntry) domain.Score {
	if entry.Block == domain.BlockWork {
		return workScore(entry)
	}
	return signalScore(entry, recent)
}

func signalScore(entry domain.LogEntry, recent []domain.LogEntry) domain.Score {
	score := float64(baselineScore)

	// Sleep duration has no natural midpoint, so it contributes in bands:
	// a reward band, a tolerant band, and a penalty outside both.
	if entry.SleepHours != nil {
		h := *entry.SleepHours
		switch {
		case h >= 7 && h <= 9:
			score += 12
		case h >= 6 && h < 10:
			score += 4
		default:
			score -= 8
		}
	}

	// Rated signals contribute a signed delta scaled by distance from the
	// neutral midpoint of their 1-5 scale.
	if entry.SleepQuality != nil {
		score += float64(*entry.SleepQuality-3) * 4
	}
	if entry.Energy != nil {
		score += float64(*entry.Energy-3) * 6
	}
	if entry.Mood != nil {
		score += float64(*entry.Mood-3) * 6
	}
	if entry.Hydration != nil {
		score += float64(*entry.Hydration-3) * 4
	}
	if entry.Stress != nil {
		score -= float64(*entry.Stress-3) * 5
	}

	if entry.Weight != nil && len(recent) >= 1 {
		if prev := nearestEarlier(entry.Date, recent); prev != nil && prev.Weight != nil {
			if math.Abs(*prev.Weight-*entry.Weight) < weightStableTolerance {
				score += weightStableBonus
			}
		}
	}

	return domain.ClampScore(score)
}

// workScore maps the six 1-5 work-day metrics to 0-100 via their average.
// Distractions and interruptions count inverted: more of them, lower score.
// Absent metrics default to the scale midpoint.
func workScore(entry domain.LogEntry) domain.Score {
	sum := float64(ratingOr(entry.EnergyStart, 3) +
		ratingOr(entry.EnergyEnd, 3) +
		ratingOr(entry.TaskCompletion, 3) +
		ratingOr(entry.DeskComfort, 3) +
		(6 - ratingOr(entry.Distractions, 3)) +
		(6 - ratingOr(entry.Interruptions, 3)))
	avg := sum / 6
	return domain.ClampScore((avg - 1) / 4 * 100)
}

// nearestEarlier returns the most recent entry strictly before date.
// recent is ordered newest first.
func nearestEarlier(date domain.Date, recent []domain.LogEntry) *domain.LogEntry {
	for i := range recent {
		if recent[i].Date.Before(date) {
			return &recent[i]
		}
	}
	return nil
}

func ratingOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

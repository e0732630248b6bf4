package pulse

import "pulse.app/engine/internal/domain"

// DetectFriction flags which sub-signals of the entry are outside their
// healthy range. Flags are independent, unranked and not mutually
// exclusive; ranking happens downstream in narrative generation. An absent
// sub-signal can never trigger its flag.
func DetectFriction(entry domain.LogEntry) []domain.FrictionFlag {
	var flags []domain.FrictionFlag
	add := func(f domain.FrictionFlag) {
		for _, existing := range flags {
			if existing == f {
				return
			}
		}
		flags = append(flags, f)
	}

	if entry.SleepHours != nil && (*entry.SleepHours < 6 || *entry.SleepHours > 9) {
		add(domain.FrictionSleep)
	}
	if entry.SleepQuality != nil && *entry.SleepQuality < 3 {
		add(domain.FrictionSleep)
	}
	if entry.Energy != nil && *entry.Energy <= 2 {
		add(domain.FrictionEnergy)
	}
	if entry.Mood != nil && *entry.Mood <= 2 {
		add(domain.FrictionMood)
	}
	if entry.Hydration != nil && *entry.Hydration <= 2 {
		add(domain.FrictionHydration)
	}
	if entry.Stress != nil && *entry.Stress >= 4 {
		add(domain.FrictionStress)
	}

	return flags
}

// HasFlag reports set membership.
func HasFlag(flags []domain.FrictionFlag, f domain.FrictionFlag) bool {
	for _, flag := range flags {
		if flag == f {
			return true
		}
	}
	return false
}

// EffectiveFlags widens threshold-derived friction with flags implied by
// note themes (e.g. a "fatigue" theme implies energy friction even when the
// energy rating was not logged). Narrative generation and remote payloads
// work from this widened set.
func EffectiveFlags(entry domain.LogEntry, themes []Theme) []domain.FrictionFlag {
	flags := DetectFriction(entry)
	add := func(f domain.FrictionFlag) {
		if !HasFlag(flags, f) {
			flags = append(flags, f)
		}
	}
	for _, t := range themes {
		switch t {
		case ThemeSleep:
			add(domain.FrictionSleep)
		case ThemeStress:
			add(domain.FrictionStress)
		case ThemeFatigue:
			add(domain.FrictionEnergy)
		case ThemeHydration:
			add(domain.FrictionHydration)
		case ThemeMood:
			add(domain.FrictionMood)
		}
	}
	return flags
}

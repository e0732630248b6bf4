package pulse

import (
	"fmt"
	"strings"

	"pulse.app/engine/internal/domain"
)

const (
	// MaxSuggestions caps the legacy multi-suggestion path.
	MaxSuggestions = 3
	// MaxNarrativeSuggestions caps the narrative-first path: one thing to
	// try, not a list.
	MaxNarrativeSuggestions = 1
)

// frictionPrecedence breaks ties among friction flags when picking
// suggestions. Note-derived themes always outrank friction flags.
var frictionPrecedence = []domain.FrictionFlag{
	domain.FrictionSleep,
	domain.FrictionStress,
	domain.FrictionEnergy,
	domain.FrictionHydration,
	domain.FrictionMood,
}

// genericSuggestions is the always-safe floor. The generator never returns
// zero suggestions.
var genericSuggestions = []string{
	"Keep consistent sleep times when you can.",
	"Stay hydrated with small sips throughout the day.",
	"Short breaks may help keep energy steady.",
}

// Generate is the narrative-first rule-based generator: one insight, one
// causal explanation, a single suggestion. It has no error path and no I/O;
// it is the guaranteed fallback beneath the remote narrative resolver.
func Generate(entry domain.LogEntry, trend domain.Trend, flags []domain.FrictionFlag) domain.Narrative {
	themes := DetectThemes(entry.Note())
	suggestion := pickSuggestion(entry, flags, themes)
	return domain.Narrative{
		Insight:     buildInsight(entry, trend, flags, themes),
		Explanation: buildExplanation(entry, trend, flags, themes),
		Suggestions: []string{suggestion},
	}
}

// GenerateLegacy is the multi-suggestion path, capped at three. Same
// precedence rules: note themes first, then friction flags in precedence
// order, then the generic floor.
func GenerateLegacy(entry domain.LogEntry, trend domain.Trend, flags []domain.FrictionFlag) domain.Narrative {
	themes := DetectThemes(entry.Note())

	var suggestions []string
	add := func(s string) {
		for _, existing := range suggestions {
			if existing == s {
				return
			}
		}
		suggestions = append(suggestions, s)
	}

	if HasFlag(flags, domain.FrictionSleep) || hasTheme(themes, ThemeSleep) {
		add("Improve sleep consistency - aim for similar bed and wake times.")
	}
	if HasFlag(flags, domain.FrictionStress) || hasTheme(themes, ThemeStress) {
		add("Reduce load today - short breaks or lighter tasks may help.")
	}
	if HasFlag(flags, domain.FrictionEnergy) || hasTheme(themes, ThemeFatigue) {
		add("Prioritize rest or light movement instead of intense exercise.")
	}
	if HasFlag(flags, domain.FrictionHydration) || hasTheme(themes, ThemeHydration) {
		add("Increase hydration - small sips throughout the day may help.")
	}
	if HasFlag(flags, domain.FrictionMood) {
		add("A calm walk or a few minutes outdoors may support mood.")
	}
	if hasTheme(themes, ThemeRecovery) {
		add("Your inputs suggest your body may need recovery. Prioritize rest and hydration.")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, genericSuggestions...)
	}
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}

	return domain.Narrative{
		Insight:     buildInsight(entry, trend, flags, themes),
		Explanation: buildExplanation(entry, trend, flags, themes),
		Suggestions: suggestions,
	}
}

// pickSuggestion selects the single highest-priority suggestion.
// Note-derived themes outrank friction flags; situational themes (what the
// user wrote about their day) outrank symptom themes.
func pickSuggestion(entry domain.LogEntry, flags []domain.FrictionFlag, themes []Theme) string {
	switch {
	case hasTheme(themes, ThemeExercise) && hasTheme(themes, ThemePartyLate):
		return "Prioritize recovery before going out: a proper meal after training, hydration earlier in the evening, and deeper rest if sleep runs short tonight."
	case hasTheme(themes, ThemeDizzy):
		return "You mentioned feeling dizzy or lightheaded. Sip water, have a small snack if you haven't eaten, and move slowly when you stand. If it persists, consider checking in with a healthcare provider."
	case hasTheme(themes, ThemeNoAppetite):
		return "You mentioned low or no appetite. That often links to stress, sleep, or digestion. Try lighter meals when you notice a small window of hunger - no pressure."
	case hasTheme(themes, ThemeHunger):
		return "You mentioned appetite or hunger. This often links to sleep quality and when you last ate. Try a balanced first meal with some protein and fiber."
	case hasTheme(themes, ThemeDigestion):
		return "You mentioned digestion or stomach. Smaller meals, staying hydrated, and reducing stress may help. Avoid eating late if you notice bloating."
	case hasTheme(themes, ThemeStressSleep):
		return "Reduce mental load before bed rather than trying to extend sleep. Timing of wind-down may matter more than duration."
	case hasTheme(themes, ThemeStress) || hasTheme(themes, ThemeDeadline):
		return "If you try one thing today: short breaks or lighter tasks. Notice how it affects sleep and digestion."
	case hasTheme(themes, ThemeFatigue):
		return "Prioritize rest or light movement instead of intense exercise, and notice how energy responds."
	case hasTheme(themes, ThemeRecovery):
		return "Your notes suggest your body may need recovery. Prioritize rest, hydration, and lighter activity."
	case hasTheme(themes, ThemeSleep):
		return "Try similar bed and wake times for the next few nights; notice how energy and appetite respond."
	case hasTheme(themes, ThemeExercise):
		return "Notice whether a proper meal and hydration after training change how you feel later. Recovery inputs matter as much as the workout."
	case hasTheme(themes, ThemePartyLate):
		return "Hydrate earlier in the evening and notice how it affects tomorrow. If sleep is shorter, wind down a bit before bed when you can."
	case hasTheme(themes, ThemeTravel):
		return "Focus on one lever: hydration and light movement when you can. Notice how sleep and energy respond over the next day or two."
	case hasTheme(themes, ThemeHydration):
		return "Sip water earlier in the day; notice whether afternoon energy or how you feel after meals shifts."
	case hasTheme(themes, ThemeMood):
		return "A short walk or a few minutes outdoors - sleep and stress often influence mood."
	}

	// No note theme fired: fall through to friction flags in precedence order.
	for _, f := range frictionPrecedence {
		if !HasFlag(flags, f) {
			continue
		}
		switch f {
		case domain.FrictionSleep:
			return "Try similar bed and wake times for the next few nights; notice how energy and appetite respond."
		case domain.FrictionStress:
			return "Reduce load today - short breaks or lighter tasks may help."
		case domain.FrictionEnergy:
			return "Try one short break or a few minutes of light movement today; notice whether energy in your next check-in improves."
		case domain.FrictionHydration:
			return "Sip water earlier in the day; notice whether afternoon energy shifts."
		case domain.FrictionMood:
			return "A calm walk or a few minutes outdoors may support mood."
		}
	}

	return "Pick one lever: similar sleep times, an earlier first sip of water, or one short break. Try it for a few days and notice how your next check-in feels."
}

func buildInsight(entry domain.LogEntry, trend domain.Trend, flags []domain.FrictionFlag, themes []Theme) string {
	switch {
	case hasTheme(themes, ThemeStressSleep):
		return "Evening stress seems to be disrupting your sleep, which then lowers next-day energy."
	case hasTheme(themes, ThemeExercise) && hasTheme(themes, ThemePartyLate):
		return "Training added physical load earlier and a late night will likely compress recovery. Energy tomorrow is the main risk, not today."
	case hasTheme(themes, ThemeExercise):
		return "Physical load from training is the main lever today. Recovery will show up in energy and mood."
	case hasTheme(themes, ThemePartyLate):
		return "A late night will likely compress sleep. Energy and recovery tomorrow are the main levers to watch."
	case hasTheme(themes, ThemeTravel):
		return "Travel shifts sleep and routine. Energy and hydration over the next day or two will reflect how you recover."
	case hasTheme(themes, ThemeDeadline):
		return "A big day adds cognitive and often physical load. Sleep and one clear recovery lever will shape how tomorrow feels."
	case trend == domain.TrendUp:
		return "Your Pulse Score is up today - small steps are adding up."
	case trend == domain.TrendDown && len(flags) > 0:
		return fmt.Sprintf("Your signals point to mild strain around %s.", joinFlagNames(flags, 2))
	case trend == domain.TrendDown:
		return "Your Pulse Score is lower today; the suggestions below may help."
	case len(flags) > 0:
		return "Focus on one or two of the suggestions below to improve your score."
	default:
		return "Keep logging to get personalized insights."
	}
}

func buildExplanation(entry domain.LogEntry, trend domain.Trend, flags []domain.FrictionFlag, themes []Theme) string {
	if hasTheme(themes, ThemeStressSleep) {
		return "Stress and sleep quality are tightly linked in your signals. Lower sleep then reduces resilience the next day."
	}
	switch trend {
	case domain.TrendDown:
		if len(flags) > 0 {
			return fmt.Sprintf("Your Pulse Score is lower today mainly due to %s.", joinFlagNames(flags, 2))
		}
		return "Your Pulse Score is a bit lower today; small changes may help."
	case domain.TrendUp:
		return "Your Pulse Score is up - your signals suggest a better baseline today."
	default:
		return "Your Pulse Score is steady. The suggestions below may help you nudge it up."
	}
}

func joinFlagNames(flags []domain.FrictionFlag, limit int) string {
	names := make([]string, 0, limit)
	for _, f := range frictionPrecedence {
		if !HasFlag(flags, f) {
			continue
		}
		name := string(f)
		if f == domain.FrictionEnergy {
			name = "low energy"
		}
		names = append(names, name)
		if len(names) == limit {
			break
		}
	}
	if len(names) == 0 {
		return "sleep and energy"
	}
	return strings.Join(names, " and ")
}

// NoDataNarrative is the fixed narrative for a block with no entries yet.
func NoDataNarrative(block domain.Block) domain.Narrative {
	return domain.Narrative{
		Insight:     "Log your first entry to see your Pulse.",
		Explanation: "After you log your daily signals, you'll get a score and suggestions here.",
		Suggestions: []string{"Log today's entry to get started."},
	}
}

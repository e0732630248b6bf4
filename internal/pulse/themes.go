package pulse

import (
	"regexp"
	"strings"
)

// Theme is a topic detected in an entry's free-text note.
type Theme string

const (
	ThemeNoAppetite Theme = "no_appetite"
	ThemeHunger     Theme = "hunger"
	ThemeDigestion  Theme = "digestion"
	ThemeFatigue    Theme = "fatigue"
	ThemeStress     Theme = "stress"
	ThemeRecovery   Theme = "recovery"
	ThemeSleep      Theme = "sleep"
	ThemeHydration  Theme = "hydration"
	ThemeMood       Theme = "mood"
	ThemeDizzy      Theme = "dizzy"
	ThemeExercise   Theme = "exercise"
	ThemePartyLate  Theme = "party_late"
	ThemeTravel     Theme = "travel"
	ThemeDeadline   Theme = "deadline"
	// ThemeStressSleep is the compound of stress and sleep appearing
	// together: evening stress disrupting sleep is its own pattern.
	ThemeStressSleep Theme = "stress_sleep"
)

// Low-appetite phrasing is matched before hunger phrasing and suppresses
// it: "no appetite" and "hungry" imply opposite suggestions and must never
// be conflated.
var (
	noAppetiteRe = regexp.MustCompile(`\b(no appetite|low appetite|lost my appetite|lost appetite|not hungry|no hunger|reduced appetite|lack of appetite|appetite is gone|can't eat|don't want to eat|no desire to eat)\b`)
	hungerRe     = regexp.MustCompile(`\b(hungry|ravenous|starving|craving|big appetite|good appetite)\b`)
	digestionRe  = regexp.MustCompile(`\b(bloat|bloated|digestion|stomach|gut|indigestion|nausea|constipation)\b`)
	fatigueRe    = regexp.MustCompile(`\b(tired|fatigue|exhausted|drained|low energy)\b`)
	stressRe     = regexp.MustCompile(`\b(stress|stressed|overwhelm|overwhelmed|deadline|anxious)\b`)
	recoveryRe   = regexp.MustCompile(`\b(sick|unwell|headache|recovery|under the weather)\b`)
	sleepRe      = regexp.MustCompile(`\b(sleep|slept|insomnia|wake|waking|rest)\b`)
	hydrationRe  = regexp.MustCompile(`\b(dry|thirst|thirsty|water|hydrate|hydration|dehydrated)\b`)
	moodRe       = regexp.MustCompile(`\b(mood|down|sad|irritable|grumpy)\b`)
	dizzyRe      = regexp.MustCompile(`\b(dizzy|dizziness|lightheaded|light-headed|vertigo|woozy)\b`)
	exerciseRe   = regexp.MustCompile(`\b(gym|workout|training|exercise|ran|run|lift|cardio|sport)\b`)
	partyLateRe  = regexp.MustCompile(`\b(party|parties|going out|drinks|alcohol|late night|night out)\b`)
	travelRe     = regexp.MustCompile(`\b(travel|traveling|flight|flying|jet lag|trip)\b`)
	deadlineRe   = regexp.MustCompile(`\b(deadline|deadlines|big day|presentation|exam|interview)\b`)
)

// DetectThemes scans a free-text note for the fixed theme vocabulary using
// case-insensitive whole-word matching. Returns nil for an empty note.
func DetectThemes(note string) []Theme {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil
	}
	lower := strings.ToLower(note)

	var themes []Theme
	if noAppetiteRe.MatchString(lower) {
		themes = append(themes, ThemeNoAppetite)
	} else if hungerRe.MatchString(lower) {
		themes = append(themes, ThemeHunger)
	}
	if digestionRe.MatchString(lower) {
		themes = append(themes, ThemeDigestion)
	}
	if fatigueRe.MatchString(lower) {
		themes = append(themes, ThemeFatigue)
	}
	if stressRe.MatchString(lower) {
		themes = append(themes, ThemeStress)
	}
	if recoveryRe.MatchString(lower) {
		themes = append(themes, ThemeRecovery)
	}
	if sleepRe.MatchString(lower) {
		themes = append(themes, ThemeSleep)
	}
	if hydrationRe.MatchString(lower) {
		themes = append(themes, ThemeHydration)
	}
	if moodRe.MatchString(lower) {
		themes = append(themes, ThemeMood)
	}
	if dizzyRe.MatchString(lower) {
		themes = append(themes, ThemeDizzy)
	}
	if exerciseRe.MatchString(lower) {
		themes = append(themes, ThemeExercise)
	}
	if partyLateRe.MatchString(lower) {
		themes = append(themes, ThemePartyLate)
	}
	if travelRe.MatchString(lower) {
		themes = append(themes, ThemeTravel)
	}
	if deadlineRe.MatchString(lower) {
		themes = append(themes, ThemeDeadline)
	}
	if hasTheme(themes, ThemeStress) && hasTheme(themes, ThemeSleep) {
		themes = append(themes, ThemeStressSleep)
	}
	return themes
}

func hasTheme(themes []Theme, t Theme) bool {
	for _, theme := range themes {
		if theme == t {
			return true
		}
	}
	return false
}

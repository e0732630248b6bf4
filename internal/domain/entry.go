package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar-day key format for log entries.
const DateLayout = "2006-01-02"

// MaxNoteLength bounds the free-text note attached to an entry.
const MaxNoteLength = 500

// Date is a calendar day in "YYYY-MM-DD" form. The string encoding sorts
// chronologically, which the recency ordering in the entry store relies on.
type Date string

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s as a calendar day.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date(s), nil
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d < other
}

// Time returns the day at midnight UTC.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// LogEntry is one day's self-report for a single block. All sub-signals are
// optional: an absent signal is neutral for scoring and can never trigger a
// friction flag. At most one entry exists per (user, block, date); a later
// write for the same date replaces the earlier one.
type LogEntry struct {
	ID     int64 `json:"id,string"`
	UserID int64 `json:"user_id,string"`
	Block  Block `json:"block"`
	Date   Date  `json:"date"`

	// Body signals. Ratings are on a 1-5 scale, sleep in hours, weight in
	// whatever unit the user logs consistently.
	SleepHours   *float64 `json:"sleep_hours,omitempty"`
	SleepQuality *int     `json:"sleep_quality,omitempty"`
	Energy       *int     `json:"energy,omitempty"`
	Mood         *int     `json:"mood,omitempty"`
	Hydration    *int     `json:"hydration,omitempty"`
	Stress       *int     `json:"stress,omitempty"`
	Appetite     *int     `json:"appetite,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`

	// Work-routine metrics. Ratings are on a 1-5 scale.
	WorkHours      *float64 `json:"work_hours,omitempty"`
	FocusSessions  *int     `json:"focus_sessions,omitempty"`
	Breaks         *int     `json:"breaks,omitempty"`
	EnergyStart    *int     `json:"energy_start,omitempty"`
	EnergyEnd      *int     `json:"energy_end,omitempty"`
	TaskCompletion *int     `json:"task_completion,omitempty"`
	DeskComfort    *int     `json:"desk_comfort,omitempty"`
	Distractions   *int     `json:"distractions,omitempty"`
	Interruptions  *int     `json:"interruptions,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitize coerces out-of-range values to absent rather than rejecting the
// entry. The scoring pipeline assumes sanitized input, so this runs at the
// boundary where entries are constructed.
func (e *LogEntry) Sanitize() {
	e.SleepHours = validHours(e.SleepHours, 24)
	e.WorkHours = validHours(e.WorkHours, 24)
	e.SleepQuality = validRating(e.SleepQuality)
	e.Energy = validRating(e.Energy)
	e.Mood = validRating(e.Mood)
	e.Hydration = validRating(e.Hydration)
	e.Stress = validRating(e.Stress)
	e.Appetite = validRating(e.Appetite)
	e.EnergyStart = validRating(e.EnergyStart)
	e.EnergyEnd = validRating(e.EnergyEnd)
	e.TaskCompletion = validRating(e.TaskCompletion)
	e.DeskComfort = validRating(e.DeskComfort)
	e.Distractions = validRating(e.Distractions)
	e.Interruptions = validRating(e.Interruptions)
	e.FocusSessions = validCount(e.FocusSessions)
	e.Breaks = validCount(e.Breaks)

	if e.Weight != nil && *e.Weight <= 0 {
		e.Weight = nil
	}

	if e.Notes != nil {
		trimmed := strings.TrimSpace(*e.Notes)
		if trimmed == "" {
			e.Notes = nil
		} else {
			if len(trimmed) > MaxNoteLength {
				// Cut on a rune boundary so a multi-byte character at the
				// cap never leaves invalid UTF-8 behind.
				cut := MaxNoteLength
				for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
					cut--
				}
				trimmed = trimmed[:cut]
			}
			e.Notes = &trimmed
		}
	}
}

// Note returns the trimmed free-text note, or "" when absent.
func (e *LogEntry) Note() string {
	if e.Notes == nil {
		return ""
	}
	return *e.Notes
}

func validRating(v *int) *int {
	if v == nil || *v < 1 || *v > 5 {
		return nil
	}
	return v
}

func validCount(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

func validHours(v *float64, max float64) *float64 {
	if v == nil || *v < 0 || *v > max {
		return nil
	}
	return v
}

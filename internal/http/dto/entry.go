package dto

import (
	"pulse.app/engine/internal/domain"
)

// LogEntryRequest is the daily check-in payload. Everything beyond block
// and date is optional; out-of-range values are coerced to absent rather
// than rejected, so binding stays permissive on ranges.
type LogEntryRequest struct {
	Block string `json:"block" binding:"required,oneof=body work nutrition"`
	Date  string `json:"date" binding:"required,datetime=2006-01-02"`

	SleepHours   *float64 `json:"sleep_hours,omitempty"`
	SleepQuality *int     `json:"sleep_quality,omitempty"`
	Energy       *int     `json:"energy,omitempty"`
	Mood         *int     `json:"mood,omitempty"`
	Hydration    *int     `json:"hydration,omitempty"`
	Stress       *int     `json:"stress,omitempty"`
	Appetite     *int     `json:"appetite,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`

	WorkHours      *float64 `json:"work_hours,omitempty"`
	FocusSessions  *int     `json:"focus_sessions,omitempty"`
	Breaks         *int     `json:"breaks,omitempty"`
	EnergyStart    *int     `json:"energy_start,omitempty"`
	EnergyEnd      *int     `json:"energy_end,omitempty"`
	TaskCompletion *int     `json:"task_completion,omitempty"`
	DeskComfort    *int     `json:"desk_comfort,omitempty"`
	Distractions   *int     `json:"distractions,omitempty"`
	Interruptions  *int     `json:"interruptions,omitempty"`

	Notes *string `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// ToEntry maps the request to a domain entry for the given user. The
// service sanitizes; this is pure field carrying.
func (r LogEntryRequest) ToEntry(userID int64) *domain.LogEntry {
	return &domain.LogEntry{
		UserID: userID,
		Block:  domain.Block(r.Block),
		Date:   domain.Date(r.Date),

		SleepHours:   r.SleepHours,
		SleepQuality: r.SleepQuality,
		Energy:       r.Energy,
		Mood:         r.Mood,
		Hydration:    r.Hydration,
		Stress:       r.Stress,
		Appetite:     r.Appetite,
		Weight:       r.Weight,

		WorkHours:      r.WorkHours,
		FocusSessions:  r.FocusSessions,
		Breaks:         r.Breaks,
		EnergyStart:    r.EnergyStart,
		EnergyEnd:      r.EnergyEnd,
		TaskCompletion: r.TaskCompletion,
		DeskComfort:    r.DeskComfort,
		Distractions:   r.Distractions,
		Interruptions:  r.Interruptions,

		Notes: r.Notes,
	}
}

type LogEntryResponse struct {
	EntryID int64  `json:"entry_id,string"`
	Block   string `json:"block"`
	Date    string `json:"date"`
}

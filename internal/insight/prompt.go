package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"pulse.app/engine/internal/domain"
)

const blockSystemInstruction = `You are a wellness companion writing a short daily reflection for one life block (body, work, or nutrition).
You receive today's self-reported signals, a locally computed score and trend, any friction flags, and a few recent days for context.
Respond with JSON only, matching {"insight": string, "explanation": string, "suggestions": [string]}.
Insight: one or two sentences naming the most relevant pattern in today's signals.
Explanation: a short causal read of why today looks the way it does.
Suggestions: at most three small, concrete, low-pressure actions.
Never diagnose, never prescribe medication, never mention the score calculation itself.`

const synthesisSystemInstruction = `You are a wellness companion writing a short daily synthesis across life blocks (body, work, nutrition).
You receive per-block scores and per-block reflections for one day.
Respond with JSON only, matching {"insight": string, "explanation": string, "suggestions": [string]}.
Focus on how the blocks interact today rather than repeating each block's reflection.
Suggestions: at most three small, concrete actions. Never diagnose or prescribe.`

// blockContext is the user-message payload for a single block resolution.
// Only present signals are serialized; the model never sees placeholders
// for data the user did not log.
type blockContext struct {
	Block      string              `json:"block"`
	Date       string              `json:"date"`
	Signals    map[string]any      `json:"signals"`
	Note       string              `json:"note,omitempty"`
	Score      *domain.Score       `json:"score,omitempty"`
	Trend      domain.Trend        `json:"trend"`
	Friction   []string            `json:"friction,omitempty"`
	RecentDays []recentDaySnapshot `json:"recent_days,omitempty"`
}

type recentDaySnapshot struct {
	Date    string         `json:"date"`
	Signals map[string]any `json:"signals"`
}

func buildBlockMessage(entry domain.LogEntry, score *domain.Score, trend domain.Trend, flags []domain.FrictionFlag, history []domain.LogEntry) string {
	bc := blockContext{
		Block:   string(entry.Block),
		Date:    string(entry.Date),
		Signals: signalMap(entry),
		Note:    entry.Note(),
		Score:   score,
		Trend:   trend,
	}
	for _, f := range flags {
		bc.Friction = append(bc.Friction, string(f))
	}
	for _, h := range history {
		if h.Date == entry.Date {
			continue
		}
		bc.RecentDays = append(bc.RecentDays, recentDaySnapshot{
			Date:    string(h.Date),
			Signals: signalMap(h),
		})
		if len(bc.RecentDays) == 7 {
			break
		}
	}

	payload, err := json.Marshal(bc)
	if err != nil {
		// The struct is marshal-safe; this path exists for completeness.
		return fmt.Sprintf(`{"block":%q,"date":%q}`, entry.Block, entry.Date)
	}

	var sb strings.Builder
	sb.WriteString("Write today's reflection for this block check-in:\n")
	sb.Write(payload)
	return sb.String()
}

func buildSynthesisMessage(day domain.Date, perBlock map[domain.Block]*domain.Score, narratives map[domain.Block]domain.Narrative) string {
	type blockView struct {
		Score     *domain.Score     `json:"score"`
		Narrative *domain.Narrative `json:"narrative,omitempty"`
	}
	blocks := make(map[string]blockView)
	for _, b := range domain.AllBlocks() {
		score, hasScore := perBlock[b]
		narrative, hasNarrative := narratives[b]
		if !hasScore && !hasNarrative {
			continue
		}
		view := blockView{Score: score}
		if hasNarrative {
			view.Narrative = &narrative
		}
		blocks[string(b)] = view
	}

	payload, err := json.Marshal(map[string]any{
		"date":   string(day),
		"blocks": blocks,
	})
	if err != nil {
		return fmt.Sprintf(`{"date":%q}`, day)
	}

	var sb strings.Builder
	sb.WriteString("Write today's synthesis across these blocks:\n")
	sb.Write(payload)
	return sb.String()
}

// signalMap flattens an entry's present signals into a loggable map.
func signalMap(e domain.LogEntry) map[string]any {
	m := make(map[string]any)
	putF := func(key string, v *float64) {
		if v != nil {
			m[key] = *v
		}
	}
	putI := func(key string, v *int) {
		if v != nil {
			m[key] = *v
		}
	}

	putF("sleep_hours", e.SleepHours)
	putI("sleep_quality", e.SleepQuality)
	putI("energy", e.Energy)
	putI("mood", e.Mood)
	putI("hydration", e.Hydration)
	putI("stress", e.Stress)
	putI("appetite", e.Appetite)
	putF("weight", e.Weight)

	putF("work_hours", e.WorkHours)
	putI("focus_sessions", e.FocusSessions)
	putI("breaks", e.Breaks)
	putI("energy_start", e.EnergyStart)
	putI("energy_end", e.EnergyEnd)
	putI("task_completion", e.TaskCompletion)
	putI("desk_comfort", e.DeskComfort)
	putI("distractions", e.Distractions)
	putI("interruptions", e.Interruptions)

	return m
}

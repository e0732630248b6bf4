package domain

import "math"

// Score is a bounded Pulse indicator. Every arithmetic path clamps into
// [ScoreMin, ScoreMax] before a Score is observable by callers.
type Score int

const (
	ScoreMin Score = 0
	ScoreMax Score = 100
)

// ClampScore rounds v to the nearest integer and bounds it to [0, 100].
func ClampScore(v float64) Score {
	s := Score(math.Round(v))
	if s < ScoreMin {
		return ScoreMin
	}
	if s > ScoreMax {
		return ScoreMax
	}
	return s
}

// Trend classifies today's score against the most recent prior score.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// FrictionFlag names a sub-signal that is outside its healthy range.
type FrictionFlag string

const (
	FrictionSleep     FrictionFlag = "sleep"
	FrictionStress    FrictionFlag = "stress"
	FrictionEnergy    FrictionFlag = "energy"
	FrictionHydration FrictionFlag = "hydration"
	FrictionMood      FrictionFlag = "mood"
)

// NarrativeSource tags where a snapshot's narrative text came from.
type NarrativeSource string

const (
	// SourceRuleBased means the narrative was computed locally and a remote
	// attempt was never made.
	SourceRuleBased NarrativeSource = "rule-based"
	// SourceRemote means the remote model produced the narrative.
	SourceRemote NarrativeSource = "remote"
	// SourceRemoteFailed means a remote attempt was made and failed; the
	// narrative fields fall back to the rule-based generator.
	SourceRemoteFailed NarrativeSource = "remote-failed"
)

// Narrative is the human-readable guidance accompanying a score.
type Narrative struct {
	Insight     string   `json:"insight"`
	Explanation string   `json:"explanation"`
	Suggestions []string `json:"suggestions"`
}

// BlockSnapshot is an immutable per-block view for one day. It is
// reconstructed on every request and superseded, never patched, when new
// data arrives or a remote narrative resolves after the fact.
//
// Score and Trend are always computed locally; the remote path can only
// influence the narrative fields. A nil Score is the no-data sentinel for
// a block with zero entries in the lookback window.
type BlockSnapshot struct {
	Block       Block           `json:"block"`
	Score       *Score          `json:"score"`
	Trend       Trend           `json:"trend"`
	Narrative   Narrative       `json:"narrative"`
	Source      NarrativeSource `json:"source"`
	ErrorReason string          `json:"error_reason,omitempty"`
	AsOfDate    Date            `json:"as_of_date"`

	// Generation identifies the entry this snapshot was derived from. A
	// remote result carrying a stale generation is discarded rather than
	// applied over a snapshot built from newer data.
	Generation int64 `json:"generation,string"`
}

// HasData reports whether the block had at least one entry in the window.
func (s BlockSnapshot) HasData() bool {
	return s.Score != nil || s.Generation != 0
}

// CompositeSnapshot combines up to three block snapshots for one day.
// Transient: recomputed per view, never persisted.
type CompositeSnapshot struct {
	PerBlock    map[Block]*Score `json:"per_block"`
	Combined    *Score           `json:"combined"`
	BlockCount  int              `json:"block_count"`
	Synthesis   Narrative        `json:"synthesis"`
	Source      NarrativeSource  `json:"source"`
	ErrorReason string           `json:"error_reason,omitempty"`
	AsOfDate    Date             `json:"as_of_date"`
}

// RemoteNarrative is a narrative resolved ahead of time by the background
// worker for a specific entry generation. The snapshot builder serves it
// only while its generation still matches the entry it was computed from.
type RemoteNarrative struct {
	UserID     int64
	Block      Block
	Date       Date
	Narrative  Narrative
	Model      string
	Generation int64
}

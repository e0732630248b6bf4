// Package snapshot turns stored entries into per-block and composite Pulse
// views. Snapshots are immutable values rebuilt on every request: new data
// or a late remote narrative produces a new snapshot, never a patch.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pulse.app/engine/common/logger"
	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/insight"
	"pulse.app/engine/internal/pulse"
	"pulse.app/engine/internal/store"
)

// DefaultLookbackDays bounds how much history feeds a snapshot when the
// config doesn't say otherwise.
const DefaultLookbackDays = 14

type Builder struct {
	entries      store.EntryStore
	narratives   store.NarrativeStore
	resolver     *insight.Resolver
	lookbackDays int
}

func NewBuilder(entries store.EntryStore, narratives store.NarrativeStore, resolver *insight.Resolver, lookbackDays int) *Builder {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Builder{
		entries:      entries,
		narratives:   narratives,
		resolver:     resolver,
		lookbackDays: lookbackDays,
	}
}

// Build produces the synchronous, rule-based snapshot. Score, trend,
// friction and narrative are all computed locally; this path never waits
// on the network and is the floor every other path degrades to.
func (b *Builder) Build(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.BlockSnapshot, error) {
	window, err := b.entries.ListRecent(ctx, userID, block, date, b.lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("loading entry window: %w", err)
	}
	if len(window) == 0 {
		return noDataSnapshot(block, date), nil
	}

	// The newest entry at or before the requested day anchors the snapshot.
	entry := window[0]
	history := window[1:]

	snap := &domain.BlockSnapshot{
		Block:      block,
		Trend:      domain.TrendStable,
		Source:     domain.SourceRuleBased,
		AsOfDate:   date,
		Generation: entry.ID,
	}

	themes := pulse.DetectThemes(entry.Note())
	flags := pulse.EffectiveFlags(entry, themes)

	if block.ScoreBearing() {
		score := pulse.ComputeScore(entry, history)
		snap.Score = &score
		snap.Trend = pulse.ClassifyTrend(score, b.previousScore(entry, history))
	}

	snap.Narrative = pulse.Generate(entry, snap.Trend, flags)
	return snap, nil
}

// BuildWithRemote layers the remote narrative on top of Build. It never
// fails because of the remote path: a precomputed narrative is served when
// its generation matches, otherwise one bounded inline attempt is made, and
// any failure falls back to the rule-based narrative with the reason
// recorded. The score and trend from Build are carried through untouched.
func (b *Builder) BuildWithRemote(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.BlockSnapshot, error) {
	snap, err := b.Build(ctx, userID, block, date)
	if err != nil {
		return nil, err
	}
	if !snap.HasData() {
		return snap, nil
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(userID),
		Block:     logger.Ptr(string(block)),
		EntryDate: logger.Ptr(string(date)),
		Component: "pulse.snapshot.builder",
	})

	if !b.resolver.Configured() {
		snap.ErrorReason = insight.ReasonNotConfigured
		return snap, nil
	}

	window, err := b.entries.ListRecent(ctx, userID, block, date, b.lookbackDays)
	if err != nil || len(window) == 0 {
		// The window loaded moments ago in Build; treat a failure here as
		// the remote path being unavailable, not as a snapshot error.
		snap.Source = domain.SourceRemoteFailed
		snap.ErrorReason = insight.ReasonUnreachable
		return snap, nil
	}
	entry := window[0]
	if entry.ID != snap.Generation {
		// A newer entry landed between the two reads. Serve the rule-based
		// snapshot; the next request rebuilds from the new generation.
		return snap, nil
	}

	// Narratives are keyed by the anchor entry's own date, which may be
	// earlier than the requested day.
	if precomputed := b.precomputed(ctx, userID, block, entry.Date, snap.Generation); precomputed != nil {
		snap.Narrative = precomputed.Narrative
		snap.Source = domain.SourceRemote
		return snap, nil
	}

	themes := pulse.DetectThemes(entry.Note())
	flags := pulse.EffectiveFlags(entry, themes)
	result := b.resolver.Resolve(ctx, entry, snap.Score, snap.Trend, flags, window[1:])
	if !result.OK {
		snap.Source = domain.SourceRemoteFailed
		snap.ErrorReason = result.Reason
		return snap, nil
	}

	snap.Narrative = result.Narrative
	snap.Source = domain.SourceRemote

	b.storeResolved(ctx, userID, block, entry.Date, result, snap.Generation)
	return snap, nil
}

// previousScore computes the score of the nearest earlier entry so the
// trend compares like against like. history is newest first and excludes
// the current entry.
func (b *Builder) previousScore(entry domain.LogEntry, history []domain.LogEntry) *domain.Score {
	for i := range history {
		if !history[i].Date.Before(entry.Date) {
			continue
		}
		score := pulse.ComputeScore(history[i], history[i+1:])
		return &score
	}
	return nil
}

// precomputed returns the worker-resolved narrative if one exists for the
// exact generation this snapshot was built from. A stale generation means
// the narrative describes an entry that has since been replaced; it is
// ignored rather than served.
func (b *Builder) precomputed(ctx context.Context, userID int64, block domain.Block, date domain.Date, generation int64) *domain.RemoteNarrative {
	stored, err := b.narratives.Get(ctx, userID, block, date)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "precomputed narrative lookup failed", "error", err)
		}
		return nil
	}
	if stored.Generation != generation {
		slog.DebugContext(ctx, "discarding stale precomputed narrative",
			"stored_generation", stored.Generation,
			"current_generation", generation,
		)
		return nil
	}
	return stored
}

// storeResolved persists an inline resolution so the next view is served
// without another model call. Failures only cost the cache effect.
func (b *Builder) storeResolved(ctx context.Context, userID int64, block domain.Block, date domain.Date, result insight.Result, generation int64) {
	err := b.narratives.Upsert(ctx, &domain.RemoteNarrative{
		UserID:     userID,
		Block:      block,
		Date:       date,
		Narrative:  result.Narrative,
		Model:      result.Model,
		Generation: generation,
	})
	if err != nil {
		slog.WarnContext(ctx, "storing resolved narrative failed", "error", err)
	}
}

func noDataSnapshot(block domain.Block, date domain.Date) *domain.BlockSnapshot {
	return &domain.BlockSnapshot{
		Block:     block,
		Trend:     domain.TrendStable,
		Narrative: pulse.NoDataNarrative(block),
		Source:    domain.SourceRuleBased,
		AsOfDate:  date,
	}
}

package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pulse.app/engine/common/logger"
	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/insight"
	"pulse.app/engine/internal/pulse"
	"pulse.app/engine/internal/queue"
	"pulse.app/engine/internal/store"
)

// NarrativeProcessor pre-resolves the remote narrative for a freshly
// logged entry so the next async view is served without an inline model
// call. The resolver itself stays cache-free; the stored narrative is
// keyed by generation and discarded by readers once the entry changes.
type NarrativeProcessor struct {
	entries      store.EntryStore
	narratives   store.NarrativeStore
	resolver     *insight.Resolver
	lookbackDays int
}

func NewNarrativeProcessor(entries store.EntryStore, narratives store.NarrativeStore, resolver *insight.Resolver, lookbackDays int) *NarrativeProcessor {
	if lookbackDays <= 0 {
		lookbackDays = 14
	}
	return &NarrativeProcessor{
		entries:      entries,
		narratives:   narratives,
		resolver:     resolver,
		lookbackDays: lookbackDays,
	}
}

func (p *NarrativeProcessor) Process(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(msg.UserID),
		Block:     logger.Ptr(msg.Block),
		EntryDate: logger.Ptr(msg.Date),
		Component: "pulse.worker.processor",
	})

	if !p.resolver.Configured() {
		// Nothing to pre-resolve; the sync rule-based path covers it.
		slog.DebugContext(ctx, "remote narrative not configured, skipping")
		return nil
	}

	block := domain.Block(msg.Block)
	if !block.Valid() {
		slog.WarnContext(ctx, "dropping message with unknown block")
		return nil
	}
	date, err := domain.ParseDate(msg.Date)
	if err != nil {
		slog.WarnContext(ctx, "dropping message with invalid date", "error", err)
		return nil
	}

	window, err := p.entries.ListRecent(ctx, msg.UserID, block, date, p.lookbackDays)
	if err != nil {
		return fmt.Errorf("loading entry window: %w", err)
	}
	if len(window) == 0 || window[0].Date != date {
		slog.InfoContext(ctx, "entry no longer present, skipping")
		return nil
	}

	entry := window[0]
	if entry.ID != msg.EntryID {
		// The entry was replaced after this message was enqueued. The
		// replacement enqueued its own message; resolving this one would
		// only produce a narrative nobody will serve.
		slog.InfoContext(ctx, "entry superseded, skipping",
			"message_entry_id", msg.EntryID,
			"current_entry_id", entry.ID)
		return nil
	}

	history := window[1:]
	themes := pulse.DetectThemes(entry.Note())
	flags := pulse.EffectiveFlags(entry, themes)

	var score *domain.Score
	trend := domain.TrendStable
	if block.ScoreBearing() {
		s := pulse.ComputeScore(entry, history)
		score = &s
		trend = pulse.ClassifyTrend(s, previousScore(entry, history))
	}

	result := p.resolver.Resolve(ctx, entry, score, trend, flags, history)
	if !result.OK {
		// Transport and model failures are worth a retry; the message
		// either succeeds later or lands in the DLQ.
		return fmt.Errorf("resolving narrative: %s", result.Reason)
	}

	if err := p.narratives.Upsert(ctx, &domain.RemoteNarrative{
		UserID:     msg.UserID,
		Block:      block,
		Date:       date,
		Narrative:  result.Narrative,
		Model:      result.Model,
		Generation: entry.ID,
	}); err != nil {
		return fmt.Errorf("storing narrative: %w", err)
	}

	slog.InfoContext(ctx, "remote narrative pre-resolved",
		"model", result.Model,
		"generation", entry.ID)
	return nil
}

func previousScore(entry domain.LogEntry, history []domain.LogEntry) *domain.Score {
	for i := range history {
		if !history[i].Date.Before(entry.Date) {
			continue
		}
		score := pulse.ComputeScore(history[i], history[i+1:])
		return &score
	}
	return nil
}

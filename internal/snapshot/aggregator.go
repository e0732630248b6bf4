package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pulse.app/engine/common/logger"
	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/insight"
	"pulse.app/engine/internal/pulse"
	"pulse.app/engine/internal/store"
)

// resolveTimeout bounds the whole composite build, including per-block
// remote attempts and the synthesis call.
const resolveTimeout = 20 * time.Second

// Aggregator combines per-block snapshots into the composite daily view.
type Aggregator struct {
	builder  *Builder
	entries  store.EntryStore
	resolver *insight.Resolver
}

func NewAggregator(builder *Builder, entries store.EntryStore, resolver *insight.Resolver) *Aggregator {
	return &Aggregator{builder: builder, entries: entries, resolver: resolver}
}

// Combine folds per-block scores into one number. One score passes
// through; two average with rounding. Blocks present in the map with a nil
// score (nutrition) count toward block presence elsewhere but contribute
// nothing here.
func Combine(perBlock map[domain.Block]*domain.Score) *domain.Score {
	var sum float64
	var n int
	for _, score := range perBlock {
		if score == nil {
			continue
		}
		sum += float64(*score)
		n++
	}
	if n == 0 {
		return nil
	}
	combined := domain.ClampScore(sum / float64(n))
	return &combined
}

// Composite builds all three block snapshots concurrently, joins them, and
// synthesizes a cross-block narrative. The synthesis is remote-first with
// a rule-based fallback once at least two blocks have data; with exactly
// one block its own narrative is republished rather than re-synthesized.
func (a *Aggregator) Composite(ctx context.Context, userID int64, date domain.Date) (*domain.CompositeSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(userID),
		EntryDate: logger.Ptr(string(date)),
		Component: "pulse.snapshot.aggregator",
	})

	blocks := domain.AllBlocks()
	snaps := make([]*domain.BlockSnapshot, len(blocks))
	errs := make([]error, len(blocks))

	var wg sync.WaitGroup
	for i, block := range blocks {
		wg.Add(1)
		go func(i int, block domain.Block) {
			defer wg.Done()
			snaps[i], errs[i] = a.builder.BuildWithRemote(ctx, userID, block, date)
		}(i, block)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("building %s snapshot: %w", blocks[i], err)
		}
	}

	composite := &domain.CompositeSnapshot{
		PerBlock: make(map[domain.Block]*domain.Score),
		Source:   domain.SourceRuleBased,
		AsOfDate: date,
	}

	var withData []*domain.BlockSnapshot
	for _, snap := range snaps {
		if !snap.HasData() {
			continue
		}
		withData = append(withData, snap)
		composite.PerBlock[snap.Block] = snap.Score
	}
	composite.BlockCount = len(withData)
	composite.Combined = Combine(composite.PerBlock)

	a.synthesize(ctx, composite, withData)
	return composite, nil
}

func (a *Aggregator) synthesize(ctx context.Context, composite *domain.CompositeSnapshot, withData []*domain.BlockSnapshot) {
	switch len(withData) {
	case 0:
		composite.Synthesis = domain.Narrative{
			Insight:     "No entries yet for this day.",
			Explanation: "Log a check-in for any block to see your combined Pulse.",
			Suggestions: []string{"Start with the block that feels most relevant today."},
		}
		return
	case 1:
		// A synthesis of one block is that block's own story.
		only := withData[0]
		composite.Synthesis = only.Narrative
		composite.Source = only.Source
		composite.ErrorReason = only.ErrorReason
		return
	}

	if a.resolver.Configured() {
		narratives := make(map[domain.Block]domain.Narrative, len(withData))
		for _, snap := range withData {
			narratives[snap.Block] = snap.Narrative
		}
		result := a.resolver.Synthesize(ctx, composite.AsOfDate, composite.PerBlock, narratives)
		if result.OK {
			composite.Synthesis = result.Narrative
			composite.Source = domain.SourceRemote
			return
		}
		composite.Source = domain.SourceRemoteFailed
		composite.ErrorReason = result.Reason
	} else {
		composite.ErrorReason = insight.ReasonNotConfigured
	}

	composite.Synthesis = ruleBasedSynthesis(composite, withData)
}

// ruleBasedSynthesis is the local fallback: a combined read on the day
// plus the strongest suggestion from each block.
func ruleBasedSynthesis(composite *domain.CompositeSnapshot, withData []*domain.BlockSnapshot) domain.Narrative {
	insightLine := "Your blocks are telling one story today - scan the suggestions below for the smallest useful step."
	if composite.Combined != nil {
		switch {
		case *composite.Combined >= 70:
			insightLine = "Your combined Pulse is solid today - whatever you're doing across blocks is working."
		case *composite.Combined < 40:
			insightLine = "Your combined Pulse is low today; one small recovery step in any block tends to lift the others."
		}
	}

	var suggestions []string
	for _, snap := range withData {
		if len(snap.Narrative.Suggestions) == 0 {
			continue
		}
		suggestions = append(suggestions, snap.Narrative.Suggestions[0])
		if len(suggestions) == pulse.MaxSuggestions {
			break
		}
	}
	if len(suggestions) == 0 {
		suggestions = []string{"Pick one block and log how today actually went."}
	}

	return domain.Narrative{
		Insight:     insightLine,
		Explanation: fmt.Sprintf("Based on %d block(s) logged for this day.", composite.BlockCount),
		Suggestions: suggestions,
	}
}

// AllTimeAverage is the lifetime Pulse: the mean of every historical block
// score for the user, rounded and clamped. Nil when nothing score-bearing
// was ever logged.
func (a *Aggregator) AllTimeAverage(ctx context.Context, userID int64) (*domain.Score, error) {
	var sum float64
	var n int

	for _, block := range domain.AllBlocks() {
		if !block.ScoreBearing() {
			continue
		}
		entries, err := a.entries.ListAll(ctx, userID, block)
		if err != nil {
			return nil, fmt.Errorf("listing %s entries: %w", block, err)
		}
		// entries is newest first; each entry scores against what was
		// known at its own date.
		for i := range entries {
			score := pulse.ComputeScore(entries[i], entries[i+1:])
			sum += float64(score)
			n++
		}
	}

	if n == 0 {
		return nil, nil
	}
	avg := domain.ClampScore(sum / float64(n))
	return &avg, nil
}

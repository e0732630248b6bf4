package service

import (
	"context"

	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/snapshot"
)

// PulseService is the read surface: per-block snapshots, the composite
// daily view, and the lifetime aggregate.
type PulseService interface {
	// BlockSnapshot is the synchronous, rule-based view. It never waits on
	// the remote model.
	BlockSnapshot(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.BlockSnapshot, error)

	// BlockSnapshotWithRemote layers the remote narrative on top. Remote
	// failures degrade to the rule-based narrative, never to an error.
	BlockSnapshotWithRemote(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.BlockSnapshot, error)

	// Composite joins all blocks for one day.
	Composite(ctx context.Context, userID int64, date domain.Date) (*domain.CompositeSnapshot, error)

	// AllTimeAverage is the mean of every historical block score, nil when
	// nothing score-bearing was ever logged.
	AllTimeAverage(ctx context.Context, userID int64) (*domain.Score, error)
}

type pulseService struct {
	builder    *snapshot.Builder
	aggregator *snapshot.Aggregator
}

func NewPulseService(builder *snapshot.Builder, aggregator *snapshot.Aggregator) PulseService {
	return &pulseService{builder: builder, aggregator: aggregator}
}

func (s *pulseService) BlockSnapshot(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.BlockSnapshot, error) {
	return s.builder.Build(ctx, userID, block, date)
}

func (s *pulseService) BlockSnapshotWithRemote(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.BlockSnapshot, error) {
	return s.builder.BuildWithRemote(ctx, userID, block, date)
}

func (s *pulseService) Composite(ctx context.Context, userID int64, date domain.Date) (*domain.CompositeSnapshot, error) {
	return s.aggregator.Composite(ctx, userID, date)
}

func (s *pulseService) AllTimeAverage(ctx context.Context, userID int64) (*domain.Score, error) {
	return s.aggregator.AllTimeAverage(ctx, userID)
}

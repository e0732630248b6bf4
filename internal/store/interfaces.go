package store

import (
	"context"
	"errors"

	"pulse.app/engine/internal/domain"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// EntryStore defines the contract for log entry data access.
type EntryStore interface {
	// Upsert writes an entry, replacing any existing entry for the same
	// (user, block, date). Last write wins.
	Upsert(ctx context.Context, entry *domain.LogEntry) error

	// Get returns the entry for one (user, block, date), or ErrNotFound.
	Get(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.LogEntry, error)

	// ListRecent returns up to limit entries with date <= until, newest
	// first. Callers rely on the ordering for trend and weight-stability
	// lookups.
	ListRecent(ctx context.Context, userID int64, block domain.Block, until domain.Date, limit int) ([]domain.LogEntry, error)

	// ListAll returns every entry for a (user, block), newest first.
	ListAll(ctx context.Context, userID int64, block domain.Block) ([]domain.LogEntry, error)
}

// NarrativeStore defines the contract for precomputed remote narratives.
type NarrativeStore interface {
	// Upsert writes a resolved narrative, replacing any existing one for
	// the same (user, block, date). A write with an older generation than
	// the stored row is dropped.
	Upsert(ctx context.Context, n *domain.RemoteNarrative) error

	// Get returns the stored narrative for one (user, block, date), or
	// ErrNotFound.
	Get(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.RemoteNarrative, error)
}

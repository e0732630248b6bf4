package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pulse.app/engine/internal/domain"
)

type narrativeStore struct {
	pool *pgxpool.Pool
}

func newNarrativeStore(pool *pgxpool.Pool) NarrativeStore {
	return &narrativeStore{pool: pool}
}

func (s *narrativeStore) Upsert(ctx context.Context, n *domain.RemoteNarrative) error {
	payload, err := json.Marshal(n.Narrative)
	if err != nil {
		return fmt.Errorf("marshaling narrative: %w", err)
	}

	// The generation guard keeps a slow worker from clobbering a narrative
	// that was resolved for a newer entry.
	query := `
		INSERT INTO remote_narratives (user_id, block, entry_date, narrative, model, generation)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, block, entry_date) DO UPDATE SET
			narrative = EXCLUDED.narrative,
			model = EXCLUDED.model,
			generation = EXCLUDED.generation,
			updated_at = now()
		WHERE remote_narratives.generation <= EXCLUDED.generation`

	if _, err := s.pool.Exec(ctx, query,
		n.UserID, string(n.Block), string(n.Date), payload, n.Model, n.Generation,
	); err != nil {
		return fmt.Errorf("upserting remote narrative: %w", err)
	}
	return nil
}

func (s *narrativeStore) Get(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.RemoteNarrative, error) {
	query := `
		SELECT user_id, block, entry_date, narrative, model, generation
		FROM remote_narratives
		WHERE user_id = $1 AND block = $2 AND entry_date = $3`

	var n domain.RemoteNarrative
	var blockCol, dateCol string
	var payload []byte
	err := s.pool.QueryRow(ctx, query, userID, string(block), string(date)).Scan(
		&n.UserID, &blockCol, &dateCol, &payload, &n.Model, &n.Generation,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting remote narrative: %w", err)
	}

	if err := json.Unmarshal(payload, &n.Narrative); err != nil {
		return nil, fmt.Errorf("unmarshaling narrative: %w", err)
	}
	n.Block = domain.Block(blockCol)
	n.Date = domain.Date(dateCol)
	return &n, nil
}

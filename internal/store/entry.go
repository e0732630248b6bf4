package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pulse.app/engine/internal/domain"
)

type entryStore struct {
	pool *pgxpool.Pool
}

func newEntryStore(pool *pgxpool.Pool) EntryStore {
	return &entryStore{pool: pool}
}

const entryColumns = `id, user_id, block, entry_date,
	sleep_hours, sleep_quality, energy, mood, hydration, stress, appetite, weight,
	work_hours, focus_sessions, breaks, energy_start, energy_end,
	task_completion, desk_comfort, distractions, interruptions,
	notes, created_at, updated_at`

func (s *entryStore) Upsert(ctx context.Context, entry *domain.LogEntry) error {
	// The conflict target makes (user, block, date) the identity of an
	// entry. The id column is replaced on conflict so the snapshot
	// generation always tracks the latest write.
	query := `
		INSERT INTO entries (
			id, user_id, block, entry_date,
			sleep_hours, sleep_quality, energy, mood, hydration, stress, appetite, weight,
			work_hours, focus_sessions, breaks, energy_start, energy_end,
			task_completion, desk_comfort, distractions, interruptions, notes
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22
		)
		ON CONFLICT (user_id, block, entry_date) DO UPDATE SET
			id = EXCLUDED.id,
			sleep_hours = EXCLUDED.sleep_hours,
			sleep_quality = EXCLUDED.sleep_quality,
			energy = EXCLUDED.energy,
			mood = EXCLUDED.mood,
			hydration = EXCLUDED.hydration,
			stress = EXCLUDED.stress,
			appetite = EXCLUDED.appetite,
			weight = EXCLUDED.weight,
			work_hours = EXCLUDED.work_hours,
			focus_sessions = EXCLUDED.focus_sessions,
			breaks = EXCLUDED.breaks,
			energy_start = EXCLUDED.energy_start,
			energy_end = EXCLUDED.energy_end,
			task_completion = EXCLUDED.task_completion,
			desk_comfort = EXCLUDED.desk_comfort,
			distractions = EXCLUDED.distractions,
			interruptions = EXCLUDED.interruptions,
			notes = EXCLUDED.notes,
			updated_at = now()
		RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		entry.ID, entry.UserID, string(entry.Block), string(entry.Date),
		entry.SleepHours, entry.SleepQuality, entry.Energy, entry.Mood,
		entry.Hydration, entry.Stress, entry.Appetite, entry.Weight,
		entry.WorkHours, entry.FocusSessions, entry.Breaks,
		entry.EnergyStart, entry.EnergyEnd, entry.TaskCompletion,
		entry.DeskComfort, entry.Distractions, entry.Interruptions,
		entry.Notes,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting entry: %w", err)
	}
	return nil
}

func (s *entryStore) Get(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.LogEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries
		WHERE user_id = $1 AND block = $2 AND entry_date = $3`, entryColumns)

	row := s.pool.QueryRow(ctx, query, userID, string(block), string(date))
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *entryStore) ListRecent(ctx context.Context, userID int64, block domain.Block, until domain.Date, limit int) ([]domain.LogEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries
		WHERE user_id = $1 AND block = $2 AND entry_date <= $3
		ORDER BY entry_date DESC
		LIMIT $4`, entryColumns)

	rows, err := s.pool.Query(ctx, query, userID, string(block), string(until), limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *entryStore) ListAll(ctx context.Context, userID int64, block domain.Block) ([]domain.LogEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries
		WHERE user_id = $1 AND block = $2
		ORDER BY entry_date DESC`, entryColumns)

	rows, err := s.pool.Query(ctx, query, userID, string(block))
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]domain.LogEntry, error) {
	var entries []domain.LogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*domain.LogEntry, error) {
	var entry domain.LogEntry
	var block, date string
	err := row.Scan(
		&entry.ID, &entry.UserID, &block, &date,
		&entry.SleepHours, &entry.SleepQuality, &entry.Energy, &entry.Mood,
		&entry.Hydration, &entry.Stress, &entry.Appetite, &entry.Weight,
		&entry.WorkHours, &entry.FocusSessions, &entry.Breaks,
		&entry.EnergyStart, &entry.EnergyEnd, &entry.TaskCompletion,
		&entry.DeskComfort, &entry.Distractions, &entry.Interruptions,
		&entry.Notes, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Block = domain.Block(block)
	entry.Date = domain.Date(date)
	return &entry, nil
}

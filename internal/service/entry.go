package service

import (
	"context"
	"fmt"
	"log/slog"

	"pulse.app/engine/common/id"
	"pulse.app/engine/common/logger"
	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/queue"
	"pulse.app/engine/internal/store"
)

// EntryService owns the write path for daily check-ins.
type EntryService interface {
	// Log sanitizes and persists an entry, replacing any earlier entry for
	// the same (user, block, date), and announces the write so the worker
	// can pre-resolve its remote narrative.
	Log(ctx context.Context, entry *domain.LogEntry) error
}

type entryService struct {
	entries  store.EntryStore
	producer queue.Producer
}

func NewEntryService(entries store.EntryStore, producer queue.Producer) EntryService {
	return &entryService{entries: entries, producer: producer}
}

func (s *entryService) Log(ctx context.Context, entry *domain.LogEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	if !entry.Block.Valid() {
		return fmt.Errorf("invalid block %q", entry.Block)
	}
	if _, err := domain.ParseDate(string(entry.Date)); err != nil {
		return err
	}

	entry.Sanitize()

	// A fresh snowflake per write, even for replacements: the ID doubles as
	// the snapshot generation, so every accepted write moves it forward.
	entry.ID = id.New()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(entry.UserID),
		Block:     logger.Ptr(string(entry.Block)),
		EntryDate: logger.Ptr(string(entry.Date)),
		Component: "pulse.service.entry",
	})

	if err := s.entries.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("storing entry: %w", err)
	}

	slog.InfoContext(ctx, "entry logged", "entry_id", entry.ID)

	if s.producer != nil {
		err := s.producer.Enqueue(ctx, queue.EntryMessage{
			EntryID: entry.ID,
			UserID:  entry.UserID,
			Block:   string(entry.Block),
			Date:    string(entry.Date),
		})
		if err != nil {
			// The entry is stored; losing the event only costs the
			// pre-resolved narrative. The inline remote path still works.
			slog.WarnContext(ctx, "failed to enqueue entry event", "error", err)
		}
	}

	return nil
}

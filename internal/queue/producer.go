package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// EntryMessage announces that a log entry was written. The worker picks it
// up to pre-resolve the remote narrative for that entry's generation.
type EntryMessage struct {
	EntryID int64
	UserID  int64
	Block   string
	Date    string
	Attempt int
}

type Producer interface {
	Enqueue(ctx context.Context, msg EntryMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg EntryMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"entry_id":   msg.EntryID,
		"user_id":    msg.UserID,
		"block":      msg.Block,
		"entry_date": msg.Date,
		"attempt":    attempt,
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue entry event: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued entry event", "entry_id", msg.EntryID, "user_id", msg.UserID, "block", msg.Block, "entry_date", msg.Date, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

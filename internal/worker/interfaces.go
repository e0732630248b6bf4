package worker

import (
	"context"

	"pulse.app/engine/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// EntryProcessor abstracts per-message processing for testability.
type EntryProcessor interface {
	Process(ctx context.Context, msg queue.Message) error
}

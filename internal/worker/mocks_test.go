package worker_test

import (
	"context"

	"pulse.app/engine/common/llm"
	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/queue"
	"pulse.app/engine/internal/store"
)

type mockConsumer struct {
	readFn       func(ctx context.Context) ([]queue.Message, error)
	ackCalls     int
	requeueCalls int
	dlqCalls     int
	lastError    string
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if m.readFn != nil {
		return m.readFn(ctx)
	}
	return nil, nil
}

func (m *mockConsumer) Ack(ctx context.Context, msg queue.Message) error {
	m.ackCalls++
	return nil
}

func (m *mockConsumer) Requeue(ctx context.Context, msg queue.Message, errMsg string) error {
	m.requeueCalls++
	m.lastError = errMsg
	return nil
}

func (m *mockConsumer) SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error {
	m.dlqCalls++
	m.lastError = errMsg
	return nil
}

type mockProcessor struct {
	processFn func(ctx context.Context, msg queue.Message) error
	calls     int
}

func (m *mockProcessor) Process(ctx context.Context, msg queue.Message) error {
	m.calls++
	if m.processFn != nil {
		return m.processFn(ctx, msg)
	}
	return nil
}

type mockEntryStore struct {
	listRecentFn func(ctx context.Context, userID int64, block domain.Block, until domain.Date, limit int) ([]domain.LogEntry, error)
}

func (m *mockEntryStore) Upsert(ctx context.Context, entry *domain.LogEntry) error { return nil }

func (m *mockEntryStore) Get(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.LogEntry, error) {
	return nil, store.ErrNotFound
}

func (m *mockEntryStore) ListRecent(ctx context.Context, userID int64, block domain.Block, until domain.Date, limit int) ([]domain.LogEntry, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, userID, block, until, limit)
	}
	return nil, nil
}

func (m *mockEntryStore) ListAll(ctx context.Context, userID int64, block domain.Block) ([]domain.LogEntry, error) {
	return nil, nil
}

type mockNarrativeStore struct {
	upsertFn func(ctx context.Context, n *domain.RemoteNarrative) error
	upserts  []*domain.RemoteNarrative
}

func (m *mockNarrativeStore) Upsert(ctx context.Context, n *domain.RemoteNarrative) error {
	m.upserts = append(m.upserts, n)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, n)
	}
	return nil
}

func (m *mockNarrativeStore) Get(ctx context.Context, userID int64, block domain.Block, date domain.Date) (*domain.RemoteNarrative, error) {
	return nil, store.ErrNotFound
}

type mockLLMClient struct {
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
	calls      int
}

func (m *mockLLMClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.calls++
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return &llm.Response{Text: `{"insight":"remote insight","suggestions":["remote suggestion"]}`}, nil
}

func (m *mockLLMClient) Model() string { return "mock-model" }

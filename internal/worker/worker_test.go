package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulse.app/engine/internal/queue"
	"pulse.app/engine/internal/worker"
)

var _ = Describe("Worker", func() {
	ctx := context.Background()

	msg := queue.Message{ID: "1-0", EntryID: 100, UserID: 1, Block: "body", Date: "2026-08-30", Attempt: 1}

	// readFn that delivers the given messages exactly once, then idles.
	deliverOnce := func(messages ...queue.Message) func(context.Context) ([]queue.Message, error) {
		delivered := false
		return func(context.Context) ([]queue.Message, error) {
			if delivered {
				time.Sleep(time.Millisecond)
				return nil, nil
			}
			delivered = true
			return messages, nil
		}
	}

	Describe("ProcessMessage", func() {
		It("processes and acknowledges", func() {
			consumer := &mockConsumer{}
			processor := &mockProcessor{}
			w := worker.New(consumer, processor, worker.Config{})

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())
			Expect(processor.calls).To(Equal(1))
			Expect(consumer.ackCalls).To(Equal(1))
		})

		It("does not acknowledge a failed message", func() {
			consumer := &mockConsumer{}
			processor := &mockProcessor{processFn: func(context.Context, queue.Message) error {
				return errors.New("resolve failed")
			}}
			w := worker.New(consumer, processor, worker.Config{})

			Expect(w.ProcessMessage(ctx, msg)).To(HaveOccurred())
			Expect(consumer.ackCalls).To(BeZero())
		})
	})

	Describe("Run", func() {
		It("requeues a failed message below the attempt limit", func() {
			consumer := &mockConsumer{readFn: deliverOnce(msg)}
			processor := &mockProcessor{processFn: func(context.Context, queue.Message) error {
				return errors.New("resolve failed")
			}}
			w := worker.New(consumer, processor, worker.Config{MaxAttempts: 3})

			go func() { _ = w.Run(ctx) }()
			Eventually(func() int { return consumer.requeueCalls }).Should(Equal(1))
			w.Stop()

			Expect(consumer.dlqCalls).To(BeZero())
			Expect(consumer.lastError).To(ContainSubstring("resolve failed"))
		})

		It("dead-letters a message at the attempt limit", func() {
			final := msg
			final.Attempt = 3

			consumer := &mockConsumer{readFn: deliverOnce(final)}
			processor := &mockProcessor{processFn: func(context.Context, queue.Message) error {
				return errors.New("resolve failed")
			}}
			w := worker.New(consumer, processor, worker.Config{MaxAttempts: 3})

			go func() { _ = w.Run(ctx) }()
			Eventually(func() int { return consumer.dlqCalls }).Should(Equal(1))
			w.Stop()

			Expect(consumer.requeueCalls).To(BeZero())
		})

		It("recovers from a panicking processor", func() {
			consumer := &mockConsumer{readFn: deliverOnce(msg)}
			processor := &mockProcessor{processFn: func(context.Context, queue.Message) error {
				panic("boom")
			}}
			w := worker.New(consumer, processor, worker.Config{MaxAttempts: 3})

			go func() { _ = w.Run(ctx) }()
			Eventually(func() int { return consumer.requeueCalls }).Should(Equal(1))
			w.Stop()

			Expect(consumer.lastError).To(ContainSubstring("panic"))
		})

		It("stops when the context is cancelled", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			consumer := &mockConsumer{readFn: func(context.Context) ([]queue.Message, error) {
				time.Sleep(time.Millisecond)
				return nil, nil
			}}
			w := worker.New(consumer, &mockProcessor{}, worker.Config{})

			done := make(chan error, 1)
			go func() { done <- w.Run(cancelCtx) }()
			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})
	})
})

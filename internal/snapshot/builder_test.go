package snapshot_test

import (
	"context"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulse.app/engine/common/llm"
	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/insight"
	"pulse.app/engine/internal/snapshot"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func entryFor(id int64, block domain.Block, date string) domain.LogEntry {
	return domain.LogEntry{
		ID:     id,
		UserID: 1,
		Block:  block,
		Date:   domain.Date(date),
	}
}

func fixedEntries(entries ...domain.LogEntry) *mockEntryStore {
	return &mockEntryStore{
		listRecentFn: func(_ context.Context, _ int64, block domain.Block, _ domain.Date, _ int) ([]domain.LogEntry, error) {
			var out []domain.LogEntry
			for _, e := range entries {
				if e.Block == block {
					out = append(out, e)
				}
			}
			return out, nil
		},
	}
}

func noRemote() *insight.Resolver {
	return insight.New(nil, time.Second, 256)
}

func remoteWith(client llm.Client) *insight.Resolver {
	return insight.New(client, time.Second, 256)
}

var _ = Describe("Builder", func() {
	ctx := context.Background()
	day := domain.Date("2026-08-30")

	Describe("Build", func() {
		It("returns the no-data sentinel when the window is empty", func() {
			b := snapshot.NewBuilder(fixedEntries(), &mockNarrativeStore{}, noRemote(), 14)

			snap, err := b.Build(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.HasData()).To(BeFalse())
			Expect(snap.Score).To(BeNil())
			Expect(snap.Trend).To(Equal(domain.TrendStable))
			Expect(snap.Narrative.Suggestions).NotTo(BeEmpty())
		})

		It("computes score, trend and generation from the newest entry", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			today.Energy = intPtr(5) // 62
			yesterday := entryFor(100, domain.BlockBody, "2026-08-29")
			yesterday.Energy = intPtr(1) // 38

			b := snapshot.NewBuilder(fixedEntries(today, yesterday), &mockNarrativeStore{}, noRemote(), 14)

			snap, err := b.Build(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.HasData()).To(BeTrue())
			Expect(*snap.Score).To(Equal(domain.Score(62)))
			Expect(snap.Trend).To(Equal(domain.TrendUp))
			Expect(snap.Generation).To(Equal(int64(200)))
			Expect(snap.Source).To(Equal(domain.SourceRuleBased))
		})

		It("is stable with only one entry", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			b := snapshot.NewBuilder(fixedEntries(today), &mockNarrativeStore{}, noRemote(), 14)

			snap, err := b.Build(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Trend).To(Equal(domain.TrendStable))
		})

		It("keeps nutrition scoreless but with data", func() {
			entry := entryFor(300, domain.BlockNutrition, "2026-08-30")
			b := snapshot.NewBuilder(fixedEntries(entry), &mockNarrativeStore{}, noRemote(), 14)

			snap, err := b.Build(ctx, 1, domain.BlockNutrition, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Score).To(BeNil())
			Expect(snap.HasData()).To(BeTrue())
			Expect(snap.Narrative.Insight).NotTo(BeEmpty())
		})
	})

	Describe("BuildWithRemote", func() {
		It("keeps rule-based source with a reason when not configured", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			b := snapshot.NewBuilder(fixedEntries(today), &mockNarrativeStore{}, noRemote(), 14)

			snap, err := b.BuildWithRemote(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Source).To(Equal(domain.SourceRuleBased))
			Expect(snap.ErrorReason).To(Equal(insight.ReasonNotConfigured))
		})

		It("serves the remote narrative when the model answers", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			client := &mockLLMClient{}
			b := snapshot.NewBuilder(fixedEntries(today), &mockNarrativeStore{}, remoteWith(client), 14)

			snap, err := b.BuildWithRemote(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Source).To(Equal(domain.SourceRemote))
			Expect(snap.Narrative.Insight).To(Equal("remote insight"))
		})

		It("falls back with the failure reason when the model rejects", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			today.Energy = intPtr(5)
			client := &mockLLMClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return nil, &llm.StatusError{StatusCode: 500, Message: "boom"}
			}}
			b := snapshot.NewBuilder(fixedEntries(today), &mockNarrativeStore{}, remoteWith(client), 14)

			snap, err := b.BuildWithRemote(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Source).To(Equal(domain.SourceRemoteFailed))
			Expect(snap.ErrorReason).To(Equal(insight.ReasonRejected))
			// The rule-based narrative survives the failed attempt.
			Expect(snap.Narrative.Suggestions).NotTo(BeEmpty())
			Expect(*snap.Score).To(Equal(domain.Score(62)))
		})

		It("never lets the remote path change score or trend", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 25; i++ {
				entry := entryFor(int64(1000+i), domain.BlockBody, "2026-08-30")
				entry.SleepHours = floatPtr(float64(rng.Intn(13)))
				entry.Energy = intPtr(1 + rng.Intn(5))
				entry.Stress = intPtr(1 + rng.Intn(5))

				client := &mockLLMClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
					if rng.Intn(2) == 0 {
						return nil, &llm.StatusError{StatusCode: 503, Message: "down"}
					}
					return &llm.Response{Text: `{"insight":"remote"}`}, nil
				}}

				ruleBuilder := snapshot.NewBuilder(fixedEntries(entry), &mockNarrativeStore{}, noRemote(), 14)
				remoteBuilder := snapshot.NewBuilder(fixedEntries(entry), &mockNarrativeStore{}, remoteWith(client), 14)

				plain, err := ruleBuilder.Build(ctx, 1, domain.BlockBody, day)
				Expect(err).NotTo(HaveOccurred())
				enriched, err := remoteBuilder.BuildWithRemote(ctx, 1, domain.BlockBody, day)
				Expect(err).NotTo(HaveOccurred())

				Expect(*enriched.Score).To(Equal(*plain.Score))
				Expect(enriched.Trend).To(Equal(plain.Trend))
			}
		})

		It("serves a precomputed narrative without calling the model", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			client := &mockLLMClient{}
			narratives := &mockNarrativeStore{
				getFn: func(_ context.Context, _ int64, _ domain.Block, _ domain.Date) (*domain.RemoteNarrative, error) {
					return &domain.RemoteNarrative{
						Narrative:  domain.Narrative{Insight: "precomputed"},
						Generation: 200,
					}, nil
				},
			}
			b := snapshot.NewBuilder(fixedEntries(today), narratives, remoteWith(client), 14)

			snap, err := b.BuildWithRemote(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Source).To(Equal(domain.SourceRemote))
			Expect(snap.Narrative.Insight).To(Equal("precomputed"))
			Expect(client.calls).To(BeZero())
		})

		It("discards a precomputed narrative with a stale generation", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			client := &mockLLMClient{}
			narratives := &mockNarrativeStore{
				getFn: func(_ context.Context, _ int64, _ domain.Block, _ domain.Date) (*domain.RemoteNarrative, error) {
					return &domain.RemoteNarrative{
						Narrative:  domain.Narrative{Insight: "stale"},
						Generation: 100, // older entry generation
					}, nil
				},
			}
			b := snapshot.NewBuilder(fixedEntries(today), narratives, remoteWith(client), 14)

			snap, err := b.BuildWithRemote(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Narrative.Insight).NotTo(Equal("stale"))
			Expect(client.calls).To(Equal(1))
		})

		It("stores an inline resolution for the next view", func() {
			today := entryFor(200, domain.BlockBody, "2026-08-30")
			client := &mockLLMClient{}
			var stored *domain.RemoteNarrative
			narratives := &mockNarrativeStore{
				upsertFn: func(_ context.Context, n *domain.RemoteNarrative) error {
					stored = n
					return nil
				},
			}
			b := snapshot.NewBuilder(fixedEntries(today), narratives, remoteWith(client), 14)

			_, err := b.BuildWithRemote(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(BeNil())
			Expect(stored.Generation).To(Equal(int64(200)))
		})

		It("skips the remote path entirely for a no-data block", func() {
			client := &mockLLMClient{}
			b := snapshot.NewBuilder(fixedEntries(), &mockNarrativeStore{}, remoteWith(client), 14)

			snap, err := b.BuildWithRemote(ctx, 1, domain.BlockBody, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.HasData()).To(BeFalse())
			Expect(client.calls).To(BeZero())
		})
	})
})

package insight_test

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulse.app/engine/common/llm"
	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/insight"
)

type mockClient struct {
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
}

func (m *mockClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return &llm.Response{Text: `{"insight":"ok"}`}, nil
}

func (m *mockClient) Model() string { return "mock-model" }

func scoreOf(v int) *domain.Score {
	s := domain.Score(v)
	return &s
}

var _ = Describe("Resolver", func() {
	var (
		ctx   context.Context
		entry domain.LogEntry
	)

	BeforeEach(func() {
		ctx = context.Background()
		entry = domain.LogEntry{
			UserID: 1,
			Block:  domain.BlockBody,
			Date:   domain.Date("2026-08-30"),
		}
	})

	resolve := func(client llm.Client) insight.Result {
		r := insight.New(client, time.Second, 256)
		return r.Resolve(ctx, entry, scoreOf(62), domain.TrendStable, nil, nil)
	}

	Context("when no client is configured", func() {
		It("reports not configured", func() {
			result := resolve(nil)
			Expect(result.OK).To(BeFalse())
			Expect(result.Reason).To(Equal(insight.ReasonNotConfigured))
		})
	})

	Context("when the model answers with valid JSON", func() {
		It("returns the parsed narrative", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: `{"insight":"Sleep is the lever.","explanation":"Short sleep lowered energy.","suggestions":["Wind down earlier."]}`}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeTrue())
			Expect(result.Narrative.Insight).To(Equal("Sleep is the lever."))
			Expect(result.Narrative.Suggestions).To(ConsistOf("Wind down earlier."))
			Expect(result.Model).To(Equal("mock-model"))
		})

		It("strips a markdown fence around the JSON", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: "```json\n{\"insight\":\"fenced\"}\n```"}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeTrue())
			Expect(result.Narrative.Insight).To(Equal("fenced"))
		})

		It("caps suggestion count at three", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: `{"suggestions":["a","b","c","d","e"]}`}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeTrue())
			Expect(result.Narrative.Suggestions).To(HaveLen(3))
		})

		It("trims whitespace and drops empty suggestions", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: `{"suggestions":["  keep  ","","   "]}`}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeTrue())
			Expect(result.Narrative.Suggestions).To(ConsistOf("keep"))
		})

		It("caps field lengths", func() {
			long := strings.Repeat("x", 2000)
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: `{"insight":"` + long + `"}`}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeTrue())
			Expect(len(result.Narrative.Insight)).To(BeNumerically("<=", 500))
		})

		It("caps on a rune boundary, never splitting a multi-byte character", func() {
			// 499 ASCII bytes, then a 2-byte rune straddling the 500-byte cap.
			long := strings.Repeat("x", 499) + "é" + strings.Repeat("y", 50)
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: `{"insight":"` + long + `"}`}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeTrue())
			Expect(len(result.Narrative.Insight)).To(Equal(499))
			Expect(utf8.ValidString(result.Narrative.Insight)).To(BeTrue())
		})
	})

	Context("when the model answers with garbage", func() {
		It("reports malformed response for non-JSON", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: "I feel great about your sleep!"}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeFalse())
			Expect(result.Reason).To(Equal(insight.ReasonMalformedResponse))
		})

		It("reports malformed response for JSON with no usable fields", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: `{"insight":"   ","suggestions":[""]}`}, nil
			}}

			result := resolve(client)
			Expect(result.OK).To(BeFalse())
			Expect(result.Reason).To(Equal(insight.ReasonMalformedResponse))
		})
	})

	Context("when the call fails", func() {
		It("reports rejected on a status error", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return nil, &llm.StatusError{StatusCode: 429, Message: "rate limited"}
			}}

			result := resolve(client)
			Expect(result.OK).To(BeFalse())
			Expect(result.Reason).To(Equal(insight.ReasonRejected))
		})

		It("reports unreachable on a transport error", func() {
			client := &mockClient{completeFn: func(_ context.Context, _ llm.Request) (*llm.Response, error) {
				return nil, context.DeadlineExceeded
			}}

			result := resolve(client)
			Expect(result.OK).To(BeFalse())
			Expect(result.Reason).To(Equal(insight.ReasonUnreachable))
		})
	})

	It("passes the timeout through the context", func() {
		var deadlineSet bool
		client := &mockClient{completeFn: func(ctx context.Context, _ llm.Request) (*llm.Response, error) {
			_, deadlineSet = ctx.Deadline()
			return &llm.Response{Text: `{"insight":"ok"}`}, nil
		}}

		resolve(client)
		Expect(deadlineSet).To(BeTrue())
	})

	It("includes the day's signals in the user message", func() {
		var captured llm.Request
		client := &mockClient{completeFn: func(_ context.Context, req llm.Request) (*llm.Response, error) {
			captured = req
			return &llm.Response{Text: `{"insight":"ok"}`}, nil
		}}

		entry.Energy = func() *int { v := 2; return &v }()
		resolve(client)

		Expect(captured.SystemInstruction).NotTo(BeEmpty())
		Expect(captured.UserMessage).To(ContainSubstring(`"energy":2`))
		Expect(captured.UserMessage).To(ContainSubstring("2026-08-30"))
	})
})

var _ = Describe("Synthesize", func() {
	It("sends per-block scores and narratives", func() {
		var captured llm.Request
		client := &mockClient{completeFn: func(_ context.Context, req llm.Request) (*llm.Response, error) {
			captured = req
			return &llm.Response{Text: `{"insight":"synthesis"}`}, nil
		}}

		r := insight.New(client, time.Second, 256)
		result := r.Synthesize(context.Background(), domain.Date("2026-08-30"),
			map[domain.Block]*domain.Score{
				domain.BlockBody: scoreOf(80),
				domain.BlockWork: scoreOf(60),
			},
			map[domain.Block]domain.Narrative{
				domain.BlockBody: {Insight: "body fine"},
				domain.BlockWork: {Insight: "work rough"},
			},
		)

		Expect(result.OK).To(BeTrue())
		Expect(result.Narrative.Insight).To(Equal("synthesis"))
		Expect(captured.UserMessage).To(ContainSubstring("body"))
		Expect(captured.UserMessage).To(ContainSubstring("work rough"))
	})
})

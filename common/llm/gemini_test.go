package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulse.app/engine/common/llm"
)

var _ = Describe("Gemini client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		received map[string]any
		handler  http.HandlerFunc
	)

	newClient := func() llm.Client {
		client, err := llm.New(llm.Config{
			Provider: llm.ProviderGemini,
			APIKey:   "test-key",
			BaseURL:  server.URL,
			Model:    "gemini-test",
		})
		Expect(err).NotTo(HaveOccurred())
		return client
	}

	candidateBody := func(text string) string {
		return `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": ` + mustJSON(text) + `}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 34}
		}`
	}

	BeforeEach(func() {
		ctx = context.Background()
		received = nil
		handler = func(w http.ResponseWriter, r *http.Request) {
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(candidateBody("hello")))
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("sends the expected envelope", func() {
		var gotPath, gotKey string
		inner := handler
		handler = func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.URL.Query().Get("key")
			inner(w, r)
		}

		resp, err := newClient().Complete(ctx, llm.Request{
			SystemInstruction: "be brief",
			UserMessage:       "how was my day",
			Temperature:       llm.Temp(0.7),
			MaxOutputTokens:   256,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Text).To(Equal("hello"))
		Expect(resp.PromptTokens).To(Equal(12))
		Expect(resp.CompletionTokens).To(Equal(34))

		Expect(gotPath).To(Equal("/models/gemini-test:generateContent"))
		Expect(gotKey).To(Equal("test-key"))

		Expect(received).To(HaveKey("system_instruction"))
		Expect(received).To(HaveKey("contents"))
		contents := received["contents"].([]any)
		Expect(contents).To(HaveLen(1))

		genCfg := received["generationConfig"].(map[string]any)
		Expect(genCfg["temperature"]).To(BeNumerically("~", 0.7))
		Expect(genCfg["maxOutputTokens"]).To(BeNumerically("==", 256))
	})

	It("omits the system instruction when absent and defaults max tokens", func() {
		_, err := newClient().Complete(ctx, llm.Request{UserMessage: "hi"})
		Expect(err).NotTo(HaveOccurred())

		Expect(received).NotTo(HaveKey("system_instruction"))
		genCfg := received["generationConfig"].(map[string]any)
		Expect(genCfg["maxOutputTokens"]).To(BeNumerically("==", 1024))
	})

	It("surfaces a non-2xx as a StatusError with the provider message", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
		}

		_, err := newClient().Complete(ctx, llm.Request{UserMessage: "hi"})

		var statusErr *llm.StatusError
		Expect(err).To(BeAssignableToTypeOf(statusErr))
		statusErr = err.(*llm.StatusError)
		Expect(statusErr.StatusCode).To(Equal(http.StatusTooManyRequests))
		Expect(statusErr.Message).To(Equal("quota exceeded"))
	})

	It("treats an empty candidate list as a StatusError", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		}

		_, err := newClient().Complete(ctx, llm.Request{UserMessage: "hi"})

		var statusErr *llm.StatusError
		Expect(err).To(BeAssignableToTypeOf(statusErr))
	})

	It("returns a plain error when the server is unreachable", func() {
		server.Close()

		_, err := newClient().Complete(ctx, llm.Request{UserMessage: "hi"})
		Expect(err).To(HaveOccurred())

		var statusErr *llm.StatusError
		Expect(err).NotTo(BeAssignableToTypeOf(statusErr))
	})

	It("honors context cancellation", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newClient().Complete(cancelled, llm.Request{UserMessage: "hi"})
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("New", func() {
	It("requires an API key", func() {
		_, err := llm.New(llm.Config{Provider: llm.ProviderGemini})
		Expect(err).To(MatchError(ContainSubstring("API key")))
	})

	It("rejects an unknown provider", func() {
		_, err := llm.New(llm.Config{Provider: "anthropic", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported")))
	})

	It("defaults to Gemini", func() {
		client, err := llm.New(llm.Config{APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gemini-1.5-flash"))
	})
})

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	Expect(err).NotTo(HaveOccurred())
	return string(b)
}

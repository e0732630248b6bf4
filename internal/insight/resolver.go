package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"pulse.app/engine/common/llm"
	"pulse.app/engine/common/logger"
	"pulse.app/engine/internal/domain"
)

// Failure reasons reported on a non-OK Result. These are values, not
// errors: a failed remote resolution is an expected outcome the snapshot
// builder absorbs, never a fault that propagates.
const (
	ReasonNotConfigured     = "not configured"
	ReasonUnreachable       = "unreachable"
	ReasonRejected          = "rejected"
	ReasonMalformedResponse = "malformed response"
)

const (
	maxInsightLength     = 500
	maxExplanationLength = 800
	maxSuggestionLength  = 300
	maxSuggestionCount   = 3
)

// Result is the outcome of one remote resolution attempt. Exactly one of
// Narrative (OK) or Reason (not OK) is meaningful.
type Result struct {
	OK        bool
	Narrative domain.Narrative
	Reason    string
	Model     string
}

func failure(reason string) Result {
	return Result{OK: false, Reason: reason}
}

// Resolver attempts to obtain a narrative from the remote model. It holds
// no cache and never retries: one bounded call per Resolve, with every
// failure mode folded into the Result. Score and trend are inputs here,
// never outputs - the remote path cannot influence them.
type Resolver struct {
	client    llm.Client
	timeout   time.Duration
	maxTokens int
}

// New builds a Resolver. A nil client is valid and means the remote model
// is not configured; every Resolve then reports ReasonNotConfigured.
func New(client llm.Client, timeout time.Duration, maxTokens int) *Resolver {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Resolver{client: client, timeout: timeout, maxTokens: maxTokens}
}

// Configured reports whether a remote model is available at all.
func (r *Resolver) Configured() bool {
	return r.client != nil
}

// Resolve asks the remote model for a block narrative. It never panics and
// never returns a Go error; all failures surface as a tagged Result.
func (r *Resolver) Resolve(ctx context.Context, entry domain.LogEntry, score *domain.Score, trend domain.Trend, flags []domain.FrictionFlag, history []domain.LogEntry) Result {
	req := llm.Request{
		SystemInstruction: blockSystemInstruction,
		UserMessage:       buildBlockMessage(entry, score, trend, flags, history),
	}
	return r.complete(ctx, req)
}

// Synthesize asks the remote model for a cross-block synthesis. Only
// called once at least two blocks have data.
func (r *Resolver) Synthesize(ctx context.Context, day domain.Date, perBlock map[domain.Block]*domain.Score, narratives map[domain.Block]domain.Narrative) Result {
	req := llm.Request{
		SystemInstruction: synthesisSystemInstruction,
		UserMessage:       buildSynthesisMessage(day, perBlock, narratives),
	}
	return r.complete(ctx, req)
}

func (r *Resolver) complete(ctx context.Context, req llm.Request) Result {
	if r.client == nil {
		return failure(ReasonNotConfigured)
	}

	req.Temperature = llm.Temp(0.7)
	req.MaxOutputTokens = r.maxTokens
	req.SchemaName = "narrative"
	req.Schema = llm.GenerateSchema[narrativePayload]()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		reason := classifyError(err)
		slog.WarnContext(ctx, "remote narrative attempt failed",
			"reason", reason,
			"model", r.client.Model(),
			"error", err,
		)
		return failure(reason)
	}

	narrative, err := parseNarrative(resp.Text)
	if err != nil {
		slog.WarnContext(ctx, "remote narrative response malformed",
			"model", r.client.Model(),
			"response", logger.Truncate(resp.Text, 200),
			"error", err,
		)
		return failure(ReasonMalformedResponse)
	}

	return Result{OK: true, Narrative: narrative, Model: r.client.Model()}
}

// classifyError maps transport errors to failure reasons. A status reply
// means the service answered and refused; anything else means we never got
// a usable answer out of it.
func classifyError(err error) string {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return ReasonRejected
	}
	return ReasonUnreachable
}

// narrativePayload is the shape the model is asked to produce.
type narrativePayload struct {
	Insight     string   `json:"insight"`
	Explanation string   `json:"explanation"`
	Suggestions []string `json:"suggestions"`
}

// parseNarrative validates the raw model text into a Narrative. The model
// may wrap JSON in a markdown fence; that is tolerated. Everything else is
// strict: at least one substantive field after trimming, lengths capped.
func parseNarrative(text string) (domain.Narrative, error) {
	cleaned := stripFence(text)

	var payload narrativePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Narrative{}, fmt.Errorf("decoding narrative payload: %w", err)
	}

	n := domain.Narrative{
		Insight:     capString(strings.TrimSpace(payload.Insight), maxInsightLength),
		Explanation: capString(strings.TrimSpace(payload.Explanation), maxExplanationLength),
	}
	for _, s := range payload.Suggestions {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n.Suggestions = append(n.Suggestions, capString(s, maxSuggestionLength))
		if len(n.Suggestions) == maxSuggestionCount {
			break
		}
	}

	if n.Insight == "" && n.Explanation == "" && len(n.Suggestions) == 0 {
		return domain.Narrative{}, fmt.Errorf("narrative payload has no usable fields")
	}
	return n, nil
}

// stripFence removes an optional ```json ... ``` (or bare ```) wrapper.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// capString truncates to at most max bytes without splitting a rune.
func capString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

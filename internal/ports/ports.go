package ports

import (
	"context"
	"time"

	"ArticleEvaluator/internal/domain"
)

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	// JSONObject asks the service to answer with a single JSON object.
	JSONObject bool
}

// ChatModel sends prompts to an LLM chat completion API (e.g., ChatGPT).
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ArticleEvaluator scores drafts. Failures are reported inside the result.
type ArticleEvaluator interface {
	Evaluate(ctx context.Context, input domain.ArticleInput) domain.EvaluationResult
}

// DraftSource fetches draft text from a published page.
type DraftSource interface {
	FetchDraft(ctx context.Context, rawURL string) (domain.Draft, error)
}

// EvaluationMetrics records pipeline outcomes.
type EvaluationMetrics interface {
	ObserveEvaluation(outcome string, elapsed time.Duration)
	ObserveModelCall(status string, elapsed time.Duration)
	AddUntaggedFeedback(count int)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"ArticleEvaluator/internal/domain"
	"ArticleEvaluator/internal/ports"
)

type fakeModel struct {
	mu       sync.Mutex
	response string
	err      error
	block    bool
	requests []ports.CompletionRequest
}

func (f *fakeModel) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", fmt.Errorf("chat completion: %w", ctx.Err())
	}
	return f.response, f.err
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type recordingMetrics struct {
	mu         sync.Mutex
	outcomes   []string
	modelCalls []string
	untagged   int
}

func (m *recordingMetrics) ObserveEvaluation(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) ObserveModelCall(status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelCalls = append(m.modelCalls, status)
}

func (m *recordingMetrics) AddUntaggedFeedback(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.untagged += count
}

func testConfig() EvaluatorConfig {
	return EvaluatorConfig{
		QualityThreshold: 70,
		MaxArticleLength: 10000,
		Weights:          domain.Weights{NPOV: 0.4, Verifiability: 0.3, OriginalResearch: 0.3},
		Model:            "gpt-4o-mini",
		Temperature:      0.1,
	}
}

const historicalArticle = "The Treaty of Westphalia was signed in 1648, ending the Thirty Years War. " +
	"According to historian Peter Wilson, the treaty reshaped the balance of power in Europe. " +
	"The Encyclopaedia Britannica describes it as the foundation of the modern state system."

func assertFallback(t *testing.T, got domain.EvaluationResult, message string) {
	t.Helper()
	assert.Equal(t, 0, got.OverallScore)
	assert.False(t, got.PassesThreshold)
	assert.Equal(t, domain.Breakdown{}, got.Breakdown)
	assert.Equal(t, []string{message}, got.Feedback)
}

func TestEvaluateWellSourcedArticle(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: `{
		"breakdown": {"npov_score": 90, "verifiability_score": 85, "original_research_score": 88},
		"feedback": ["MINOR: add a citation for the final sentence"]
	}`}
	metrics := &recordingMetrics{}
	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: model, Metrics: metrics})

	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle, Title: "Peace of Westphalia"})

	// 90*0.4 + 85*0.3 + 88*0.3 = 87.9
	assert.Equal(t, 88, got.OverallScore)
	assert.True(t, got.PassesThreshold)
	assert.Equal(t, domain.Breakdown{NPOVScore: 90, VerifiabilityScore: 85, OriginalResearchScore: 88}, got.Breakdown)
	assert.Equal(t, []string{"MINOR: add a citation for the final sentence"}, got.Feedback)

	require.Equal(t, 1, model.calls())
	req := model.requests[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, SystemPrompt, req.SystemPrompt)
	assert.InDelta(t, 0.1, req.Temperature, 1e-9)
	assert.True(t, req.JSONObject)
	assert.Contains(t, req.UserPrompt, historicalArticle)
	assert.Contains(t, req.UserPrompt, "Title: Peace of Westphalia")

	assert.Equal(t, []string{OutcomeOK}, metrics.outcomes)
	assert.Equal(t, []string{"ok"}, metrics.modelCalls)
	assert.Zero(t, metrics.untagged)
}

func TestEvaluateOpinionArticle(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: `{
		"breakdown": {"npov_score": 20, "verifiability_score": 15, "original_research_score": 10},
		"feedback": ["CRITICAL: personal opinions stated as fact", "IMPROVE: cite reliable sources"]
	}`}
	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: model})

	got := ev.Evaluate(context.Background(), domain.ArticleInput{
		Text: "I personally think electric cars are the best invention ever. Everyone I know agrees with me.",
	})

	assert.Equal(t, 16, got.OverallScore)
	assert.False(t, got.PassesThreshold)
	assert.Len(t, got.Feedback, 2)
	assert.NotContains(t, model.requests[0].UserPrompt, "Title:")
}

func TestEvaluateModelTimeout(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RequestTimeout = 20 * time.Millisecond
	model := &fakeModel{block: true}
	metrics := &recordingMetrics{}
	ev := NewEvaluator(cfg, EvaluatorDeps{Model: model, Metrics: metrics})

	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})

	assertFallback(t, got, "Evaluation service temporarily unavailable. Please try again in a moment.")
	assert.Equal(t, []string{"timeout"}, metrics.modelCalls)
	assert.Equal(t, []string{OutcomeModelCallFailure}, metrics.outcomes)
}

func TestEvaluateModelErrorDebug(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Debug = true
	ev := NewEvaluator(cfg, EvaluatorDeps{Model: &fakeModel{err: errors.New("401 invalid api key")}})

	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})

	assertFallback(t, got, MsgServiceUnavailable+" (Debug: 401 invalid api key)")
}

func TestEvaluateModelErrorHidesDetails(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: &fakeModel{err: errors.New("401 invalid api key")}})

	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})

	assertFallback(t, got, MsgServiceUnavailable)
	assert.NotContains(t, got.Feedback[0], "401")
}

func TestEvaluateWithoutModel(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(testConfig(), EvaluatorDeps{})
	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
	assertFallback(t, got, MsgServiceUnavailable)
}

func TestEvaluateTooLong(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxArticleLength = 50
	model := &fakeModel{}
	ev := NewEvaluator(cfg, EvaluatorDeps{Model: model})

	text := strings.Repeat("é", 51)
	for range 3 {
		got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: text})
		assertFallback(t, got, "Article too long (51 chars). Maximum allowed: 50 characters.")
	}
	assert.Zero(t, model.calls())

	// Exactly at the limit is accepted.
	model.response = `{"breakdown":{"npov_score":80,"verifiability_score":80,"original_research_score":80}}`
	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: strings.Repeat("é", 50)})
	assert.Equal(t, 80, got.OverallScore)
}

func TestEvaluateInvalidEncoding(t *testing.T) {
	t.Parallel()

	model := &fakeModel{}
	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: model})

	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: "valid prefix \xff\xfe invalid"})

	assertFallback(t, got, MsgInvalidEncoding)
	assert.Zero(t, model.calls())
}

func TestEvaluateUnparseableResponse(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: &fakeModel{response: "Sure! Here is my evaluation: great article."}})
	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
	assertFallback(t, got, MsgUnparseable)
}

func TestEvaluateInvalidStructure(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: &fakeModel{
		response: `{"breakdown":{"npov_score":101,"verifiability_score":85,"original_research_score":88}}`,
	}})
	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
	assertFallback(t, got, MsgInvalidFormat)
}

func TestEvaluateNullFeedbackIsInvalid(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: &fakeModel{
		response: `{"breakdown":{"npov_score":90,"verifiability_score":85,"original_research_score":88},"feedback":null}`,
	}})
	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
	assertFallback(t, got, MsgInvalidFormat)
}

func TestEvaluateFeedbackDefaults(t *testing.T) {
	t.Parallel()

	scores := `"breakdown":{"npov_score":70,"verifiability_score":70,"original_research_score":70}`

	absent := NewEvaluator(testConfig(), EvaluatorDeps{Model: &fakeModel{response: "{" + scores + "}"}})
	got := absent.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
	assert.Equal(t, []string{MsgNoFeedback}, got.Feedback)
	assert.True(t, got.PassesThreshold)

	empty := NewEvaluator(testConfig(), EvaluatorDeps{Model: &fakeModel{response: "{" + scores + `,"feedback":[]}`}})
	got = empty.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
	assert.NotNil(t, got.Feedback)
	assert.Empty(t, got.Feedback)
}

func TestEvaluateCountsUntaggedFeedback(t *testing.T) {
	t.Parallel()

	metrics := &recordingMetrics{}
	ev := NewEvaluator(testConfig(), EvaluatorDeps{
		Model: &fakeModel{response: `{
			"breakdown":{"npov_score":70,"verifiability_score":70,"original_research_score":70},
			"feedback":["CRITICAL: tagged","untagged remark"]
		}`},
		Metrics: metrics,
	})

	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})

	assert.Equal(t, []string{"CRITICAL: tagged", "untagged remark"}, got.Feedback)
	assert.Equal(t, 1, metrics.untagged)
}

func TestEvaluateFencedResponse(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: &fakeModel{
		response: "```json\n{\"breakdown\":{\"npov_score\":50,\"verifiability_score\":50,\"original_research_score\":50}}\n```",
	}})
	got := ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
	assert.Equal(t, 50, got.OverallScore)
	assert.False(t, got.PassesThreshold)
}

func TestEvaluateConcurrent(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: `{"breakdown":{"npov_score":90,"verifiability_score":85,"original_research_score":88}}`}
	ev := NewEvaluator(testConfig(), EvaluatorDeps{Model: model, Metrics: &recordingMetrics{}})

	const n = 64
	results := make([]domain.EvaluationResult, n)

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			results[i] = ev.Evaluate(context.Background(), domain.ArticleInput{Text: historicalArticle})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, r := range results {
		assert.Equal(t, 88, r.OverallScore)
		assert.True(t, r.PassesThreshold)
	}
	assert.Equal(t, n, model.calls())
}

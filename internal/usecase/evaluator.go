package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ArticleEvaluator/internal/domain"
	"ArticleEvaluator/internal/ports"
)

// Messages returned inside fallback results.
const (
	MsgInvalidEncoding    = "Article contains invalid characters. Please use UTF-8 encoded text."
	MsgServiceUnavailable = "Evaluation service temporarily unavailable. Please try again in a moment."
	MsgUnparseable        = "Unable to parse evaluation response. Please try again."
	MsgInvalidFormat      = "Invalid evaluation response format."
	MsgNoFeedback         = "No specific feedback provided."
)

// Outcome labels used for logs and metrics.
const (
	OutcomeOK                = "ok"
	OutcomeInputTooLong      = "input_too_long"
	OutcomeInvalidEncoding   = "invalid_encoding"
	OutcomeModelCallFailure  = "model_call_failure"
	OutcomeResponseParse     = "response_parse_failure"
	OutcomeResponseStructure = "response_structure_invalid"
)

// EvaluatorConfig is the read-only evaluation policy loaded at startup.
type EvaluatorConfig struct {
	QualityThreshold float64
	MaxArticleLength int
	Weights          domain.Weights
	Model            string
	Temperature      float64
	// RequestTimeout bounds the model call; zero leaves the caller's context alone.
	RequestTimeout time.Duration
	// Debug appends model-call error details to the unavailable message.
	Debug bool
}

// EvaluatorDeps wires the driven adapters into the evaluator.
type EvaluatorDeps struct {
	Model   ports.ChatModel
	Metrics ports.EvaluationMetrics
	Logger  *slog.Logger
}

// Evaluator runs the evaluation pipeline. It keeps no per-request state and
// is safe for concurrent use.
type Evaluator struct {
	cfg     EvaluatorConfig
	model   ports.ChatModel
	metrics ports.EvaluationMetrics
	logger  *slog.Logger
}

var _ ports.ArticleEvaluator = (*Evaluator)(nil)

// NewEvaluator constructs the evaluation orchestrator.
func NewEvaluator(cfg EvaluatorConfig, deps EvaluatorDeps) *Evaluator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Evaluator{
		cfg:     cfg,
		model:   deps.Model,
		metrics: metrics,
		logger:  logger,
	}
}

// failure ties an evaluation error to its kind and the user-facing message.
type failure struct {
	kind    error
	message string
	cause   error
}

func (f *failure) Error() string {
	if f.cause == nil {
		return f.kind.Error()
	}
	return fmt.Sprintf("%s: %v", f.kind, f.cause)
}

func (f *failure) Unwrap() []error {
	if f.cause == nil {
		return []error{f.kind}
	}
	return []error{f.kind, f.cause}
}

// Evaluate scores the article. Every failure is returned as a fallback result.
func (e *Evaluator) Evaluate(ctx context.Context, input domain.ArticleInput) domain.EvaluationResult {
	start := time.Now()
	log := e.logger.With("evaluation_id", uuid.NewString())

	result, err := e.evaluate(ctx, input, log)
	if err != nil {
		outcome := outcomeOf(err)
		var f *failure
		if !errors.As(err, &f) {
			f = &failure{kind: domain.ErrModelCall, message: MsgServiceUnavailable, cause: err}
		}
		message := f.message
		if e.cfg.Debug && errors.Is(f.kind, domain.ErrModelCall) && f.cause != nil {
			message = fmt.Sprintf("%s (Debug: %v)", f.message, f.cause)
		}

		log.Warn("evaluation degraded", "outcome", outcome, "error", err)
		e.metrics.ObserveEvaluation(outcome, time.Since(start))
		return domain.FallbackResult(message)
	}

	log.Info("evaluation finished",
		"overall_score", result.OverallScore,
		"passes_threshold", result.PassesThreshold,
		"feedback", len(result.Feedback))
	e.metrics.ObserveEvaluation(OutcomeOK, time.Since(start))
	return result
}

func (e *Evaluator) evaluate(ctx context.Context, input domain.ArticleInput, log *slog.Logger) (domain.EvaluationResult, error) {
	if n := domain.TextLength(input.Text); n > e.cfg.MaxArticleLength {
		return domain.EvaluationResult{}, &failure{
			kind: domain.ErrInputTooLong,
			message: fmt.Sprintf("Article too long (%d chars). Maximum allowed: %d characters.",
				n, e.cfg.MaxArticleLength),
		}
	}

	if !utf8.ValidString(input.Text) || !utf8.ValidString(input.Title) {
		return domain.EvaluationResult{}, &failure{kind: domain.ErrInvalidEncoding, message: MsgInvalidEncoding}
	}

	prompt := BuildPrompt(input.Text, input.Title)

	raw, err := e.complete(ctx, prompt)
	if err != nil {
		return domain.EvaluationResult{}, &failure{kind: domain.ErrModelCall, message: MsgServiceUnavailable, cause: err}
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		return domain.EvaluationResult{}, &failure{kind: domain.ErrResponseParse, message: MsgUnparseable, cause: err}
	}

	evaluation, err := checkResponse(parsed)
	if err != nil {
		return domain.EvaluationResult{}, &failure{kind: domain.ErrResponseStructure, message: MsgInvalidFormat, cause: err}
	}

	if untagged := untaggedFeedback(evaluation.Feedback); untagged > 0 {
		log.Warn("feedback without severity prefix", "entries", untagged)
		e.metrics.AddUntaggedFeedback(untagged)
	}

	feedback := evaluation.Feedback
	if feedback == nil {
		feedback = []string{MsgNoFeedback}
	}

	overall, passes := domain.Aggregate(evaluation.Scores, e.cfg.Weights, e.cfg.QualityThreshold)
	return domain.EvaluationResult{
		OverallScore:    overall,
		PassesThreshold: passes,
		Breakdown:       evaluation.Scores.Breakdown(),
		Feedback:        feedback,
	}, nil
}

func (e *Evaluator) complete(ctx context.Context, prompt string) (string, error) {
	if e.model == nil {
		return "", errors.New("chat model is not configured")
	}

	if e.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := e.model.Complete(ctx, ports.CompletionRequest{
		Model:        e.cfg.Model,
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		Temperature:  e.cfg.Temperature,
		JSONObject:   true,
	})
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
	}
	e.metrics.ObserveModelCall(status, time.Since(start))

	return raw, err
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInputTooLong):
		return OutcomeInputTooLong
	case errors.Is(err, domain.ErrInvalidEncoding):
		return OutcomeInvalidEncoding
	case errors.Is(err, domain.ErrResponseParse):
		return OutcomeResponseParse
	case errors.Is(err, domain.ErrResponseStructure):
		return OutcomeResponseStructure
	default:
		return OutcomeModelCallFailure
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvaluation(string, time.Duration) {}
func (noopMetrics) ObserveModelCall(string, time.Duration)  {}
func (noopMetrics) AddUntaggedFeedback(int)                 {}

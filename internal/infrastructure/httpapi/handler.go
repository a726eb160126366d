package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"ArticleEvaluator/internal/domain"
	"ArticleEvaluator/internal/ports"
)

// ServiceInfo is echoed by the metadata and health endpoints.
type ServiceInfo struct {
	Title            string
	Version          string
	Environment      string
	Model            string
	QualityThreshold float64
	OpenAIConfigured bool
}

// Limits bound the article text accepted at the boundary.
type Limits struct {
	MinLength int
	MaxLength int
}

// HandlerDeps wires the use cases into the HTTP handlers.
type HandlerDeps struct {
	Evaluator ports.ArticleEvaluator
	// Drafts enables POST /evaluate/url when set.
	Drafts ports.DraftSource
	Info   ServiceInfo
	Limits Limits
	Logger *slog.Logger
}

// Handler serves the evaluation API.
type Handler struct {
	evaluator ports.ArticleEvaluator
	drafts    ports.DraftSource
	info      ServiceInfo
	limits    Limits
	logger    *slog.Logger
}

// NewHandler builds the route handlers.
func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		evaluator: deps.Evaluator,
		drafts:    deps.Drafts,
		info:      deps.Info,
		limits:    deps.Limits,
		logger:    logger,
	}
}

// Text fields stay raw so unpaired surrogate escapes survive decoding.
type evaluateRequest struct {
	ArticleText json.RawMessage `json:"article_text"`
	Title       json.RawMessage `json:"title"`
}

type evaluateURLRequest struct {
	URL   *string         `json:"url"`
	Title json.RawMessage `json:"title"`
}

type rootResponse struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type healthResponse struct {
	Status           string  `json:"status"`
	OpenAIConfigured bool    `json:"openai_configured"`
	Model            string  `json:"model"`
	QualityThreshold float64 `json:"quality_threshold"`
	Environment      string  `json:"environment"`
}

// Root reports service metadata.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{
		Message:     h.info.Title,
		Status:      "active",
		Version:     h.info.Version,
		Environment: h.info.Environment,
	})
}

// Health reports liveness and whether model credentials are present.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:           "healthy",
		OpenAIConfigured: h.info.OpenAIConfigured,
		Model:            h.info.Model,
		QualityThreshold: h.info.QualityThreshold,
		Environment:      h.info.Environment,
	})
}

// Evaluate scores an article submitted as text. Evaluation failures come back
// as 200 with a fallback result; only boundary checks produce error statuses.
func (h *Handler) Evaluate(c echo.Context) error {
	var req evaluateRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	text, present, err := stringField(req.ArticleText)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !present {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "article_text is required")
	}
	title, _, err := stringField(req.Title)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := h.checkText(text); err != nil {
		return err
	}

	result := h.evaluator.Evaluate(c.Request().Context(), domain.ArticleInput{
		Text:  text,
		Title: title,
	})
	return c.JSON(http.StatusOK, result)
}

// EvaluateURL imports a draft from an allowed page and scores it.
func (h *Handler) EvaluateURL(c echo.Context) error {
	var req evaluateURLRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.URL == nil || strings.TrimSpace(*req.URL) == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "url is required")
	}
	title, _, err := stringField(req.Title)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	draft, err := h.drafts.FetchDraft(ctx, *req.URL)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnsupportedDraftURL):
		return echo.NewHTTPError(http.StatusBadRequest, "URL must be an absolute http or https URL")
	case errors.Is(err, domain.ErrSourceNotAllowed):
		return echo.NewHTTPError(http.StatusBadRequest, "URL host is not an allowed draft source")
	case errors.Is(err, domain.ErrDraftEmpty):
		return echo.NewHTTPError(http.StatusBadRequest, "Article text cannot be empty")
	default:
		h.logger.Warn("draft fetch failed", "url", *req.URL, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Unable to fetch draft page")
	}

	input := draft.Input(title)
	if err := h.checkText(input.Text); err != nil {
		return err
	}

	h.logger.Info("evaluating imported draft", "source", draft.Source, "url", draft.URL, "chars", domain.TextLength(input.Text))
	return c.JSON(http.StatusOK, h.evaluator.Evaluate(ctx, input))
}

func (h *Handler) checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Article text cannot be empty")
	}

	n := domain.TextLength(text)
	if n < h.limits.MinLength {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Article text too short for meaningful evaluation (minimum %d characters)", h.limits.MinLength))
	}
	if n > h.limits.MaxLength {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Article text too long (max %d characters)", h.limits.MaxLength))
	}
	return nil
}

func decodeBody(c echo.Context, dst any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(dst); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return nil
}

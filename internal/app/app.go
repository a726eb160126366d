package app

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"ArticleEvaluator/internal/config"
	"ArticleEvaluator/internal/domain"
	"ArticleEvaluator/internal/extractor"
	"ArticleEvaluator/internal/infrastructure/httpapi"
	"ArticleEvaluator/internal/infrastructure/llm"
	"ArticleEvaluator/internal/infrastructure/metrics"
	"ArticleEvaluator/internal/infrastructure/parser"
	"ArticleEvaluator/internal/logging"
	"ArticleEvaluator/internal/usecase"
)

const draftFetchTimeout = 20 * time.Second

// Application wires configs to use cases and the HTTP server lifecycle.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	server *httpapi.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(registry)

	chatClient := llm.NewChatGPTClient(cfg.OpenAI)
	if !chatClient.Configured() {
		baseLogger.Warn("OPENAI_API_KEY is not set; evaluations will return the unavailable fallback")
	}

	evaluator := usecase.NewEvaluator(evaluatorConfig(cfg), usecase.EvaluatorDeps{
		Model:   chatClient,
		Metrics: collector,
		Logger:  baseLogger.With("component", "evaluator"),
	})

	extractors := extractor.NewRegistry(parser.MediaWikiExtractor{}, parser.GenericExtractor{})
	baseLogger.Debug("draft extractors registered", "extractors", extractors.Names())
	for _, source := range unknownExtractors(cfg.Sources, extractors.Names()) {
		baseLogger.Warn("draft source uses an unregistered extractor; its pages will be rejected",
			"source", source.Name, "extractor", source.Extractor)
	}
	drafts := parser.NewDraftSource(
		&http.Client{Timeout: draftFetchTimeout},
		extractors,
		cfg.Sources,
		baseLogger.With("component", "drafts"),
	)

	handler := httpapi.NewHandler(httpapi.HandlerDeps{
		Evaluator: evaluator,
		Drafts:    drafts,
		Info: httpapi.ServiceInfo{
			Title:            cfg.App.Title,
			Version:          cfg.App.Version,
			Environment:      cfg.Environment,
			Model:            cfg.OpenAI.Model,
			QualityThreshold: cfg.Evaluation.QualityThreshold,
			OpenAIConfigured: chatClient.Configured(),
		},
		Limits: httpapi.Limits{
			MinLength: cfg.Evaluation.MinArticleLength,
			MaxLength: cfg.Evaluation.MaxArticleLength,
		},
		Logger: baseLogger.With("component", "http"),
	})

	server := httpapi.NewServer(cfg.Server, handler, registry, baseLogger.With("component", "http"))

	return &Application{cfg: cfg, logger: baseLogger, server: server}
}

// Handler exposes the HTTP router.
func (a *Application) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", "addr", a.server.Addr(), "environment", a.cfg.Environment)
		return a.server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// unknownExtractors returns the sources whose extractor is not registered.
func unknownExtractors(sources []config.SourceConfig, registered []string) []config.SourceConfig {
	var unknown []config.SourceConfig
	for _, source := range sources {
		if !slices.Contains(registered, source.Extractor) {
			unknown = append(unknown, source)
		}
	}
	return unknown
}

func evaluatorConfig(cfg config.Config) usecase.EvaluatorConfig {
	return usecase.EvaluatorConfig{
		QualityThreshold: cfg.Evaluation.QualityThreshold,
		MaxArticleLength: cfg.Evaluation.MaxArticleLength,
		Weights: domain.Weights{
			NPOV:             cfg.Evaluation.Weights.NPOV,
			Verifiability:    cfg.Evaluation.Weights.Verifiability,
			OriginalResearch: cfg.Evaluation.Weights.OriginalResearch,
		},
		Model:          cfg.OpenAI.Model,
		Temperature:    cfg.OpenAI.Temperature,
		RequestTimeout: cfg.Evaluation.RequestTimeout,
		Debug:          cfg.Debug,
	}
}

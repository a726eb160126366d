package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticleEvaluator/internal/config"
	"ArticleEvaluator/internal/domain"
	"ArticleEvaluator/internal/extractor"
	"ArticleEvaluator/internal/ports"
)

const maxPageBytes = 5 << 20

// DraftSource implements ports.DraftSource via registered extractor strategies.
type DraftSource struct {
	client   *http.Client
	registry *extractor.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.DraftSource = (*DraftSource)(nil)

// NewDraftSource wires the extractor registry with config-defined sources.
func NewDraftSource(client *http.Client, reg *extractor.Registry, sources []config.SourceConfig, log *slog.Logger) *DraftSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &DraftSource{
		client:   client,
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchDraft downloads the page and extracts its article text. Only hosts
// listed in the configured sources are fetched.
func (s *DraftSource) FetchDraft(ctx context.Context, rawURL string) (domain.Draft, error) {
	if s.registry == nil {
		return domain.Draft{}, fmt.Errorf("extractor registry is not configured")
	}

	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return domain.Draft{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedDraftURL, rawURL)
	}

	source, ok := s.match(pageURL.Hostname())
	if !ok {
		return domain.Draft{}, fmt.Errorf("%w: %s", domain.ErrSourceNotAllowed, pageURL.Hostname())
	}

	strategy, err := s.registry.Resolve(source.Extractor)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("source %s: %w", source.Name, err)
	}

	s.debug("fetch draft", "source", source.Name, "extractor", source.Extractor, "url", pageURL.String())

	doc, err := s.fetchDocument(ctx, pageURL.String())
	if err != nil {
		return domain.Draft{}, fmt.Errorf("source %s: %w", source.Name, err)
	}

	draft, err := strategy.Extract(doc, pageURL.String())
	if err != nil {
		return domain.Draft{}, err
	}
	draft.Source = source.Name

	s.debug("draft extracted", "source", source.Name, "title", draft.Title, "bytes", len(draft.Text))
	return draft, nil
}

func (s *DraftSource) match(host string) (config.SourceConfig, bool) {
	host = strings.ToLower(host)
	for _, source := range s.sources {
		for _, pattern := range source.Hosts {
			pattern = strings.ToLower(strings.TrimSpace(pattern))
			if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
				if strings.HasSuffix(host, "."+suffix) {
					return source, true
				}
				continue
			}
			if host == pattern {
				return source, true
			}
		}
	}
	return config.SourceConfig{}, false
}

func (s *DraftSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ArticleEvaluator/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (s *DraftSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

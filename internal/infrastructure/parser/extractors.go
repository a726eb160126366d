package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticleEvaluator/internal/domain"
	"ArticleEvaluator/internal/extractor"
)

// MediaWikiExtractor reads rendered MediaWiki pages (Wikipedia and its drafts).
type MediaWikiExtractor struct{}

var _ extractor.Extractor = MediaWikiExtractor{}

// Name identifies the strategy inside the registry.
func (MediaWikiExtractor) Name() string {
	return "mediawiki"
}

// Extract collects the lead and body paragraphs. Citation markers such as
// [1] are kept since they signal sourcing to the evaluator.
func (MediaWikiExtractor) Extract(doc *goquery.Document, pageURL string) (domain.Draft, error) {
	title := cleanText(doc.Find("#firstHeading").First().Text())

	paragraphs := doc.Find("#mw-content-text .mw-parser-output").First().ChildrenFiltered("p")
	if paragraphs.Length() == 0 {
		paragraphs = doc.Find("#mw-content-text p")
	}

	return buildDraft(pageURL, title, paragraphs)
}

// GenericExtractor handles arbitrary article pages.
type GenericExtractor struct{}

var _ extractor.Extractor = GenericExtractor{}

// Name identifies the strategy inside the registry.
func (GenericExtractor) Name() string {
	return "generic"
}

// Extract prefers paragraphs inside <article> or <main>, then the whole body.
func (GenericExtractor) Extract(doc *goquery.Document, pageURL string) (domain.Draft, error) {
	title := cleanText(doc.Find("h1").First().Text())
	if title == "" {
		title = cleanText(doc.Find("title").First().Text())
	}

	var paragraphs *goquery.Selection
	for _, selector := range []string{"article p", "main p", "body p"} {
		paragraphs = doc.Find(selector)
		if paragraphs.Length() > 0 {
			break
		}
	}

	return buildDraft(pageURL, title, paragraphs)
}

func buildDraft(pageURL, title string, paragraphs *goquery.Selection) (domain.Draft, error) {
	var parts []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if text := cleanText(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	if len(parts) == 0 {
		return domain.Draft{}, fmt.Errorf("%w: %s", domain.ErrDraftEmpty, pageURL)
	}

	return domain.Draft{
		URL:   pageURL,
		Title: title,
		Text:  strings.Join(parts, "\n\n"),
	}, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TechPortfolio/internal/domain"
	"TechPortfolio/internal/scanner"
)

const defaultMaxPages = 20

var yearExpr = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// selectors locate the parts of one technology card on a listing page.
type selectors struct {
	item        string
	idAttr      string
	id          string
	title       string
	category    string
	field       string
	tags        string
	status      string
	year        string
	description string
	abstract    string
	patent      string
	inventors   string
	link        string
	next        string
}

func selectorsFor(req scanner.Request) selectors {
	return selectors{
		item:        req.Option("itemSelector", "article.technology"),
		idAttr:      req.Option("idAttribute", "data-id"),
		id:          req.Option("idSelector", ".tech-id"),
		title:       req.Option("titleSelector", ".tech-title"),
		category:    req.Option("categorySelector", ".tech-category"),
		field:       req.Option("fieldSelector", ".tech-field"),
		tags:        req.Option("tagSelector", ".tech-tags li"),
		status:      req.Option("statusSelector", ".tech-status"),
		year:        req.Option("yearSelector", ".tech-year"),
		description: req.Option("descriptionSelector", ".tech-summary"),
		abstract:    req.Option("abstractSelector", ".tech-abstract"),
		patent:      req.Option("patentSelector", ".tech-patent"),
		inventors:   req.Option("inventorSelector", ".tech-inventors li"),
		link:        req.Option("linkSelector", "a.tech-link"),
		next:        req.Option("nextSelector", "a[rel=next]"),
	}
}

// ListingScanner crawls technology listing pages and extracts portfolio items.
type ListingScanner struct {
	client   *http.Client
	logger   *slog.Logger
	maxPages int
}

// NewListingScanner wires an HTTP client; maxPages defaults to 20 per configured page.
func NewListingScanner(client *http.Client, logger *slog.Logger) *ListingScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ListingScanner{client: client, logger: logger, maxPages: defaultMaxPages}
}

// Name identifies the strategy inside the registry.
func (l *ListingScanner) Name() string {
	return "listing"
}

// Scan walks every configured page, following pagination links, and returns unique items.
func (l *ListingScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.PortfolioItem, error) {
	if len(req.Pages) == 0 {
		return nil, fmt.Errorf("no pages provided for site %s", req.SiteName)
	}

	sel := selectorsFor(req)
	maxPages := l.maxPages
	if v, err := strconv.Atoi(req.Option("maxPages", "")); err == nil && v > 0 {
		maxPages = v
	}

	results := make([]domain.PortfolioItem, 0)
	seen := map[string]struct{}{}

	for _, page := range req.Pages {
		visited := map[string]struct{}{}
		pageURL := page.URL

		for n := 0; n < maxPages && pageURL != ""; n++ {
			if _, ok := visited[pageURL]; ok {
				break
			}
			visited[pageURL] = struct{}{}

			base, err := url.Parse(pageURL)
			if err != nil {
				return nil, fmt.Errorf("page %s: invalid url %s: %w", page.Name, pageURL, err)
			}

			doc, err := l.fetchDocument(ctx, pageURL)
			if err != nil {
				return nil, fmt.Errorf("page %s: %w", page.Name, err)
			}

			for _, item := range l.extractItems(doc, sel, base) {
				if _, ok := seen[item.ID]; ok {
					continue
				}
				seen[item.ID] = struct{}{}
				results = append(results, item)
			}

			pageURL = nextPageURL(doc, sel.next, base)
		}
	}

	return results, nil
}

func (l *ListingScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TechPortfolio/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (l *ListingScanner) extractItems(doc *goquery.Document, sel selectors, base *url.URL) []domain.PortfolioItem {
	var collected []domain.PortfolioItem

	doc.Find(sel.item).Each(func(i int, card *goquery.Selection) {
		item, err := parseEntry(card, sel, base)
		if err != nil {
			if l.logger != nil {
				l.logger.Debug("skip listing entry", "index", i, "error", err)
			}
			return
		}
		collected = append(collected, item)
	})

	return collected
}

func parseEntry(card *goquery.Selection, sel selectors, base *url.URL) (domain.PortfolioItem, error) {
	link := resolveLink(card.Find(sel.link).First(), base)

	id, _ := card.Attr(sel.idAttr)
	id = strings.TrimSpace(id)
	if id == "" {
		id = text(card, sel.id)
	}
	if id == "" {
		id = link
	}
	if id == "" {
		return domain.PortfolioItem{}, fmt.Errorf("entry has no identifier")
	}

	title := text(card, sel.title)
	if title == "" {
		return domain.PortfolioItem{}, fmt.Errorf("entry %s has no title", id)
	}

	return domain.PortfolioItem{
		ID:           id,
		Title:        title,
		Category:     text(card, sel.category),
		Field:        text(card, sel.field),
		Tags:         texts(card, sel.tags),
		Status:       text(card, sel.status),
		Year:         yearExpr.FindString(text(card, sel.year)),
		Description:  text(card, sel.description),
		Abstract:     text(card, sel.abstract),
		PatentNumber: text(card, sel.patent),
		Inventors:    texts(card, sel.inventors),
		URL:          link,
	}, nil
}

func text(card *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(card.Find(selector).First().Text()), " ")
}

func texts(card *goquery.Selection, selector string) []string {
	var out []string
	card.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v := strings.Join(strings.Fields(s.Text()), " "); v != "" {
			out = append(out, v)
		}
	})
	return out
}

func resolveLink(a *goquery.Selection, base *url.URL) string {
	href, ok := a.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func nextPageURL(doc *goquery.Document, selector string, base *url.URL) string {
	return resolveLink(doc.Find(selector).First(), base)
}

package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"postpilot/helpers"
	"postpilot/models"
)

// Client queries Event Registry for recent articles.
type Client struct {
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// Query describes one article search.
type Query struct {
	Terms          []string
	Country        string
	StartDate      string
	DataTypes      []string
	SourceLanguage string
	MaxResults     int
}

const descriptionLimit = 280

func NewClient(apiKey, baseURL string, logger *slog.Logger) *Client {
	return &Client{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Search returns up to q.MaxResults articles matching any of the terms,
// deduplicated by URL and ordered most-recent-first.
func (c *Client) Search(ctx context.Context, q Query) ([]models.Article, error) {
	terms := cleanTerms(q.Terms)
	if len(terms) == 0 {
		return nil, nil
	}

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	if maxResults > 500 {
		maxResults = 500
	}

	since := parseStartDate(q.StartDate)

	body := articleSearchRequest{
		Action:         "getArticles",
		Keyword:        terms,
		KeywordOper:    "or",
		ArticlesPage:   1,
		ArticlesCount:  maxResults,
		ArticlesSortBy: "rel",
		DataType:       normalizeDataTypes(q.DataTypes),
		DateStart:      since.Format("2006-01-02"),
		Lang:           mapLanguage(q.SourceLanguage),
		ResultType:     "articles",
		APIKey:         c.apiKey,
	}

	if q.Country != "" {
		// Best effort: an unresolvable country just widens the search.
		if uri, err := c.lookupLocation(ctx, q.Country); err == nil {
			body.SourceLocationURI = uri
		} else {
			c.logger.Warn("Country lookup failed, searching without location filter", "country", q.Country, "error", err)
		}
	}

	resp, err := helpers.MakeHTTPRequest[articleSearchResponse](
		ctx, c.logger, "POST", c.baseURL+"/article/getArticles", nil, nil, body,
	)
	if err != nil {
		return nil, fmt.Errorf("event registry request failed: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("event registry: %s", resp.Error)
	}

	now := time.Now().UTC()
	seen := make(map[string]bool)
	var articles []models.Article
	for _, r := range resp.Articles.Results {
		published := r.DateTimePub
		if published == "" {
			published = r.DateTime
		}
		if r.URL == "" || published == "" || seen[r.URL] {
			continue
		}
		if !withinRange(published, since, now) {
			continue
		}
		seen[r.URL] = true

		source := r.Source.Title
		if source == "" {
			source = r.Source.URI
		}
		articles = append(articles, models.Article{
			Title:       r.Title,
			URL:         r.URL,
			Description: truncateDescription(r.Body),
			PublishedAt: published,
			Source:      source,
		})
	}

	// ISO timestamps sort chronologically as strings.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt > articles[j].PublishedAt
	})
	if len(articles) > maxResults {
		articles = articles[:maxResults]
	}

	c.logger.Info("Article search finished", "terms", terms, "found", len(articles))
	return articles, nil
}

// CompanyLookup fetches a handful of recent articles mentioning the company
// in the context of the topic, tagging each result with the company name.
func (c *Client) CompanyLookup(ctx context.Context, company, topic string, terms []string, limit int) ([]models.Article, error) {
	query := []string{company}
	if topic != "" {
		query = append(query, topic)
	}
	for _, t := range terms {
		if len(query) >= 4 {
			break
		}
		if !strings.EqualFold(t, company) {
			query = append(query, t)
		}
	}

	if limit <= 0 {
		limit = 5
	}
	articles, err := c.Search(ctx, Query{Terms: []string{strings.Join(query, " ")}, MaxResults: limit})
	if err != nil {
		return nil, err
	}

	var tagged []models.Article
	for _, a := range articles {
		combined := strings.ToLower(a.Title + " " + a.Description)
		if !strings.Contains(combined, strings.ToLower(company)) {
			continue
		}
		a.Company = company
		tagged = append(tagged, a)
	}
	return tagged, nil
}

func (c *Client) lookupLocation(ctx context.Context, country string) (string, error) {
	params := url.Values{}
	params.Set("prefix", country)
	params.Set("apiKey", c.apiKey)

	suggestions, err := helpers.MakeHTTPRequest[[]locationSuggestion](
		ctx, c.logger, "GET", c.baseURL+"/suggestLocationsFast", nil, params, nil,
	)
	if err != nil {
		return "", err
	}
	if len(suggestions) == 0 || suggestions[0].WikiURI == "" {
		return "", fmt.Errorf("no location match for %q", country)
	}
	return suggestions[0].WikiURI, nil
}

func cleanTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeDataTypes(types []string) []string {
	valid := map[string]bool{"news": true, "blog": true, "pr": true}
	var out []string
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "blogs" {
			t = "blog"
		}
		if valid[t] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{"news"}
	}
	return out
}

// parseStartDate accepts a date or timestamp and defaults to 24h ago.
func parseStartDate(value string) time.Time {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "02-01-2006"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC().Add(-24 * time.Hour)
}

func withinRange(published string, start, end time.Time) bool {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, published); err == nil {
			t = t.UTC()
			return !t.Before(start) && !t.After(end.Add(time.Minute))
		}
	}
	return false
}

var languageCodes = map[string]string{
	"english": "eng", "en": "eng", "eng": "eng",
	"spanish": "spa", "es": "spa", "spa": "spa",
	"french": "fra", "fr": "fra", "fra": "fra",
	"german": "deu", "de": "deu", "deu": "deu",
	"italian": "ita", "it": "ita", "ita": "ita",
	"portuguese": "por", "pt": "por", "por": "por",
	"dutch": "nld", "nl": "nld", "nld": "nld",
	"japanese": "jpn", "ja": "jpn", "jpn": "jpn",
	"chinese": "zho", "zh": "zho", "zho": "zho",
}

func mapLanguage(language string) string {
	key := strings.ToLower(strings.TrimSpace(language))
	if code, ok := languageCodes[key]; ok {
		return code
	}
	// "en-GB" style tags fall back to their base language.
	if i := strings.IndexAny(key, "-_"); i > 0 {
		if code, ok := languageCodes[key[:i]]; ok {
			return code
		}
	}
	return ""
}

func truncateDescription(body string) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) > descriptionLimit {
		body = string([]rune(body)[:descriptionLimit])
	}
	return body
}

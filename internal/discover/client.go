// Package discover finds candidate articles for a statement through a
// search API. It is the first collaborator in the pipeline: everything
// downstream operates on the closed set of URLs discovered here.
package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/worker"
)

// maxLimit caps how many results a single search may request.
const maxLimit = 20

// nonTextualHosts are media platforms whose pages carry no extractable
// article text. Results from these hosts are dropped at discovery.
var nonTextualHosts = []string{
	"vimeo.com",
	"tiktok.com",
	"instagram.com",
}

// Client talks to a firecrawl-style search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limit      int
	limiter    *worker.Limiter
}

// NewClient creates a search client from the discovery configuration.
func NewClient(cfg model.DiscoverConfig) *Client {
	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		limit:      limit,
		limiter:    worker.NewLimiter(cfg.Rate, 5),
	}
}

type searchRequest struct {
	Query         string        `json:"query"`
	Limit         int           `json:"limit"`
	Sources       []string      `json:"sources"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats []scrapeFormat `json:"formats"`
}

type scrapeFormat struct {
	Type   string          `json:"type"`
	Schema json.RawMessage `json:"schema"`
	Prompt string          `json:"prompt"`
}

// sourceInfoSchema asks the search collaborator to return structured
// publisher metadata per result instead of bare links.
const sourceInfoSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"url": {"type": "string"},
		"description": {"type": "string"},
		"source_name": {"type": "string"},
		"source_class": {"type": "string"},
		"source_country": {"type": "string"},
		"publish_date": {"type": "string", "format": "date"}
	},
	"required": ["url"]
}`

const sourceInfoPrompt = "Extract the following fields for this result: " +
	"title of the article, direct URL, a brief description, " +
	"the name of the publication (source_name), the country of the publication (source_country), " +
	"the publication source class (state_media/mainstream/partisan/unknown), " +
	"and the publication date in ISO 8601 format."

type searchResult struct {
	URL   string          `json:"url"`
	Title string          `json:"title"`
	JSON  *structuredInfo `json:"json"`
}

// structuredInfo is the per-result metadata produced by the scrape schema.
// Absent when the collaborator could not structure the page.
type structuredInfo struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	SourceName  string `json:"source_name"`
	SourceClass string `json:"source_class"`
	Country     string `json:"source_country"`
	PublishDate string `json:"publish_date"`
}

type searchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Web  []searchResult `json:"web"`
		News []searchResult `json:"news"`
	} `json:"data"`
}

// Search queries for articles covering the statement. News results come
// before general web results; duplicates and non-textual hosts are
// dropped. Returns model.ErrNoUpstreamData when nothing usable is found.
func (c *Client) Search(ctx context.Context, statement string) ([]model.Source, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("discovery API key not configured")
	}

	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(searchRequest{
		Query:   statement,
		Limit:   c.limit,
		Sources: []string{"news", "web"},
		ScrapeOptions: scrapeOptions{
			Formats: []scrapeFormat{{
				Type:   "json",
				Schema: json.RawMessage(sourceInfoSchema),
				Prompt: sourceInfoPrompt,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4_000_000))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("search failed: %s", parsed.Error)
	}

	sources := collect([]resultGroup{
		{sourceType: "news", results: parsed.Data.News},
		{sourceType: "web", results: parsed.Data.Web},
	})
	if len(sources) == 0 {
		return nil, model.ErrNoUpstreamData
	}
	return sources, nil
}

type resultGroup struct {
	sourceType string
	results    []searchResult
}

// collect merges result groups in order, deduplicating by URL and
// skipping empty URLs and non-textual hosts. Structured metadata wins
// over the bare result fields when both are present; the source type
// comes from the group the result arrived in.
func collect(groups []resultGroup) []model.Source {
	seen := make(map[string]bool)
	var sources []model.Source
	for _, group := range groups {
		for _, r := range group.results {
			src := model.Source{
				URL:        r.URL,
				Title:      r.Title,
				SourceType: group.sourceType,
			}
			if info := r.JSON; info != nil {
				if info.URL != "" {
					src.URL = info.URL
				}
				if info.Title != "" {
					src.Title = info.Title
				}
				src.SourceName = info.SourceName
				src.SourceClass = info.SourceClass
				src.Country = info.Country
				src.PublishDate = info.PublishDate
			}
			if src.URL == "" || seen[src.URL] || nonTextual(src.URL) {
				continue
			}
			seen[src.URL] = true
			sources = append(sources, src)
		}
	}
	return sources
}

// nonTextual reports whether the URL points at a media platform with no
// extractable article text.
func nonTextual(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	for _, h := range nonTextualHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

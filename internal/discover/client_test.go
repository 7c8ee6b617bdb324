package discover

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkrasavin/contrario/internal/model"
)

func testConfig(baseURL string) model.DiscoverConfig {
	return model.DiscoverConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Limit:   5,
		Timeout: 5 * time.Second,
		Rate:    100,
	}
}

func TestSearch_ParsesAndDeduplicates(t *testing.T) {
	var gotAuth string
	var gotReq searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := searchResponse{Success: true}
		resp.Data.News = []searchResult{
			{URL: "https://news.example/a", Title: "A"},
			{URL: "https://news.example/b", Title: "B"},
		}
		resp.Data.Web = []searchResult{
			{URL: "https://news.example/a", Title: "A again"},
			{URL: "https://web.example/c", Title: "C"},
			{URL: ""},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	sources, err := c.Search(context.Background(), "company x raised prices")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotReq.Query != "company x raised prices" || gotReq.Limit != 5 {
		t.Errorf("unexpected request: %+v", gotReq)
	}

	want := []string{"https://news.example/a", "https://news.example/b", "https://web.example/c"}
	if len(sources) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(sources))
	}
	for i, u := range want {
		if sources[i].URL != u {
			t.Errorf("source %d: got %q, want %q", i, sources[i].URL, u)
		}
	}
}

func TestSearch_StructuredMetadata(t *testing.T) {
	var gotReq searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := searchResponse{Success: true}
		resp.Data.News = []searchResult{
			{
				URL:   "https://news.example/raw",
				Title: "Raw title",
				JSON: &structuredInfo{
					URL:         "https://news.example/canonical",
					Title:       "Structured title",
					SourceName:  "Example News",
					SourceClass: "mainstream",
					Country:     "US",
					PublishDate: "2026-01-15",
				},
			},
		}
		resp.Data.Web = []searchResult{
			{URL: "https://web.example/c", Title: "C"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	sources, err := c.Search(context.Background(), "s")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// The request must carry the structured-extraction schema
	if len(gotReq.ScrapeOptions.Formats) != 1 {
		t.Fatalf("expected 1 scrape format, got %d", len(gotReq.ScrapeOptions.Formats))
	}
	format := gotReq.ScrapeOptions.Formats[0]
	if format.Type != "json" {
		t.Errorf("unexpected scrape format type %q", format.Type)
	}
	for _, field := range []string{"source_name", "source_class", "source_country", "publish_date"} {
		if !strings.Contains(string(format.Schema), field) {
			t.Errorf("schema missing %q", field)
		}
	}

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}

	// Structured metadata wins over the bare result fields
	got := sources[0]
	if got.URL != "https://news.example/canonical" {
		t.Errorf("structured URL not preferred: %q", got.URL)
	}
	if got.Title != "Structured title" {
		t.Errorf("structured title not preferred: %q", got.Title)
	}
	if got.SourceName != "Example News" || got.SourceClass != "mainstream" ||
		got.Country != "US" || got.PublishDate != "2026-01-15" {
		t.Errorf("metadata not mapped: %+v", got)
	}
	if got.SourceType != "news" {
		t.Errorf("expected source type from group, got %q", got.SourceType)
	}

	// Bare results still pass through with just the group type
	if sources[1].URL != "https://web.example/c" || sources[1].SourceType != "web" {
		t.Errorf("unexpected bare result: %+v", sources[1])
	}
}

func TestSearch_SkipsNonTextualHosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := searchResponse{Success: true}
		resp.Data.Web = []searchResult{
			{URL: "https://www.tiktok.com/@x/video/1"},
			{URL: "https://vimeo.com/12345"},
			{URL: "https://sub.instagram.com/p/abc"},
			{URL: "https://text.example/article"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	sources, err := c.Search(context.Background(), "s")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(sources) != 1 || sources[0].URL != "https://text.example/article" {
		t.Errorf("unexpected sources: %+v", sources)
	}
}

func TestSearch_EmptyResultsIsMissingUpstreamData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Success: true})
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	_, err := c.Search(context.Background(), "s")
	if !errors.Is(err, model.ErrNoUpstreamData) {
		t.Errorf("expected ErrNoUpstreamData, got %v", err)
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	if _, err := c.Search(context.Background(), "s"); err == nil {
		t.Error("expected an error on a 502 response")
	}
}

func TestSearch_MissingAPIKey(t *testing.T) {
	cfg := testConfig("https://api.example")
	cfg.APIKey = ""
	c := NewClient(cfg)
	if _, err := c.Search(context.Background(), "s"); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestNewClient_CapsLimit(t *testing.T) {
	cfg := testConfig("https://api.example")
	cfg.Limit = 50
	if c := NewClient(cfg); c.limit != maxLimit {
		t.Errorf("limit not capped: %d", c.limit)
	}
	cfg.Limit = 0
	if c := NewClient(cfg); c.limit != 5 {
		t.Errorf("zero limit not defaulted: %d", c.limit)
	}
}

func TestNonTextual(t *testing.T) {
	cases := map[string]bool{
		"https://www.tiktok.com/@x":   true,
		"https://instagram.com/p/a":   true,
		"https://m.vimeo.com/1":       true,
		"https://nottiktok.com/x":     false,
		"https://news.example/tiktok": false,
	}
	for u, want := range cases {
		if got := nonTextual(u); got != want {
			t.Errorf("nonTextual(%q) = %v, want %v", u, got, want)
		}
	}
}

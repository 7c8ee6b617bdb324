package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkrasavin/contrario/internal/model"
)

func testExtractConfig(baseURL string) model.ExtractConfig {
	return model.ExtractConfig{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		BatchSize:    5,
		PollInterval: 10 * time.Millisecond,
		JobTimeout:   500 * time.Millisecond,
		Workers:      2,
	}
}

// jobServer simulates the asynchronous extraction service: POST starts a
// job, GET /{id} reports status. pending controls how many polls return
// "processing" before the final status.
func jobServer(t *testing.T, pending int, finalStatus string, data jobData) *httptest.Server {
	t.Helper()
	var polls int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(startResponse{Success: true, ID: "job-1"})
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/job-1") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if atomic.AddInt32(&polls, 1) <= int32(pending) {
			json.NewEncoder(w).Encode(statusResponse{Success: true, Status: "processing"})
			return
		}
		raw, _ := json.Marshal(data)
		json.NewEncoder(w).Encode(statusResponse{Success: true, Status: finalStatus, Data: raw})
	}))
}

func TestExtractBatch_PollsUntilCompleted(t *testing.T) {
	data := jobData{Articles: []article{
		{
			URL:              "https://news.example/a",
			Title:            "A",
			SourceName:       "News Example",
			KeyClaims:        []wireClaim{{Text: "company x raised prices", Modality: "reported"}, {Text: "  "}},
			NarrativeSummary: "Company X raised prices.",
		},
	}}
	server := jobServer(t, 2, "completed", data)
	defer server.Close()

	c := NewClient(testExtractConfig(server.URL), false)
	sources, err := c.ExtractBatch(context.Background(), []string{"https://news.example/a"})
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	src := sources[0]
	if src.URL != "https://news.example/a" || src.SourceName != "News Example" {
		t.Errorf("unexpected source: %+v", src)
	}
	// the whitespace-only claim must be dropped
	if len(src.Claims) != 1 || src.Claims[0].Text != "company x raised prices" {
		t.Errorf("unexpected claims: %+v", src.Claims)
	}
}

func TestExtractBatch_JobFailed(t *testing.T) {
	server := jobServer(t, 0, "failed", jobData{})
	defer server.Close()

	c := NewClient(testExtractConfig(server.URL), false)
	_, err := c.ExtractBatch(context.Background(), []string{"https://news.example/a"})
	if !errors.Is(err, ErrJobFailed) {
		t.Errorf("expected ErrJobFailed, got %v", err)
	}
}

func TestExtractBatch_JobTimeout(t *testing.T) {
	// Job never leaves "processing"; the deadline must trip with the
	// timeout sentinel, not the failure one.
	server := jobServer(t, 1_000_000, "completed", jobData{})
	defer server.Close()

	cfg := testExtractConfig(server.URL)
	cfg.JobTimeout = 30 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond

	c := NewClient(cfg, false)
	_, err := c.ExtractBatch(context.Background(), []string{"https://news.example/a"})
	if !errors.Is(err, ErrJobTimeout) {
		t.Errorf("expected ErrJobTimeout, got %v", err)
	}
	if errors.Is(err, ErrJobFailed) {
		t.Error("timeout must not be classified as a job failure")
	}
}

func TestExtractAll_BatchFailureIsolation(t *testing.T) {
	// First batch (5 URLs) succeeds, second batch fails. The run keeps
	// the first batch's sources.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req startRequest
			json.NewDecoder(r.Body).Decode(&req)
			if len(req.URLs) > 5 {
				t.Errorf("batch too large: %d URLs", len(req.URLs))
			}
			if len(req.URLs) == 5 {
				json.NewEncoder(w).Encode(startResponse{Success: true, ID: "ok"})
			} else {
				json.NewEncoder(w).Encode(startResponse{Success: true, ID: "bad"})
			}
			return
		}
		if strings.HasSuffix(r.URL.Path, "/ok") {
			raw, _ := json.Marshal(jobData{Articles: []article{
				{URL: "https://a.example/1", NarrativeSummary: "summary one"},
				{URL: "https://a.example/2", NarrativeSummary: "summary two"},
			}})
			json.NewEncoder(w).Encode(statusResponse{Success: true, Status: "completed", Data: raw})
			return
		}
		json.NewEncoder(w).Encode(statusResponse{Success: true, Status: "failed", Error: "boom"})
	}))
	defer server.Close()

	c := NewClient(testExtractConfig(server.URL), false)
	urls := []string{
		"https://a.example/1", "https://a.example/2", "https://a.example/3",
		"https://a.example/4", "https://a.example/5", "https://a.example/6",
	}
	sources, err := c.ExtractAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources from the surviving batch, got %d", len(sources))
	}
}

func TestExtractAll_AllBatchesFail(t *testing.T) {
	server := jobServer(t, 0, "failed", jobData{})
	defer server.Close()

	c := NewClient(testExtractConfig(server.URL), false)
	_, err := c.ExtractAll(context.Background(), []string{"https://a.example/1"})
	if !errors.Is(err, model.ErrNoStructuredData) {
		t.Errorf("expected ErrNoStructuredData, got %v", err)
	}
}

func TestToSources_RecoversURLByPosition(t *testing.T) {
	data := &jobData{Articles: []article{
		{NarrativeSummary: "article with no url field"},
	}}
	sources := toSources(data, []string{"https://a.example/1"})
	if len(sources) != 1 || sources[0].URL != "https://a.example/1" {
		t.Errorf("URL not recovered: %+v", sources)
	}
}

func TestToSources_DropsEmptyArticles(t *testing.T) {
	data := &jobData{Articles: []article{
		{URL: "https://a.example/1", KeyClaims: []wireClaim{{Text: "   "}}},
	}}
	if sources := toSources(data, nil); len(sources) != 0 {
		t.Errorf("article with no claims and no summary must be dropped: %+v", sources)
	}
}

func TestChunk(t *testing.T) {
	urls := []string{"a", "b", "c", "d", "e", "f", "g"}
	batches := chunk(urls, 5)
	if len(batches) != 2 || len(batches[0]) != 5 || len(batches[1]) != 2 {
		t.Errorf("unexpected chunking: %v", batches)
	}
	if batches := chunk(nil, 5); len(batches) != 0 {
		t.Errorf("empty input must yield no batches, got %v", batches)
	}
}

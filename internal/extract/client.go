// Package extract turns discovered URLs into structured sources. The
// primary path is an asynchronous extraction API (start a job, poll until
// it resolves); when no API key is configured, a local fallback fetches
// pages directly and applies keyword heuristics.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/worker"
)

// Job lifecycle failures. A timeout means the deadline elapsed while the
// job was still processing; a failure means the service resolved the job
// as failed or cancelled.
var (
	ErrJobTimeout = errors.New("extraction job timed out")
	ErrJobFailed  = errors.New("extraction job failed")
)

// Client talks to a firecrawl-style asynchronous extraction endpoint.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	batchSize    int
	pollInterval time.Duration
	jobTimeout   time.Duration
	workers      int
	limiter      *worker.Limiter
	verbose      bool
}

// NewClient creates an extraction client from the extract configuration.
func NewClient(cfg model.ExtractConfig, verbose bool) *Client {
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > 5 {
		batchSize = 5
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	jobTimeout := cfg.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		jobTimeout:   jobTimeout,
		workers:      workers,
		limiter:      worker.NewLimiter(2, 5),
		verbose:      verbose,
	}
}

// Available reports whether the API path is configured.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != "" && c.baseURL != ""
}

// extractPrompt instructs the service what to pull out of each page.
const extractPrompt = `For each article, extract: title, source_name (publisher),
publish_date (ISO 8601 if known), source_type (news/blog/official/social/other),
source_class (mainstream/independent/state-affiliated/unknown), country,
key_claims (each with text, modality as stated in the article, and
blame_target if the claim assigns responsibility), narrative_summary
(3-5 sentences), statistics (notable figures with units), stance toward the
core subject, and bias_indicators (loaded language, one-sidedness).`

type startRequest struct {
	URLs   []string        `json:"urls"`
	Prompt string          `json:"prompt"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

type startResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

type statusResponse struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// article is the wire shape of one extracted source.
type article struct {
	URL              string      `json:"url"`
	Title            string      `json:"title"`
	SourceName       string      `json:"source_name"`
	PublishDate      string      `json:"publish_date"`
	SourceType       string      `json:"source_type"`
	SourceClass      string      `json:"source_class"`
	Country          string      `json:"country"`
	KeyClaims        []wireClaim `json:"key_claims"`
	NarrativeSummary string      `json:"narrative_summary"`
	Statistics       string      `json:"statistics"`
	Stance           string      `json:"stance"`
	BiasIndicators   string      `json:"bias_indicators"`
}

type wireClaim struct {
	Text        string `json:"text"`
	Modality    string `json:"modality"`
	BlameTarget string `json:"blame_target"`
	Evidence    string `json:"evidence"`
}

type jobData struct {
	Articles []article `json:"articles"`
}

// ExtractAll processes the URLs in batches of at most batchSize, running
// batches concurrently. A failed batch loses only its own URLs; if every
// batch fails or yields nothing usable, the error is
// model.ErrNoStructuredData.
func (c *Client) ExtractAll(ctx context.Context, urls []string) ([]model.Source, error) {
	if len(urls) == 0 {
		return nil, model.ErrNoStructuredData
	}

	batches := chunk(urls, c.batchSize)
	if c.verbose {
		fmt.Fprintf(os.Stderr, "Extracting %d URL(s) in %d batch(es)\n", len(urls), len(batches))
	}

	pool := worker.NewPool(c.workers)
	pool.Start()
	for i, batch := range batches {
		pool.Submit(&batchJob{client: c, ctx: ctx, index: i, urls: batch})
	}
	results := pool.Wait()

	// Reassemble in submission order
	byIndex := make([][]model.Source, len(batches))
	for _, r := range results {
		br := r.(*batchResult)
		if br.err != nil {
			fmt.Fprintf(os.Stderr, "Warning: extraction batch %d failed: %v\n", br.index+1, br.err)
			continue
		}
		byIndex[br.index] = br.sources
	}

	var sources []model.Source
	for _, group := range byIndex {
		sources = append(sources, group...)
	}
	if len(sources) == 0 {
		return nil, model.ErrNoStructuredData
	}
	return sources, nil
}

type batchJob struct {
	client *Client
	ctx    context.Context
	index  int
	urls   []string
}

type batchResult struct {
	index   int
	sources []model.Source
	err     error
}

func (r *batchResult) GetError() error { return r.err }

func (j *batchJob) Execute(_ context.Context) worker.Result {
	sources, err := j.client.ExtractBatch(j.ctx, j.urls)
	return &batchResult{index: j.index, sources: sources, err: err}
}

// ExtractBatch runs one extraction job for up to batchSize URLs: start the
// job, then poll at the configured interval until it resolves or the job
// deadline expires.
func (c *Client) ExtractBatch(ctx context.Context, urls []string) ([]model.Source, error) {
	jobID, err := c.startJob(ctx, urls)
	if err != nil {
		return nil, err
	}
	data, err := c.pollJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return toSources(data, urls), nil
}

func (c *Client) startJob(ctx context.Context, urls []string) (string, error) {
	payload, err := json.Marshal(startRequest{URLs: urls, Prompt: extractPrompt})
	if err != nil {
		return "", fmt.Errorf("encode extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("start extraction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1_000_000))
	if err != nil {
		return "", fmt.Errorf("read extract response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("extraction returned status %d", resp.StatusCode)
	}

	var parsed startResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode extract response: %w", err)
	}
	if !parsed.Success || parsed.ID == "" {
		return "", fmt.Errorf("%w: %s", ErrJobFailed, parsed.Error)
	}
	return parsed.ID, nil
}

// pollJob polls the job status endpoint until the job completes, fails,
// or the deadline passes. The poll cadence and deadline come from config.
func (c *Client) pollJob(ctx context.Context, jobID string) (*jobData, error) {
	deadline := time.Now().Add(c.jobTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.checkJob(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "completed":
			var data jobData
			if len(status.Data) > 0 {
				if err := json.Unmarshal(status.Data, &data); err != nil {
					return nil, fmt.Errorf("decode job data: %w", err)
				}
			}
			return &data, nil
		case "failed", "cancelled":
			return nil, fmt.Errorf("%w: status %q: %s", ErrJobFailed, status.Status, status.Error)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: job %s still %q after %s", ErrJobTimeout, jobID, status.Status, c.jobTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) checkJob(ctx context.Context, jobID string) (*statusResponse, error) {
	statusURL := strings.TrimSuffix(c.baseURL, "/") + "/" + jobID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("check job: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8_000_000))
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status check returned %d", resp.StatusCode)
	}

	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &parsed, nil
}

// toSources converts wire articles to model sources. Claims with empty
// text are dropped; articles with neither claims nor a summary are
// dropped entirely. When the service omits the URL, it is recovered by
// position from the request batch.
func toSources(data *jobData, urls []string) []model.Source {
	var sources []model.Source
	for i, a := range data.Articles {
		claims := make([]model.Claim, 0, len(a.KeyClaims))
		for _, kc := range a.KeyClaims {
			text := strings.TrimSpace(kc.Text)
			if text == "" {
				continue
			}
			claims = append(claims, model.Claim{
				Text:        text,
				Modality:    strings.TrimSpace(kc.Modality),
				BlameTarget: strings.TrimSpace(kc.BlameTarget),
				Evidence:    strings.TrimSpace(kc.Evidence),
			})
		}

		if len(claims) == 0 && strings.TrimSpace(a.NarrativeSummary) == "" {
			continue
		}

		url := a.URL
		if url == "" && i < len(urls) {
			url = urls[i]
		}

		sources = append(sources, model.Source{
			URL:              url,
			Title:            a.Title,
			SourceName:       a.SourceName,
			PublishDate:      a.PublishDate,
			SourceType:       a.SourceType,
			SourceClass:      a.SourceClass,
			Country:          a.Country,
			Claims:           claims,
			NarrativeSummary: strings.TrimSpace(a.NarrativeSummary),
			Statistics:       a.Statistics,
			Stance:           a.Stance,
			BiasIndicators:   a.BiasIndicators,
		})
	}
	return sources
}

// chunk splits urls into groups of at most size.
func chunk(urls []string, size int) [][]string {
	var batches [][]string
	for len(urls) > size {
		batches = append(batches, urls[:size])
		urls = urls[size:]
	}
	if len(urls) > 0 {
		batches = append(batches, urls)
	}
	return batches
}

package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/util"
)

// reportingKeywords flag sentences that attribute, assert or deny
// something. Sentences matching none of them are not treated as claims.
var reportingKeywords = []string{
	"according to", "reported", "reports", "claimed", "claims",
	"stated", "said", "announced", "denied", "denies", "refuted",
	"alleged", "allegedly", "confirmed", "accused", "suggests",
}

// Local extracts sources by fetching pages directly. It is the degraded
// path when no extraction API is configured: titles from the document,
// claims from keyword-flagged sentences, the summary from the leading
// sentences. Robots.txt is honored per host.
type Local struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	maxBytes   int64
	verbose    bool
}

// NewLocal creates a local extractor from the HTTP configuration.
func NewLocal(cfg model.HTTPConfig, verbose bool) *Local {
	return &Local{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		verbose:   verbose,
	}
}

// ExtractAll fetches each URL sequentially. Per-URL failures are warned
// and skipped; if nothing survives, the error is model.ErrNoStructuredData.
func (l *Local) ExtractAll(ctx context.Context, urls []string) ([]model.Source, error) {
	var sources []model.Source
	for _, u := range urls {
		if l.verbose {
			fmt.Fprintf(os.Stderr, "Fetching %s\n", u)
		}
		src, err := l.extractOne(ctx, u)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: local extraction of %s failed: %v\n", u, err)
			continue
		}
		if src != nil {
			sources = append(sources, *src)
		}
	}
	if len(sources) == 0 {
		return nil, model.ErrNoStructuredData
	}
	return sources, nil
}

func (l *Local) extractOne(ctx context.Context, rawURL string) (*model.Source, error) {
	if !l.robots.IsAllowed(ctx, rawURL) {
		return nil, fmt.Errorf("disallowed by robots.txt")
	}

	doc, err := l.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	title := documentTitle(doc)
	text := visibleText(doc)
	sentences := splitSentences(text)

	claims := keywordClaims(sentences)
	summary := leadingSummary(sentences)
	if len(claims) == 0 && summary == "" {
		return nil, fmt.Errorf("no extractable text")
	}

	return &model.Source{
		URL:              rawURL,
		Title:            title,
		SourceName:       hostOf(rawURL),
		SourceType:       "web",
		SourceClass:      "unknown",
		Claims:           claims,
		NarrativeSummary: summary,
	}, nil
}

func (l *Local) fetch(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

// documentTitle returns the first <title> text, trimmed.
func documentTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

// visibleText collects text nodes, skipping script, style, noscript and
// iframe subtrees.
func visibleText(doc *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String()
}

// splitSentences splits text at sentence terminators, keeping sentences
// of plausible article length (30 to 500 characters).
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				sentence := strings.TrimSpace(current.String())
				if len(sentence) >= 30 && len(sentence) <= 500 {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= 30 && len(sentence) <= 500 {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

// keywordClaims turns keyword-flagged sentences into claims, one match
// per sentence, deduplicated case-insensitively. The matched keyword
// doubles as the claim's modality word so the chain matcher can classify
// it.
func keywordClaims(sentences []string) []model.Claim {
	seen := make(map[string]bool)
	var claims []model.Claim
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, keyword := range reportingKeywords {
			if strings.Contains(lower, keyword) {
				key := strings.ToLower(strings.TrimSpace(sentence))
				if !seen[key] {
					seen[key] = true
					claims = append(claims, model.Claim{
						Text:     strings.TrimSpace(sentence),
						Modality: keyword,
					})
				}
				break
			}
		}
	}
	return claims
}

// leadingSummary joins the first few sentences as a stand-in for a
// narrative summary.
func leadingSummary(sentences []string) string {
	n := len(sentences)
	if n > 3 {
		n = 3
	}
	return strings.Join(sentences[:n], " ")
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

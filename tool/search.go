package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// SearchResult is one entry of a web search response.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// WebSearchTool queries the DuckDuckGo HTML endpoint and returns JSON-shaped
// results.
type WebSearchTool struct {
	client     *http.Client
	endpoint   string
	maxResults int
}

// WebSearchOption configures a WebSearchTool.
type WebSearchOption func(*WebSearchTool)

// WithSearchClient overrides the HTTP client (used in tests).
func WithSearchClient(c *http.Client) WebSearchOption {
	return func(t *WebSearchTool) { t.client = c }
}

// WithSearchEndpoint overrides the search endpoint URL.
func WithSearchEndpoint(endpoint string) WebSearchOption {
	return func(t *WebSearchTool) { t.endpoint = endpoint }
}

// WithSearchMaxResults caps the number of returned results.
func WithSearchMaxResults(n int) WebSearchOption {
	return func(t *WebSearchTool) { t.maxResults = n }
}

// NewWebSearchTool creates a WebSearchTool with a 15 second HTTP timeout.
func NewWebSearchTool(opts ...WebSearchOption) *WebSearchTool {
	t := &WebSearchTool{
		client:     &http.Client{Timeout: 15 * time.Second},
		endpoint:   "https://html.duckduckgo.com/html/",
		maxResults: 5,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web for information. Parameters: query (search query), max_results (maximum results, default 5)."
}

func (t *WebSearchTool) Schema() map[string]any {
	return ObjectSchema(map[string]any{
		"query":       StringProp("Search query"),
		"max_results": IntProp("Maximum number of results (default 5)"),
	}, "query")
}

var (
	resultLinkRe    = regexp.MustCompile(`<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, ok := StringArg(args, "query")
	if !ok || query == "" {
		return "", fmt.Errorf("query is required")
	}
	maxResults := t.maxResults
	if n, ok := IntArg(args, "max_results"); ok && n > 0 {
		maxResults = n
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "sama-agent/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "", fmt.Errorf("%w: search request", ErrTimeout)
		}
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}

	results := parseSearchResults(string(body), maxResults)

	payload := map[string]any{
		"query":         query,
		"engine":        "duckduckgo",
		"total_results": len(results),
		"results":       results,
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode search results: %w", err)
	}
	return string(out), nil
}

// parseSearchResults scrapes result links and snippets from the HTML page.
func parseSearchResults(page string, max int) []SearchResult {
	links := resultLinkRe.FindAllStringSubmatch(page, -1)
	snippets := resultSnippetRe.FindAllStringSubmatch(page, -1)

	results := make([]SearchResult, 0, max)
	for i, link := range links {
		if len(results) >= max {
			break
		}
		r := SearchResult{
			URL:   cleanResultURL(link[1]),
			Title: stripHTML(link[2]),
		}
		if i < len(snippets) {
			r.Body = stripHTML(snippets[i][1])
		}
		results = append(results, r)
	}
	return results
}

// cleanResultURL unwraps DuckDuckGo's redirect links (uddg parameter).
func cleanResultURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	return raw
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#x27;", "'")
	return strings.TrimSpace(s)
}

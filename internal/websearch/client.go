package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultEndpoint is the DuckDuckGo HTML search endpoint, which needs no
// API key.
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

const defaultMaxResults = 5

// Result is one search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Client runs web searches and parses the HTML result page.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxResults int
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the search endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxResults caps the number of results returned.
func WithMaxResults(n int) Option {
	return func(c *Client) { c.maxResults = n }
}

// NewClient creates a search client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the query and returns up to maxResults hits.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	reqURL := c.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; mailtriage/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("running search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a")
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())
		if title == "" {
			return true
		}
		results = append(results, Result{Title: title, URL: href, Snippet: snippet})
		return len(results) < c.maxResults
	})

	return results, nil
}

// FormatForPrompt renders search results as context for an LLM synthesis
// prompt.
func FormatForPrompt(query string, results []Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Answer the question using the search results below.\n\nQuestion: %s\n\n", query)
	if len(results) == 0 {
		sb.WriteString("No search results found.\n")
		return sb.String()
	}
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n\n", i+1, r.Title, r.Snippet)
	}
	sb.WriteString("Give a short, factual answer.")
	return sb.String()
}

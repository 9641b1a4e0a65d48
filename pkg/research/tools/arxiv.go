package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mikeboe/research-stream/pkg/research"
)

const ArxivBaseURL = "https://export.arxiv.org/api/query"

// ArxivEntry struct to hold arXiv entry data
type ArxivEntry struct {
	Title     string      `xml:"title"`
	Summary   string      `xml:"summary"`
	Published string      `xml:"published"`
	Link      []ArxivLink `xml:"link"`
}

// ArxivLink struct to hold arXiv link data
type ArxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
	Rel  string `xml:"rel,attr"`
}

// ArxivFeed struct to hold the entire arXiv feed
type ArxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entry   []ArxivEntry `xml:"entry"`
}

// Arxiv searches the arXiv Atom API. It needs no credentials.
type Arxiv struct {
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
}

func NewArxiv(maxResults int) *Arxiv {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Arxiv{
		BaseURL:    ArxivBaseURL,
		MaxResults: maxResults,
		HTTPClient: &http.Client{},
	}
}

func (a *Arxiv) Name() string { return "arXiv" }

// Search queries the arXiv API and converts the feed entries to results.
func (a *Arxiv) Search(ctx context.Context, query string) ([]research.SearchResult, error) {
	params := url.Values{}
	params.Add("search_query", "all:"+query)
	params.Add("max_results", strconv.Itoa(a.MaxResults))
	params.Add("start", "0") // Start from the first result

	apiURL := a.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "API returned non-200 status code", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("API returned non-200 status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var feed ArxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal XML: %w", err)
	}

	return feedResults(feed), nil
}

func feedResults(feed ArxivFeed) []research.SearchResult {
	results := make([]research.SearchResult, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		title := strings.Join(strings.Fields(entry.Title), " ")
		if title == "" {
			continue
		}
		results = append(results, research.SearchResult{
			Title:   title,
			URL:     entryURL(entry),
			Snippet: strings.TrimSpace(entry.Summary),
		})
	}
	return results
}

// entryURL prefers the PDF link and falls back to the abstract page.
func entryURL(entry ArxivEntry) string {
	var alternate string
	for _, link := range entry.Link {
		if link.Type == "application/pdf" {
			return link.Href
		}
		if link.Rel == "alternate" && alternate == "" {
			alternate = link.Href
		}
	}
	return alternate
}

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mikeboe/research-stream/pkg/research"
)

const (
	TavilyBaseURL    = "https://api.tavily.com"
	tavilyMaxResults = 20
)

// ErrMissingAPIKey is returned when a provider is constructed without credentials.
var ErrMissingAPIKey = errors.New("tools: api key is not set")

// Tavily is a client for the Tavily search API.
type Tavily struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

type tavilyError struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

// NewTavily creates a Tavily searcher returning at most maxResults results.
func NewTavily(apiKey string, maxResults int) (*Tavily, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY: %w", ErrMissingAPIKey)
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	if maxResults > tavilyMaxResults {
		maxResults = tavilyMaxResults
	}
	return &Tavily{
		APIKey:     apiKey,
		BaseURL:    TavilyBaseURL,
		MaxResults: maxResults,
		HTTPClient: &http.Client{},
	}, nil
}

func (t *Tavily) Name() string { return "Tavily" }

// Search queries Tavily and returns results in the order the API ranked them.
func (t *Tavily) Search(ctx context.Context, query string) ([]research.SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.APIKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  t.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr tavilyError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Detail.Error != "" {
			return nil, fmt.Errorf("tavily API error (status %d): %s", resp.StatusCode, apiErr.Detail.Error)
		}
		return nil, fmt.Errorf("API returned non-200 status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	results := make([]research.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, research.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
	}

	slog.DebugContext(ctx, "Tavily search complete", "query", query, "count", len(results))
	return results, nil
}

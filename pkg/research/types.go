package research

import "context"

// SearchResult represents a single search result
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score,omitempty"`
}

// Searcher is the web search capability used by the researcher stage.
// Implementations must return results in relevance order.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Generator is the text generation capability used by the writer stage.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Node names of the standard pipeline.
const (
	ResearcherNode = "researcher"
	WriterNode     = "writer"
)

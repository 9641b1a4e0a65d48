package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// SearchUnavailableData is written to SearchData when no search capability is configured.
	SearchUnavailableData = "No search data (tool failure)"
	searchUnavailableLog  = "❌ Error: Search tool not initialized (check TAVILY_API_KEY)"
	searchDoneLog         = "✅ Researcher: Latest data retrieved."

	writerUnavailableLog = "❌ Fatal Error: LLM is not running"
	writerDoneLog        = "✅ Writer: Report generated."

	// DefaultKeyHint names the env var reported when the generator is missing.
	DefaultKeyHint = "GROQ_API_KEY"
)

// ResearchStage searches the web for the run topic.
type ResearchStage struct {
	Searcher Searcher
	Logger   *slog.Logger
}

// NewResearchStage creates the researcher node. A nil searcher is allowed and
// makes the stage report the tool as unavailable.
func NewResearchStage(searcher Searcher) *ResearchStage {
	return &ResearchStage{
		Searcher: searcher,
		Logger:   slog.Default(),
	}
}

func (s *ResearchStage) Name() string { return ResearcherNode }

func (s *ResearchStage) Run(ctx context.Context, state RunState) (StageUpdate, error) {
	if s.Searcher == nil {
		s.Logger.WarnContext(ctx, "Search tool not initialized")
		return StageUpdate{
			Logs:       []string{searchUnavailableLog},
			SearchData: ptr(SearchUnavailableData),
		}, nil
	}

	logStart := fmt.Sprintf("🕵️ Researcher: Searching %s for '%s'...", s.Searcher.Name(), state.Topic)
	s.Logger.InfoContext(ctx, "Searching", "provider", s.Searcher.Name(), "topic", state.Topic)

	results, err := await(ctx, func(ctx context.Context) ([]SearchResult, error) {
		return s.Searcher.Search(ctx, state.Topic)
	})
	if err != nil {
		s.Logger.WarnContext(ctx, "Search failed", "error", err)
		return StageUpdate{
			Logs:       []string{logStart, fmt.Sprintf("⚠️ Search Error: %s", err)},
			SearchData: ptr(fmt.Sprintf("Search Failed: %s", err)),
		}, nil
	}

	data, err := encodeResults(results)
	if err != nil {
		return StageUpdate{}, fmt.Errorf("failed to encode search results: %w", err)
	}

	s.Logger.InfoContext(ctx, "Search complete", "count", len(results))
	return StageUpdate{
		Logs:       []string{logStart, searchDoneLog},
		SearchData: ptr(data),
	}, nil
}

// encodeResults serializes results as a JSON array, keeping non-ASCII and
// HTML characters unescaped so the prompt stays readable.
func encodeResults(results []SearchResult) (string, error) {
	if results == nil {
		results = []SearchResult{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// SynthesisStage drafts the final report from the gathered search data.
type SynthesisStage struct {
	Generator Generator
	// KeyHint is the env var named in the misconfiguration report.
	KeyHint string
	Logger  *slog.Logger
}

// NewSynthesisStage creates the writer node. A nil generator is allowed.
func NewSynthesisStage(generator Generator) *SynthesisStage {
	return &SynthesisStage{
		Generator: generator,
		KeyHint:   DefaultKeyHint,
		Logger:    slog.Default(),
	}
}

func (s *SynthesisStage) Name() string { return WriterNode }

func (s *SynthesisStage) Run(ctx context.Context, state RunState) (StageUpdate, error) {
	if s.Generator == nil {
		s.Logger.ErrorContext(ctx, "LLM is not initialized", "key", s.keyHint())
		return StageUpdate{
			Logs:        []string{writerUnavailableLog},
			FinalReport: ptr(MisconfiguredReport(s.keyHint())),
		}, nil
	}

	logStart := fmt.Sprintf("✍️ Writer: %s is drafting the report...", s.Generator.Name())
	prompt := BuildReportPrompt(state.Topic, state.SearchData)

	s.Logger.InfoContext(ctx, "Generating report", "model", s.Generator.Name(), "prompt_len", len(prompt))
	report, err := await(ctx, func(ctx context.Context) (string, error) {
		return s.Generator.Generate(ctx, prompt)
	})
	if err != nil {
		s.Logger.WarnContext(ctx, "LLM call failed", "error", err)
		report = fmt.Sprintf("❌ LLM Call Failed: %s", err)
	}

	return StageUpdate{
		Logs:        []string{logStart, writerDoneLog},
		FinalReport: ptr(report),
	}, nil
}

func (s *SynthesisStage) keyHint() string {
	if s.KeyHint == "" {
		return DefaultKeyHint
	}
	return s.KeyHint
}

// MisconfiguredReport is the report body used when no generator is configured.
func MisconfiguredReport(keyHint string) string {
	return "## System Error\nCannot generate report because LLM initialization failed.\n\n" +
		fmt.Sprintf("Please check backend console logs to confirm `%s` is set correctly.", keyHint)
}

// BuildReportPrompt embeds the topic and the raw search payload into the
// analyst briefing prompt.
func BuildReportPrompt(topic, searchData string) string {
	return fmt.Sprintf(`You are a senior technical analyst. Please write a briefing on "%s" based on the provided online search results.

【Search Result Data】:
%s

【Requirements】:
1. Use Markdown format.
2. Cite specific data or sources from the search results.
3. Clear structure: Title, Executive Summary, Key Findings, Conclusion.
4. Professional and objective tone.
`, topic, searchData)
}

// await runs fn on its own goroutine and waits for it or for ctx.
// A panic inside fn is returned as an error.
func await[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

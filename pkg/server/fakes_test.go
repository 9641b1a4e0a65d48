package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikeboe/research-stream/pkg/research"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results []research.SearchResult
	err     error
	calls   atomic.Int32
}

func (f *fakeSearcher) Name() string { return "Tavily" }

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]research.SearchResult, error) {
	f.calls.Add(1)
	return f.results, f.err
}

type fakeGenerator struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeGenerator) Name() string { return "Llama 3.3" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

func newTestService(t *testing.T, s research.Searcher, g research.Generator, pacing time.Duration) *Service {
	t.Helper()
	p, err := research.NewPipeline(research.NewResearchStage(s), research.NewSynthesisStage(g))
	require.NoError(t, err)
	return NewService(p, Capabilities{Search: s != nil, Generation: g != nil}, pacing)
}

// quantumService reproduces the "quantum computing" scenario with both providers available.
func quantumService(t *testing.T, pacing time.Duration) (*Service, *fakeSearcher, *fakeGenerator) {
	t.Helper()
	s := &fakeSearcher{results: []research.SearchResult{{Title: "A", URL: "u1", Snippet: "s1"}}}
	g := &fakeGenerator{reply: "## Report\n..."}
	return newTestService(t, s, g, pacing), s, g
}

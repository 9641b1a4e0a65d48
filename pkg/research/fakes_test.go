package research

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeSearcher struct {
	name    string
	results []SearchResult
	err     error
	// block, when set, makes Search wait for ctx cancellation.
	block bool
	calls atomic.Int32
}

func (f *fakeSearcher) Name() string {
	if f.name == "" {
		return "Tavily"
	}
	return f.name
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.results, f.err
}

type fakeGenerator struct {
	reply string
	err   error
	calls atomic.Int32

	mu      sync.Mutex
	prompts []string
}

func (f *fakeGenerator) Name() string { return "Llama 3.3" }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// stageFunc adapts a function to the Stage interface.
type stageFunc struct {
	name string
	fn   func(ctx context.Context, state RunState) (StageUpdate, error)
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Run(ctx context.Context, state RunState) (StageUpdate, error) {
	return s.fn(ctx, state)
}

package server

import (
	"context"
	"strings"
	"testing"

	"github.com/mikeboe/research-stream/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPipeline_MissingKeysDegrade(t *testing.T) {
	cfg := &config.Config{SearchProvider: config.SearchTavily, LLMProvider: config.LLMGroq}

	pipeline, caps, err := BuildPipeline(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, Capabilities{}, caps)
	assert.Equal(t, []string{"researcher", "writer"}, pipeline.Nodes())

	state, err := pipeline.Invoke(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"❌ Error: Search tool not initialized (check TAVILY_API_KEY)",
		"❌ Fatal Error: LLM is not running",
	}, state.Logs)
	assert.Contains(t, state.FinalReport, "`GROQ_API_KEY` is set correctly")
}

func TestBuildPipeline_KeyHintFollowsProvider(t *testing.T) {
	cfg := &config.Config{SearchProvider: config.SearchTavily, LLMProvider: config.LLMGemini}

	pipeline, caps, err := BuildPipeline(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, caps.Generation)

	state, err := pipeline.Invoke(context.Background(), "t")
	require.NoError(t, err)
	assert.True(t, strings.Contains(state.FinalReport, "`GOOGLE_API_KEY`"))
}

func TestBuildPipeline_Available(t *testing.T) {
	cfg := &config.Config{
		SearchProvider:   config.SearchArxiv,
		LLMProvider:      config.LLMGroq,
		GroqApiKey:       "gsk-test",
		GroqModel:        "llama-3.3-70b-versatile",
		Temperature:      0.6,
		SearchMaxResults: 3,
	}

	_, caps, err := BuildPipeline(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, Capabilities{Search: true, Generation: true}, caps)
}

func TestService_Research(t *testing.T) {
	svc, _, _ := quantumService(t, 0)

	state, err := svc.Research(context.Background(), "quantum computing")
	require.NoError(t, err)
	assert.Equal(t, "## Report\n...", state.FinalReport)
	assert.Len(t, state.Logs, 4)
	assert.Equal(t, "quantum computing", state.Topic)
}

package clients

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-3-flash-preview"

// GeminiModel generates text with the Gemini API.
type GeminiModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

// Gemini creates a Gemini generator using an API key.
func Gemini(ctx context.Context, apiKey, model string, temperature float64) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiModel{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

func (m *GeminiModel) Name() string { return displayName(m.model) }

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(m.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	return resp.Text(), nil
}

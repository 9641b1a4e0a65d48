package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

const (
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.6
)

// ErrMissingAPIKey is returned when a client is requested without credentials.
var ErrMissingAPIKey = errors.New("clients: api key is not set")

var displayNames = map[string]string{
	"llama-3.3-70b-versatile": "Llama 3.3",
	"llama-3.1-8b-instant":    "Llama 3.1",
	"gemini-3-flash-preview":  "Gemini 3 Flash",
	"gemini-3-pro-preview":    "Gemini 3 Pro",
}

// displayName returns a human label for a model id, or the id itself.
func displayName(model string) string {
	if name, ok := displayNames[model]; ok {
		return name
	}
	return model
}

// ChatModel adapts a langchaingo model to a single-prompt generator.
type ChatModel struct {
	LLM         llms.Model
	Model       string
	Temperature float64
}

// NewChatModel wraps an already constructed langchaingo model.
func NewChatModel(llm llms.Model, model string, temperature float64) *ChatModel {
	return &ChatModel{LLM: llm, Model: model, Temperature: temperature}
}

// Groq creates a chat model backed by Groq through langchaingo's OpenAI client.
func Groq(apiKey, model string, temperature float64) (*ChatModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY: %w", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultGroqModel
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(GroqBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init Groq client: %w", err)
	}

	return NewChatModel(llm, model, temperature), nil
}

func (m *ChatModel) Name() string { return displayName(m.Model) }

// Generate sends prompt as a single human message and returns the reply text.
func (m *ChatModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.LLM.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithTemperature(m.Temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}
	return resp.Choices[0].Content, nil
}

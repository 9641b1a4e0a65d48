package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SearchTavily = "tavily"
	SearchArxiv  = "arxiv"

	LLMGroq   = "groq"
	LLMGemini = "gemini"
)

type Config struct {
	TavilyApiKey     string
	GroqApiKey       string
	GoogleApiKey     string
	SearchProvider   string
	LLMProvider      string
	GroqModel        string
	GeminiModel      string
	Temperature      float64
	SearchMaxResults int
	StreamPacing     time.Duration
	Port             string
}

// Load reads the configuration from the environment. Missing API keys are
// left empty; the matching capability is then reported as unavailable.
func Load() *Config {
	return &Config{
		TavilyApiKey:     getEnv("TAVILY_API_KEY", ""),
		GroqApiKey:       getEnv("GROQ_API_KEY", ""),
		GoogleApiKey:     getEnv("GOOGLE_API_KEY", ""),
		SearchProvider:   strings.ToLower(getEnv("SEARCH_PROVIDER", SearchTavily)),
		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", LLMGroq)),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		Temperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.6),
		SearchMaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 3),
		StreamPacing:     time.Duration(getEnvAsInt("STREAM_PACING_MS", 100)) * time.Millisecond,
		Port:             getEnv("PORT", "8000"),
	}
}

// LLMKeyName returns the env var holding the key of the configured LLM provider.
func (c *Config) LLMKeyName() string {
	if c.LLMProvider == LLMGemini {
		return "GOOGLE_API_KEY"
	}
	return "GROQ_API_KEY"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

package server

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mikeboe/research-stream/pkg/clients"
	"github.com/mikeboe/research-stream/pkg/config"
	"github.com/mikeboe/research-stream/pkg/research"
	"github.com/mikeboe/research-stream/pkg/research/tools"
)

// Capabilities reports which external providers were initialized.
type Capabilities struct {
	Search     bool `json:"search"`
	Generation bool `json:"generation"`
}

type Service struct {
	Pipeline     *research.Pipeline
	Capabilities Capabilities
	Pacing       time.Duration
	Logger       *slog.Logger
	// Metrics is optional.
	Metrics *Metrics
}

func NewService(pipeline *research.Pipeline, caps Capabilities, pacing time.Duration) *Service {
	return &Service{
		Pipeline:     pipeline,
		Capabilities: caps,
		Pacing:       pacing,
		Logger:       slog.Default(),
	}
}

// Stream starts a new run for topic and returns its transport events.
// Cancelling ctx abandons the run.
func (s *Service) Stream(ctx context.Context, topic string) iter.Seq[Event] {
	ctx = WithRun(ctx, uuid.New().String(), topic)
	events := Events(ctx, s.Pipeline.Stream(ctx, research.NewRunState(topic)), s.Pacing)

	return func(yield func(Event) bool) {
		start := time.Now()
		s.Logger.InfoContext(ctx, "Research run started")

		sent := 0
		for ev := range events {
			if !yield(ev) {
				s.Logger.InfoContext(ctx, "Research run stopped by consumer", "events", sent)
				s.Metrics.RecordRun(OutcomeStopped, time.Since(start))
				return
			}
			s.Metrics.RecordEvent(ev)
			sent++
		}

		if err := ctx.Err(); err != nil {
			s.Logger.InfoContext(ctx, "Research run abandoned", "events", sent, "reason", err)
			s.Metrics.RecordRun(OutcomeAbandoned, time.Since(start))
			return
		}
		s.Logger.InfoContext(ctx, "Research run finished", "events", sent, "duration", time.Since(start))
		s.Metrics.RecordRun(OutcomeCompleted, time.Since(start))
	}
}

// Research runs the pipeline to completion and returns the final state.
func (s *Service) Research(ctx context.Context, topic string) (research.RunState, error) {
	ctx = WithRun(ctx, uuid.New().String(), topic)
	start := time.Now()
	s.Logger.InfoContext(ctx, "Research run started")

	state, err := s.Pipeline.Invoke(ctx, topic)
	if err != nil {
		s.Logger.ErrorContext(ctx, "Research run failed", "error", err)
		s.Metrics.RecordRun(OutcomeFailed, time.Since(start))
		return state, err
	}
	s.Logger.InfoContext(ctx, "Research run finished", "report_len", len(state.FinalReport))
	s.Metrics.RecordRun(OutcomeCompleted, time.Since(start))
	return state, nil
}

// BuildPipeline initializes the providers selected by cfg and wires the
// standard pipeline. Providers that cannot be initialized are left out and
// their stage degrades instead of failing.
func BuildPipeline(ctx context.Context, cfg *config.Config) (*research.Pipeline, Capabilities, error) {
	var searcher research.Searcher
	switch cfg.SearchProvider {
	case config.SearchArxiv:
		searcher = tools.NewArxiv(cfg.SearchMaxResults)
	default:
		tavily, err := tools.NewTavily(cfg.TavilyApiKey, cfg.SearchMaxResults)
		if err != nil {
			slog.Warn("TAVILY_API_KEY not found, search functionality will be unavailable", "error", err)
		} else {
			searcher = tavily
		}
	}

	var generator research.Generator
	switch cfg.LLMProvider {
	case config.LLMGemini:
		model, err := clients.Gemini(ctx, cfg.GoogleApiKey, cfg.GeminiModel, cfg.Temperature)
		if err != nil {
			slog.Error("LLM cannot start", "provider", cfg.LLMProvider, "error", err)
		} else {
			generator = model
		}
	default:
		model, err := clients.Groq(cfg.GroqApiKey, cfg.GroqModel, cfg.Temperature)
		if err != nil {
			slog.Error("LLM cannot start", "provider", cfg.LLMProvider, "error", err)
		} else {
			generator = model
		}
	}
	if generator != nil {
		slog.Info("LLM initialized", "model", generator.Name())
	}

	writer := research.NewSynthesisStage(generator)
	writer.KeyHint = cfg.LLMKeyName()

	pipeline, err := research.NewPipeline(research.NewResearchStage(searcher), writer)
	if err != nil {
		return nil, Capabilities{}, fmt.Errorf("failed to build pipeline: %w", err)
	}

	return pipeline, Capabilities{Search: searcher != nil, Generation: generator != nil}, nil
}

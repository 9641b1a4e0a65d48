package server

import (
	"context"
	"log/slog"
)

type runKey struct{}

type runInfo struct {
	id    string
	topic string
}

// WithRun tags ctx with the run id and topic picked up by RunLogHandler.
func WithRun(ctx context.Context, runID, topic string) context.Context {
	return context.WithValue(ctx, runKey{}, runInfo{id: runID, topic: topic})
}

// RunID returns the run id stored in ctx, if any.
func RunID(ctx context.Context) string {
	if info, ok := ctx.Value(runKey{}).(runInfo); ok {
		return info.id
	}
	return ""
}

// RunLogHandler is a slog.Handler that adds the run id and topic of the
// record's context to every record before passing it on.
type RunLogHandler struct {
	next slog.Handler
}

func NewRunLogHandler(next slog.Handler) *RunLogHandler {
	return &RunLogHandler{next: next}
}

func (h *RunLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RunLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if info, ok := ctx.Value(runKey{}).(runInfo); ok {
		r = r.Clone()
		r.AddAttrs(slog.String("run_id", info.id), slog.String("topic", info.topic))
	}
	return h.next.Handle(ctx, r)
}

func (h *RunLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RunLogHandler{next: h.next.WithAttrs(attrs)}
}

func (h *RunLogHandler) WithGroup(name string) slog.Handler {
	return &RunLogHandler{next: h.next.WithGroup(name)}
}

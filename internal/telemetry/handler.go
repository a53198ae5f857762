// Package telemetry reports agent activity through structured logs and
// Prometheus metrics.
package telemetry

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

const (
	statusStarted = "started"
	statusSuccess = "success"
	statusError   = "error"
)

var _ callbacks.Handler = (*Handler)(nil)

// Handler is a langchaingo callbacks handler that logs agent events and
// counts them. A nil Metrics only logs.
type Handler struct {
	callbacks.SimpleHandler
	logger  *slog.Logger
	metrics *Metrics
}

func NewHandler(logger *slog.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, metrics: metrics}
}

func (h *Handler) HandleChainStart(ctx context.Context, inputs map[string]any) {
	h.logger.DebugContext(ctx, "agent run started", "inputs", keys(inputs))
	h.count(chainRuns, statusStarted)
}

func (h *Handler) HandleChainEnd(ctx context.Context, outputs map[string]any) {
	h.logger.DebugContext(ctx, "agent run finished", "outputs", keys(outputs))
	h.count(chainRuns, statusSuccess)
}

func (h *Handler) HandleChainError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "agent run failed", "error", err)
	h.count(chainRuns, statusError)
}

func (h *Handler) HandleLLMGenerateContentStart(ctx context.Context, ms []llms.MessageContent) {
	h.logger.DebugContext(ctx, "model call started", "messages", len(ms))
}

func (h *Handler) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	choices := 0
	if res != nil {
		choices = len(res.Choices)
	}
	h.logger.DebugContext(ctx, "model call finished", "choices", choices)
	h.count(llmCalls, statusSuccess)
}

func (h *Handler) HandleLLMError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "model call failed", "error", err)
	h.count(llmCalls, statusError)
}

func (h *Handler) HandleToolStart(ctx context.Context, input string) {
	h.logger.DebugContext(ctx, "tool started", "input", truncate(input))
}

func (h *Handler) HandleToolEnd(ctx context.Context, output string) {
	h.logger.DebugContext(ctx, "tool finished", "output", truncate(output))
	h.count(toolCalls, statusSuccess)
}

func (h *Handler) HandleToolError(ctx context.Context, err error) {
	h.logger.WarnContext(ctx, "tool failed", "error", err)
	h.count(toolCalls, statusError)
}

func (h *Handler) HandleAgentAction(ctx context.Context, action schema.AgentAction) {
	h.logger.InfoContext(ctx, "agent selected tool", "tool", action.Tool, "input", truncate(action.ToolInput))
	if h.metrics != nil {
		h.metrics.AgentActions.WithLabelValues(action.Tool).Inc()
	}
}

func (h *Handler) HandleAgentFinish(ctx context.Context, finish schema.AgentFinish) {
	h.logger.DebugContext(ctx, "agent finished", "outputs", keys(finish.ReturnValues))
}

type counterKind int

const (
	chainRuns counterKind = iota
	llmCalls
	toolCalls
)

func (h *Handler) count(kind counterKind, status string) {
	if h.metrics == nil {
		return
	}
	switch kind {
	case chainRuns:
		h.metrics.ChainRuns.WithLabelValues(status).Inc()
	case llmCalls:
		h.metrics.LLMCalls.WithLabelValues(status).Inc()
	case toolCalls:
		h.metrics.ToolCalls.WithLabelValues(status).Inc()
	}
}

func keys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

const maxLogValue = 200

func truncate(s string) string {
	if len(s) <= maxLogValue {
		return s
	}
	cut := maxLogValue
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Package telemetry reports data-loss events to an error-tracking sink.
//
// The only event this core emits is a dropped tool result: a result too
// large for the context window that could not be spilled to scratch
// storage. Everything else degrades silently through logging.
package telemetry

import (
	"log/slog"
)

// Reporter receives data-loss events.
type Reporter interface {
	// ReportDroppedToolResult records that a tool result was dropped
	// because it exceeded limit tokens and spillover was unavailable.
	ReportDroppedToolResult(toolName, toolCallID string, measuredTokens, limit int)
}

// LogReporter reports events through structured logging.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter backed by the given logger.
// A nil logger falls back to slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// ReportDroppedToolResult logs the dropped result.
func (r *LogReporter) ReportDroppedToolResult(toolName, toolCallID string, measuredTokens, limit int) {
	r.logger.Error("tool result dropped: too many tokens",
		"tool", toolName,
		"tool_call_id", toolCallID,
		"tokens", measuredTokens,
		"limit", limit,
	)
}

// NopReporter discards all events. Useful in tests.
type NopReporter struct{}

// ReportDroppedToolResult discards the event.
func (NopReporter) ReportDroppedToolResult(string, string, int, int) {}

var (
	_ Reporter = (*LogReporter)(nil)
	_ Reporter = NopReporter{}
)

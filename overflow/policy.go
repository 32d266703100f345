// Package overflow decides what happens to tool results too large for the
// context window: keep, spill to scratch storage with a preview pointer,
// or drop with an error.
package overflow

import (
	"fmt"
	"log/slog"

	"github.com/mailprak/holmesgpt/llm"
	"github.com/mailprak/holmesgpt/telemetry"
	"github.com/mailprak/holmesgpt/tools"
)

// previewSafetyFactor shrinks the chars-per-token estimate for previews so
// the rewritten result cannot overflow again once re-tokenized.
const previewSafetyFactor = 0.5

// droppedResultError is the instruction returned to the model when a
// result had to be dropped entirely.
const droppedResultError = "Try to repeat the query but proactively narrow down the result so that the tool answer fits within the allowed number of tokens."

// Policy applies the per-tool-call overflow decision.
type Policy struct {
	accountant     llm.TokenAccountant
	reporter       telemetry.Reporter
	logger         *slog.Logger
	storageEnabled bool
	charsPerToken  int
}

// NewPolicy creates an overflow policy. Storage is enabled by default;
// disable it via WithStorageEnabled(false) to force the drop path.
func NewPolicy(accountant llm.TokenAccountant, reporter telemetry.Reporter, logger *slog.Logger) *Policy {
	if reporter == nil {
		reporter = telemetry.NopReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{
		accountant:     accountant,
		reporter:       reporter,
		logger:         logger,
		storageEnabled: true,
		charsPerToken:  llm.DefaultCharsPerToken,
	}
}

// WithStorageEnabled toggles the filesystem spillover path.
func (p *Policy) WithStorageEnabled(enabled bool) *Policy {
	p.storageEnabled = enabled
	return p
}

// WithCharsPerToken overrides the chars-per-token ratio used for preview
// sizing.
func (p *Policy) WithCharsPerToken(ratio int) *Policy {
	if ratio > 0 {
		p.charsPerToken = ratio
	}
	return p
}

// HandleOversizedToolResult bounds one tool result before it enters a
// conversation.
//
// Results with ERROR status, and SUCCESS results that fit the single-tool
// token limit, pass through untouched. An oversized SUCCESS result is
// spilled to scratch (when available): its data is replaced with the file
// path plus a bounded preview. If spillover is unavailable or fails, the
// data is dropped, the status flips to ERROR, and the drop is reported to
// telemetry.
//
// The returned value is always the token count of the original, unmodified
// result, so callers can log true sizes regardless of the path taken.
func (p *Policy) HandleOversizedToolResult(result *tools.ToolCallResult, scratch *Scope) int {
	message := result.AsToolCallMessage()
	messageTokens := p.accountant.CountTokens([]llm.ChatMessage{message}).TotalTokens
	maxAllowed := p.accountant.MaxTokensPerToolResult()

	if result.Result.Status != tools.StatusSuccess {
		return messageTokens
	}
	if messageTokens <= maxAllowed {
		return messageTokens
	}

	sizeInfo := fmt.Sprintf("The tool call result is too large to return: %d/%d tokens.\n", messageTokens, maxAllowed)

	filePath := ""
	saved := false
	content := ""
	if scratch != nil && p.storageEnabled {
		var isJSON bool
		content, isJSON = result.Result.StringifyData(false)
		filePath, saved = scratch.Save(result.ToolName, result.ToolCallID, content, isJSON)
	}

	if saved {
		boilerplate := fmt.Sprintf(
			"%s\nSaved to: %s\nUse bash commands to access the data (e.g. cat, grep, head, tail, jq).\n\nPreview:\n",
			sizeInfo, filePath,
		)
		// Half the usual chars-per-token ratio leaves headroom for the
		// preview to re-tokenize below the limit.
		maxChars := int(float64(maxAllowed) * float64(p.charsPerToken) * previewSafetyFactor)
		previewBudget := maxChars - len(boilerplate)
		if previewBudget < 0 {
			previewBudget = 0
		}
		preview := content
		if len(preview) > previewBudget {
			preview = preview[:previewBudget]
		}
		result.Result.Data = boilerplate + preview
		p.logger.Info("large tool result saved to filesystem",
			"tool", result.ToolName,
			"tokens", messageTokens,
			"path", filePath,
		)
	} else {
		result.Result.Status = tools.StatusError
		result.Result.Data = nil
		result.Result.Error = sizeInfo + "\n" + droppedResultError
		// Telemetry fires only when data is actually dropped.
		p.reporter.ReportDroppedToolResult(result.ToolName, result.ToolCallID, messageTokens, maxAllowed)
	}

	return messageTokens
}

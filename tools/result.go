// Structured tool results.
//
// Every tool invocation produces a StructuredToolResult; the ToolCallResult
// wrapper binds it to the originating tool call so it can be turned into a
// tool-role chat message. Results are owned by the caller that produced
// them and are mutated only by the overflow policy.

package tools

import (
	"fmt"

	"github.com/mailprak/holmesgpt/internal/jsonx"
	"github.com/mailprak/holmesgpt/llm"
)

// ResultStatus indicates whether a tool invocation succeeded.
type ResultStatus string

const (
	// StatusSuccess marks a successful invocation with usable data.
	StatusSuccess ResultStatus = "SUCCESS"
	// StatusError marks a failed invocation; Error carries the reason.
	StatusError ResultStatus = "ERROR"
)

// StructuredToolResult is the outcome of one tool invocation.
// Data holds free text or structured values; Error is set when
// Status is StatusError.
type StructuredToolResult struct {
	Status ResultStatus `json:"status"`
	Data   interface{}  `json:"data,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// StringifyData flattens Data to a string and reports whether it is JSON.
func (r *StructuredToolResult) StringifyData(compact bool) (string, bool) {
	return jsonx.Stringify(r.Data, compact)
}

// SuccessResult creates a successful structured result.
func SuccessResult(data interface{}) StructuredToolResult {
	return StructuredToolResult{Status: StatusSuccess, Data: data}
}

// ErrorResult creates a failed structured result.
func ErrorResult(format string, args ...interface{}) StructuredToolResult {
	return StructuredToolResult{Status: StatusError, Error: fmt.Sprintf(format, args...)}
}

// ToolCallResult binds a structured result to the tool call that produced it.
type ToolCallResult struct {
	ToolName    string
	ToolCallID  string
	Description string
	Result      StructuredToolResult
}

// AsToolCallMessage renders the result as a tool-role chat message.
func (r ToolCallResult) AsToolCallMessage() llm.ChatMessage {
	content := ""
	if r.Result.Status == StatusError {
		content = fmt.Sprintf("error: %s", r.Result.Error)
	} else {
		content, _ = r.Result.StringifyData(false)
	}
	return llm.ToolMessage(r.ToolCallID, content)
}

// ToolCallConversationResult is the trimmed view of a tool call that gets
// embedded into a rendered system prompt.
type ToolCallConversationResult struct {
	Name        string
	Description string
	Output      string
}

// HTTP query tool.
//
// Information Hiding:
// - HTTP client implementation details hidden
// - Host allow-list matching internalized
// - Error handling and structured results hidden behind the Tool interface

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTool makes HTTP requests against a configured set of allowed hosts.
// Responses come back as structured results; oversized bodies are handled
// downstream by the overflow policy, not here.
type HTTPTool struct {
	BaseTool
	client         *http.Client
	allowedHosts   []string // glob-ish patterns, "*." prefix matches subdomains
	allowedMethods []string
	headers        map[string]string
}

// NewHTTPTool creates a new HTTP tool with the given timeout.
func NewHTTPTool(timeoutSecs uint64) *HTTPTool {
	return &HTTPTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		allowedMethods: []string{http.MethodGet},
	}
}

// WithAllowedHosts sets the host patterns requests may target.
// An empty list allows all hosts.
func (t *HTTPTool) WithAllowedHosts(hosts []string) *HTTPTool {
	t.allowedHosts = hosts
	return t
}

// WithAllowedMethods sets the allowed HTTP methods (default GET only).
func (t *HTTPTool) WithAllowedMethods(methods []string) *HTTPTool {
	t.allowedMethods = nil
	for _, m := range methods {
		t.allowedMethods = append(t.allowedMethods, strings.ToUpper(m))
	}
	return t
}

// WithHeaders sets headers added to every request (e.g. authorization).
func (t *HTTPTool) WithHeaders(headers map[string]string) *HTTPTool {
	t.headers = headers
	return t
}

// Metadata returns the tool metadata.
func (t *HTTPTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "http_request",
		Description: "Make HTTP requests to fetch operational data from allowed endpoints",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "The URL to request", Required: true},
			{Name: "method", ParamType: "string", Description: "HTTP method (default GET). Must be allowed by the endpoint configuration.", Required: false},
			{Name: "body", ParamType: "string", Description: "Request body for POST/PUT requests", Required: false},
		},
	}
}

type httpArgs struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Body   string `json:"body"`
}

// Validate validates the arguments.
func (t *HTTPTool) Validate(args json.RawMessage) error {
	var a httpArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.URL == "" {
		return fmt.Errorf("validation: url is required")
	}
	parsed, err := url.Parse(a.URL)
	if err != nil {
		return fmt.Errorf("validation: invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("validation: unsupported scheme %q", parsed.Scheme)
	}
	if !t.hostAllowed(parsed.Hostname()) {
		return fmt.Errorf("validation: host %q not allowed", parsed.Hostname())
	}
	return nil
}

// Invoke runs the HTTP request.
func (t *HTTPTool) Invoke(ctx context.Context, args json.RawMessage) StructuredToolResult {
	var a httpArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult("invalid arguments: %v", err)
	}

	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !t.methodAllowed(method) {
		return ErrorResult("method %s not allowed for this endpoint (allowed: %s)", method, strings.Join(t.allowedMethods, ", "))
	}

	var body io.Reader
	if a.Body != "" {
		body = strings.NewReader(a.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.URL, body)
	if err != nil {
		return ErrorResult("failed to build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if a.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		return ErrorResult("HTTP %d from %s: %s", resp.StatusCode, a.URL, string(data))
	}
	return SuccessResult(string(data))
}

func (t *HTTPTool) methodAllowed(method string) bool {
	for _, m := range t.allowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// hostAllowed matches host against the allow-list. A pattern with a "*."
// prefix matches any subdomain; other patterns require an exact match.
func (t *HTTPTool) hostAllowed(host string) bool {
	if len(t.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, pattern := range t.allowedHosts {
		pattern = strings.ToLower(pattern)
		if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}

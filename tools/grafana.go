// Grafana datasource query tool.
//
// Queries a Grafana-fronted datasource (Loki, Tempo, Prometheus) either
// directly or through Grafana's datasource proxy when a datasource UID is
// configured.

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

// GrafanaConfig configures one Grafana-backed datasource.
// If DatasourceUID is set, requests are proxied through Grafana and APIURL
// should be the Grafana URL; otherwise APIURL is the datasource's own URL.
type GrafanaConfig struct {
	APIURL            string
	APIKey            string
	DatasourceUID     string
	AdditionalHeaders map[string]string
	TimeoutSecs       uint64
}

// BaseURL returns the URL queries are issued against.
func (c GrafanaConfig) BaseURL() string {
	if c.DatasourceUID != "" {
		return fmt.Sprintf("%s/api/datasources/proxy/uid/%s", strings.TrimRight(c.APIURL, "/"), c.DatasourceUID)
	}
	return strings.TrimRight(c.APIURL, "/")
}

// Headers returns the request headers for this datasource.
func (c GrafanaConfig) Headers() map[string]string {
	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	if c.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.APIKey
	}
	for k, v := range c.AdditionalHeaders {
		headers[k] = v
	}
	return headers
}

// GrafanaQueryTool queries log and metric data through Grafana.
type GrafanaQueryTool struct {
	BaseTool
	config GrafanaConfig
	client *http.Client
}

// NewGrafanaQueryTool creates a query tool for the given datasource config.
func NewGrafanaQueryTool(config GrafanaConfig) *GrafanaQueryTool {
	timeout := config.TimeoutSecs
	if timeout == 0 {
		timeout = 60
	}
	return &GrafanaQueryTool{
		config: config,
		client: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Metadata returns the tool metadata.
func (t *GrafanaQueryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "grafana_query",
		Description: "Query logs or metrics from a Grafana datasource",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Datasource API path, e.g. /loki/api/v1/query_range", Required: true},
			{Name: "params", ParamType: "object", Description: "Query string parameters", Required: false},
		},
	}
}

type grafanaArgs struct {
	Path   string            `json:"path"`
	Params map[string]string `json:"params"`
}

// Validate validates the arguments.
func (t *GrafanaQueryTool) Validate(args json.RawMessage) error {
	var a grafanaArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("validation: path is required")
	}
	if !strings.HasPrefix(a.Path, "/") {
		return fmt.Errorf("validation: path must start with /")
	}
	return nil
}

// Invoke runs the datasource query.
func (t *GrafanaQueryTool) Invoke(ctx context.Context, args json.RawMessage) StructuredToolResult {
	var a grafanaArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult("invalid arguments: %v", err)
	}

	queryURL := t.config.BaseURL() + a.Path
	if len(a.Params) > 0 {
		values := url.Values{}
		for k, v := range a.Params {
			values.Set(k, v)
		}
		queryURL += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return ErrorResult("failed to build request: %v", err)
	}
	for k, v := range t.config.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult("datasource query failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		return ErrorResult("HTTP %d from datasource: %s", resp.StatusCode, string(data))
	}
	return SuccessResult(string(data))
}

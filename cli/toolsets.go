// Toolset construction for CLI commands.
//
// Information Hiding:
// - Tool registration details hidden
// - Datasource configuration hidden

package cli

import (
	"os"
	"strings"

	"github.com/mailprak/holmesgpt/prompt"
	"github.com/mailprak/holmesgpt/tools"
)

const defaultToolTimeout = 30 // seconds

// BuildRegistry constructs the tool registry from environment configuration
// and returns it together with the toolset descriptions advertised in the
// system prompt.
//
// Datasources are opt-in: the HTTP tool requires HTTP_TOOL_ALLOWED_HOSTS
// and the Grafana tool requires GRAFANA_API_URL.
func BuildRegistry() (*tools.Registry, []prompt.ToolsetInfo, error) {
	registry := tools.NewRegistry()
	var toolsets []prompt.ToolsetInfo

	if hosts := splitCSV(os.Getenv("HTTP_TOOL_ALLOWED_HOSTS")); len(hosts) > 0 {
		httpTool := tools.NewHTTPTool(defaultToolTimeout).WithAllowedHosts(hosts)
		if err := registry.Register(httpTool); err != nil {
			return nil, nil, err
		}
		toolsets = append(toolsets, prompt.ToolsetInfo{
			Name:        "internet",
			Description: "Fetch runbooks and documentation over HTTP",
		})
	}

	if apiURL := os.Getenv("GRAFANA_API_URL"); apiURL != "" {
		grafanaTool := tools.NewGrafanaQueryTool(tools.GrafanaConfig{
			APIURL:        apiURL,
			APIKey:        os.Getenv("GRAFANA_API_KEY"),
			DatasourceUID: os.Getenv("GRAFANA_DATASOURCE_UID"),
			TimeoutSecs:   defaultToolTimeout,
		})
		if err := registry.Register(grafanaTool); err != nil {
			return nil, nil, err
		}
		toolsets = append(toolsets, prompt.ToolsetInfo{
			Name:        "grafana",
			Description: "Query Grafana datasources for metrics and logs",
		})
	}

	return registry, toolsets, nil
}

// DatasourceConfigFiles lists the config files whose changes should
// invalidate cached toolset state between runs.
func DatasourceConfigFiles() []string {
	var files []string
	if path := os.Getenv("HOLMES_DATASOURCE_CONFIG"); path != "" {
		files = append(files, path)
	}
	if path := os.Getenv("GRAFANA_CONFIG_FILE"); path != "" {
		files = append(files, path)
	}
	return files
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

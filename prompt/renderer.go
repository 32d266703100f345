// Template rendering.
//
// Prompts are Go text templates embedded in the binary. The Renderer
// interface keeps the assembler independent of the template engine so
// tests can substitute fixed strings.

package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer turns a template ID and a context map into prompt text.
type Renderer interface {
	// Render renders the identified template. An empty result is valid
	// and means "no prompt"; errors indicate unknown templates or
	// template programming mistakes, not empty output.
	Render(templateID string, context map[string]interface{}) (string, error)
}

// TemplateRenderer renders the embedded prompt templates.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

// Render executes the template named <templateID>.tmpl.
func (r *TemplateRenderer) Render(templateID string, context map[string]interface{}) (string, error) {
	var sb strings.Builder
	if err := r.templates.ExecuteTemplate(&sb, templateID+".tmpl", context); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", templateID, err)
	}
	return sb.String(), nil
}

var _ Renderer = (*TemplateRenderer)(nil)

// trimRendered normalizes rendered output: whitespace-only renders become
// the empty string, which callers interpret as "no prompt".
func trimRendered(s string) string {
	return strings.TrimSpace(s)
}

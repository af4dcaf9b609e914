package techdash

import (
	"embed"
	"io"

	template "github.com/goliatone/go-template"
)

// PageTemplate is the name of the embedded dashboard page.
const PageTemplate = "dashboard"

// Renderer describes the template renderer contract needed by the page route.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer backed by the embedded page.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}

// PagePayload shapes a view snapshot for the page template.
func PagePayload(view DashboardView, basePath string) map[string]any {
	return map[string]any{
		"title":        "Technician Dashboard",
		"base_path":    basePath,
		"mounted":      view.Mounted,
		"active_span":  string(view.ActiveSpan),
		"filters":      view.Filters,
		"stats":        view.Stats,
		"map":          view.Map,
		"leaderboard":  view.Leaderboard,
		"chart_html":   view.Leaderboard.ChartHTML,
		"fallback_msg": FallbackMessage,
	}
}

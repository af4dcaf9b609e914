package techdash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagePayload(t *testing.T) {
	c := newTestController(t, &stubBackend{})
	payload := PagePayload(c.View(), "/admin/technicians")

	assert.Equal(t, "/admin/technicians", payload["base_path"])
	assert.Equal(t, string(DefaultTimeSpan), payload["active_span"])
	assert.Equal(t, FallbackMessage, payload["fallback_msg"])
	filters, ok := payload["filters"].([]FilterButton)
	require.True(t, ok)
	assert.Len(t, filters, 4)
}

func TestEmbeddedTemplatePresent(t *testing.T) {
	data, err := embeddedTemplates.ReadFile("templates/dashboard.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "technician-map")
}

func TestEmbeddedTemplateRendersChart(t *testing.T) {
	data, err := embeddedTemplates.ReadFile("templates/dashboard.html")
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, `id="leaderboard-chart"`)
	assert.Contains(t, page, `srcdoc="{{ chart_html }}"`)
	assert.Contains(t, page, "lb.chart_html")
}

func TestPagePayloadCarriesChart(t *testing.T) {
	view := DashboardView{Leaderboard: LeaderboardRenderer{Chart: NewLeaderboardChart(WithChartCache(nil))}.Render(
		TimeSpanMonth,
		LeaderboardResult{Entries: []LeaderboardEntry{{WorkerName: "Ali", CompletedCount: 3}}},
	)}
	payload := PagePayload(view, "/admin/technicians")
	chart, ok := payload["chart_html"].(string)
	require.True(t, ok)
	assert.Contains(t, chart, "echarts")
}

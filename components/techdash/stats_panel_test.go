package techdash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestStatsPanelStartsWithPlaceholders(t *testing.T) {
	view := NewStatsPanel().View()
	assert.Equal(t, StatsView{"-", "-", "-", "-", "-"}, view)
}

func TestStatsPanelApplyFull(t *testing.T) {
	panel := NewStatsPanel()
	view, applied := panel.Apply(DashboardStats{
		TotalWorkers:       intPtr(12),
		ActiveWorkers:      intPtr(7),
		OpenItems:          intPtr(30),
		AssignedItems:      intPtr(18),
		AvgResolutionHours: floatPtr(4.5),
	})
	assert.Equal(t, 5, applied)
	assert.Equal(t, "12", view.TotalWorkers)
	assert.Equal(t, "7", view.ActiveWorkers)
	assert.Equal(t, "30", view.OpenItems)
	assert.Equal(t, "18", view.AssignedItems)
	assert.Equal(t, "4.50", view.AvgResolutionHours)
}

func TestStatsPanelPartialKeepsPrevious(t *testing.T) {
	panel := NewStatsPanel()
	panel.Apply(DashboardStats{TotalWorkers: intPtr(12), OpenItems: intPtr(3)})

	view, applied := panel.Apply(DashboardStats{OpenItems: intPtr(0)})
	assert.Equal(t, 1, applied)
	assert.Equal(t, "12", view.TotalWorkers)
	assert.Equal(t, "0", view.OpenItems)
	assert.Equal(t, "-", view.ActiveWorkers)
	assert.Equal(t, "-", view.AvgResolutionHours)
}

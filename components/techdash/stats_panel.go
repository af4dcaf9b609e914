package techdash

import "strconv"

const (
	statPlaceholder = "-"
	statFields      = 5
)

// StatsView holds the display text of the five KPI regions.
type StatsView struct {
	TotalWorkers       string `json:"total_workers"`
	ActiveWorkers      string `json:"active_workers"`
	OpenItems          string `json:"open_items"`
	AssignedItems      string `json:"assigned_items"`
	AvgResolutionHours string `json:"avg_resolution_hours"`
}

// StatsPanel keeps the last displayed KPI values. Fields missing from a
// response keep their previous value; nothing is blanked or zeroed.
type StatsPanel struct {
	view StatsView
}

// NewStatsPanel starts every region at the "-" placeholder.
func NewStatsPanel() *StatsPanel {
	return &StatsPanel{view: StatsView{
		TotalWorkers:       statPlaceholder,
		ActiveWorkers:      statPlaceholder,
		OpenItems:          statPlaceholder,
		AssignedItems:      statPlaceholder,
		AvgResolutionHours: statPlaceholder,
	}}
}

// Apply overwrites the regions present in stats and reports how many were updated.
func (p *StatsPanel) Apply(stats DashboardStats) (StatsView, int) {
	applied := 0
	set := func(dst *string, v *int) {
		if v == nil {
			return
		}
		*dst = strconv.Itoa(*v)
		applied++
	}
	set(&p.view.TotalWorkers, stats.TotalWorkers)
	set(&p.view.ActiveWorkers, stats.ActiveWorkers)
	set(&p.view.OpenItems, stats.OpenItems)
	set(&p.view.AssignedItems, stats.AssignedItems)
	if stats.AvgResolutionHours != nil {
		p.view.AvgResolutionHours = strconv.FormatFloat(*stats.AvgResolutionHours, 'f', 2, 64)
		applied++
	}
	return p.view, applied
}

// View returns the current regions.
func (p *StatsPanel) View() StatsView {
	return p.view
}

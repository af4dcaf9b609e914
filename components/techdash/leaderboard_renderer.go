package techdash

import "fmt"

const (
	// NoDataMessage is the placeholder shown when a region has nothing to render.
	NoDataMessage = "No data available"
	// LoadingMessage is shown until the first leaderboard response arrives.
	LoadingMessage = "Loading..."
)

var rankMedals = map[int]string{
	1: "gold",
	2: "silver",
	3: "bronze",
}

// LeaderboardRow is one rendered leaderboard line. Placeholder rows carry only
// a Message.
type LeaderboardRow struct {
	Rank        int    `json:"rank,omitempty"`
	RankClass   string `json:"rank_class,omitempty"`
	Medal       string `json:"medal,omitempty"`
	WorkerName  string `json:"worker_name,omitempty"`
	Score       int    `json:"score,omitempty"`
	ScoreLabel  string `json:"score_label,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Message     string `json:"message,omitempty"`
}

// LeaderboardView is the rendered leaderboard region.
type LeaderboardView struct {
	Span      TimeSpan         `json:"span"`
	Rows      []LeaderboardRow `json:"rows"`
	ChartHTML string           `json:"chart_html,omitempty"`
}

// LeaderboardRenderer turns ranked entries into rows. Chart is optional.
type LeaderboardRenderer struct {
	Chart *LeaderboardChart
}

// Render assigns rank by position in server order. Empty or malformed results
// render a single placeholder row.
func (r LeaderboardRenderer) Render(span TimeSpan, result LeaderboardResult) LeaderboardView {
	if result.Malformed || len(result.Entries) == 0 {
		return r.Placeholder(span)
	}
	rows := make([]LeaderboardRow, len(result.Entries))
	for i, entry := range result.Entries {
		rank := i + 1
		rows[i] = LeaderboardRow{
			Rank:       rank,
			RankClass:  fmt.Sprintf("rank-%d", rank),
			Medal:      rankMedals[rank],
			WorkerName: entry.WorkerName,
			Score:      entry.CompletedCount,
			ScoreLabel: fmt.Sprintf("%d Points", entry.CompletedCount),
		}
	}
	view := LeaderboardView{Span: span, Rows: rows}
	if r.Chart != nil {
		if html, err := r.Chart.Render(span, result.Entries); err == nil {
			view.ChartHTML = html
		}
	}
	return view
}

// Placeholder renders the single "no data" row.
func (r LeaderboardRenderer) Placeholder(span TimeSpan) LeaderboardView {
	return messageView(span, NoDataMessage)
}

// Loading renders the initial state before any fetch completes.
func (r LeaderboardRenderer) Loading(span TimeSpan) LeaderboardView {
	return messageView(span, LoadingMessage)
}

func messageView(span TimeSpan, message string) LeaderboardView {
	return LeaderboardView{
		Span: span,
		Rows: []LeaderboardRow{{Placeholder: true, Message: message}},
	}
}

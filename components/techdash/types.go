package techdash

import (
	"context"
	"time"
)

// StatsClient fetches the scalar KPI snapshot from the ERP aggregation endpoint.
type StatsClient interface {
	FetchStats(ctx context.Context) (DashboardStats, error)
}

// LocationClient fetches the latest known position per technician.
type LocationClient interface {
	FetchLatestLocations(ctx context.Context, onDutyOnly bool) (LocationBatch, error)
}

// LeaderboardClient fetches technicians ranked by completed jobs for a window.
type LeaderboardClient interface {
	FetchLeaderboard(ctx context.Context, span TimeSpan) (LeaderboardResult, error)
}

// Client is a convenience union for backends that implement every query.
type Client interface {
	StatsClient
	LocationClient
	LeaderboardClient
}

// RefreshHook notifies transports (REST/WebSocket/SSE) about region updates.
type RefreshHook interface {
	RegionUpdated(ctx context.Context, event RegionEvent) error
}

// LocationRecord is the last known position reported by a technician.
type LocationRecord struct {
	WorkerID   string    `json:"worker_id"`
	WorkerName string    `json:"worker_name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"captured_at"`
}

// LocationBatch is a single location query result. Skipped counts records
// dropped while decoding because a coordinate was missing or unusable.
type LocationBatch struct {
	Records []LocationRecord
	Skipped int
}

// LeaderboardEntry is one ranked technician. Order is decided by the server.
type LeaderboardEntry struct {
	WorkerName     string `json:"worker_name"`
	CompletedCount int    `json:"completed_count"`
}

// LeaderboardResult carries ranked entries. Malformed is set when the payload
// was not a list at all.
type LeaderboardResult struct {
	Entries   []LeaderboardEntry
	Malformed bool
}

// DashboardStats is a flat KPI snapshot. A nil field was absent from the response.
type DashboardStats struct {
	TotalWorkers       *int
	ActiveWorkers      *int
	OpenItems          *int
	AssignedItems      *int
	AvgResolutionHours *float64
}

// Region names a display region that is rebuilt independently.
type Region string

const (
	RegionStats       Region = "stats"
	RegionMap         Region = "map"
	RegionLeaderboard Region = "leaderboard"
	RegionFilters     Region = "filters"
)

// RegionEvent describes a region rebuild that transports might care about.
type RegionEvent struct {
	Region  Region `json:"region"`
	Cycle   string `json:"cycle,omitempty"`
	Payload any    `json:"payload"`
}

type noopRefreshHook struct{}

func (noopRefreshHook) RegionUpdated(context.Context, RegionEvent) error {
	return nil
}

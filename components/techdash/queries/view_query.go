package queries

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-techboard/components/techdash"
)

type viewSource interface {
	View() techdash.DashboardView
}

// DashboardViewInput selects the full snapshot; there are no filters.
type DashboardViewInput struct{}

// DashboardViewQuery returns the current snapshot of every region.
type DashboardViewQuery struct {
	source viewSource
}

// NewDashboardViewQuery builds the query.
func NewDashboardViewQuery(source viewSource) *DashboardViewQuery {
	return &DashboardViewQuery{source: source}
}

var _ gocommand.Querier[DashboardViewInput, techdash.DashboardView] = (*DashboardViewQuery)(nil)

// Query returns the snapshot.
func (q *DashboardViewQuery) Query(_ context.Context, _ DashboardViewInput) (techdash.DashboardView, error) {
	return q.source.View(), nil
}

// RegionViewInput names a single region.
type RegionViewInput struct {
	Region techdash.Region
}

// RegionViewQuery returns the view-model of one region.
type RegionViewQuery struct {
	source viewSource
}

// NewRegionViewQuery builds the query.
func NewRegionViewQuery(source viewSource) *RegionViewQuery {
	return &RegionViewQuery{source: source}
}

var _ gocommand.Querier[RegionViewInput, any] = (*RegionViewQuery)(nil)

// Query resolves the region payload.
func (q *RegionViewQuery) Query(_ context.Context, input RegionViewInput) (any, error) {
	view := q.source.View()
	switch input.Region {
	case techdash.RegionStats:
		return view.Stats, nil
	case techdash.RegionMap:
		return view.Map, nil
	case techdash.RegionLeaderboard:
		return view.Leaderboard, nil
	case techdash.RegionFilters:
		return view.Filters, nil
	default:
		return nil, fmt.Errorf("techdash: unknown region %q", input.Region)
	}
}

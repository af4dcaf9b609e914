package erpclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-techboard/components/techdash"
)

func TestMockClientFixtures(t *testing.T) {
	total := 3
	client := NewMockClient(MockData{
		Stats:  techdash.DashboardStats{TotalWorkers: &total},
		OnDuty: []techdash.LocationRecord{{WorkerID: "a"}},
		All:    []techdash.LocationRecord{{WorkerID: "a"}, {WorkerID: "b"}},
		Leaderboard: map[techdash.TimeSpan][]techdash.LeaderboardEntry{
			techdash.TimeSpanAllTime: {{WorkerName: "Ali", CompletedCount: 4}},
			techdash.TimeSpanToday:   {{WorkerName: "Sara", CompletedCount: 1}},
		},
	})
	ctx := context.Background()

	stats, err := client.FetchStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, *stats.TotalWorkers)

	onDuty, err := client.FetchLatestLocations(ctx, true)
	require.NoError(t, err)
	assert.Len(t, onDuty.Records, 1)
	all, err := client.FetchLatestLocations(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all.Records, 2)

	today, err := client.FetchLeaderboard(ctx, techdash.TimeSpanToday)
	require.NoError(t, err)
	assert.Equal(t, "Sara", today.Entries[0].WorkerName)
	week, err := client.FetchLeaderboard(ctx, techdash.TimeSpanWeek)
	require.NoError(t, err)
	assert.Equal(t, "Ali", week.Entries[0].WorkerName)

	client.SetData(MockData{})
	onDuty, err = client.FetchLatestLocations(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, onDuty.Records)
}

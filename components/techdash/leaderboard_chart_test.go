package techdash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	keys []string
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	c.keys = append(c.keys, key)
	return render()
}

func TestLeaderboardChartRender(t *testing.T) {
	chart := NewLeaderboardChart(WithChartCache(nil), WithChartAssetsHost("https://cdn.example.com/"))
	html, err := chart.Render(TimeSpanAllTime, []LeaderboardEntry{
		{WorkerName: "Ali", CompletedCount: 12},
		{WorkerName: "Sara", CompletedCount: 8},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Top Performers")
	assert.Contains(t, html, "Ali")
	assert.Contains(t, html, "https://cdn.example.com/")
}

func TestLeaderboardChartRequiresEntries(t *testing.T) {
	_, err := NewLeaderboardChart().Render(TimeSpanAllTime, nil)
	require.Error(t, err)
}

func TestLeaderboardChartTruncatesAndKeysCache(t *testing.T) {
	cache := &countingCache{}
	chart := NewLeaderboardChart(WithChartCache(cache), WithChartTop(2))
	entries := make([]LeaderboardEntry, 5)
	for i := range entries {
		entries[i] = LeaderboardEntry{WorkerName: fmt.Sprintf("tech-%d", i), CompletedCount: 10 - i}
	}

	html, err := chart.Render(TimeSpanWeek, entries)
	require.NoError(t, err)
	assert.Contains(t, html, "tech-1")
	assert.NotContains(t, html, "tech-2")

	require.Len(t, cache.keys, 1)
	assert.Equal(t, fmt.Sprintf("leaderboard:week:%s", entriesHash(entries[:2])), cache.keys[0])
}

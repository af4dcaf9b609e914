package erpclient

import (
	"context"
	"sync"

	"github.com/goliatone/go-techboard/components/techdash"
)

// MockData seeds deterministic ERP responses for tests or local demos.
type MockData struct {
	Stats       techdash.DashboardStats
	OnDuty      []techdash.LocationRecord
	All         []techdash.LocationRecord
	Leaderboard map[techdash.TimeSpan][]techdash.LeaderboardEntry
}

// MockClient implements techdash.Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

var _ techdash.Client = (*MockClient)(nil)

// NewMockClient builds a mock ERP client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// SetData swaps the fixtures, e.g. to simulate technicians going off duty.
func (c *MockClient) SetData(data MockData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
}

// FetchStats returns the configured stats.
func (c *MockClient) FetchStats(context.Context) (techdash.DashboardStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Stats, nil
}

// FetchLatestLocations returns the on-duty or full fixture set.
func (c *MockClient) FetchLatestLocations(_ context.Context, onDutyOnly bool) (techdash.LocationBatch, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src := c.data.All
	if onDutyOnly {
		src = c.data.OnDuty
	}
	return techdash.LocationBatch{Records: append([]techdash.LocationRecord(nil), src...)}, nil
}

// FetchLeaderboard returns the fixture for span, falling back to all time.
func (c *MockClient) FetchLeaderboard(_ context.Context, span techdash.TimeSpan) (techdash.LeaderboardResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, ok := c.data.Leaderboard[span]
	if !ok {
		entries = c.data.Leaderboard[techdash.TimeSpanAllTime]
	}
	return techdash.LeaderboardResult{Entries: append([]techdash.LeaderboardEntry(nil), entries...)}, nil
}

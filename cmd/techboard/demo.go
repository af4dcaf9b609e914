package main

import (
	"time"

	"github.com/goliatone/go-techboard/components/techdash"
	"github.com/goliatone/go-techboard/pkg/erpclient"
)

func demoData(now time.Time) erpclient.MockData {
	total, active, open, assigned := 24, 9, 31, 17
	avg := 5.75
	onDuty := []techdash.LocationRecord{
		{WorkerID: "TECH-0001", WorkerName: "Ahmed Raza", Latitude: 31.5204, Longitude: 74.3587, CapturedAt: now.Add(-40 * time.Second)},
		{WorkerID: "TECH-0002", WorkerName: "Sana Malik", Latitude: 24.8607, Longitude: 67.0011, CapturedAt: now.Add(-12 * time.Minute)},
		{WorkerID: "TECH-0003", WorkerName: "Bilal Khan", Latitude: 33.6844, Longitude: 73.0479, CapturedAt: now.Add(-2 * time.Hour)},
	}
	all := append(append([]techdash.LocationRecord(nil), onDuty...),
		techdash.LocationRecord{WorkerID: "TECH-0004", WorkerName: "Hina Shah", Latitude: 30.1575, Longitude: 71.5249, CapturedAt: now.Add(-26 * time.Hour)},
	)
	board := []techdash.LeaderboardEntry{
		{WorkerName: "Sana Malik", CompletedCount: 42},
		{WorkerName: "Ahmed Raza", CompletedCount: 37},
		{WorkerName: "Bilal Khan", CompletedCount: 29},
		{WorkerName: "Hina Shah", CompletedCount: 18},
	}
	return erpclient.MockData{
		Stats: techdash.DashboardStats{
			TotalWorkers:       &total,
			ActiveWorkers:      &active,
			OpenItems:          &open,
			AssignedItems:      &assigned,
			AvgResolutionHours: &avg,
		},
		OnDuty: onDuty,
		All:    all,
		Leaderboard: map[techdash.TimeSpan][]techdash.LeaderboardEntry{
			techdash.TimeSpanAllTime: board,
			techdash.TimeSpanToday:   board[:2],
		},
	}
}

package erpclient

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-techboard/components/techdash"
)

// erpTimeLayouts are tried in order for zone-less ERP datetimes.
var erpTimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
}

func statsFromFields(fields map[string]json.RawMessage) techdash.DashboardStats {
	var stats techdash.DashboardStats
	stats.TotalWorkers = intField(fields, "total_technicians")
	stats.ActiveWorkers = intField(fields, "active_technicians")
	stats.OpenItems = intField(fields, "open_complaints")
	stats.AssignedItems = intField(fields, "assigned_complaints")
	if v, ok := numberValue(fields["avg_resolution_time"]); ok {
		stats.AvgResolutionHours = &v
	}
	return stats
}

func intField(fields map[string]json.RawMessage, key string) *int {
	v, ok := numberValue(fields[key])
	if !ok {
		return nil
	}
	n := int(math.Round(v))
	return &n
}

// numberValue accepts JSON numbers and numeric strings. Null, missing and
// anything else is reported as absent.
func numberValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseTimestamp accepts RFC3339 or the ERP "YYYY-MM-DD HH:MM:SS[.ffffff]"
// form in loc. Unparseable input yields the zero time.
func parseTimestamp(raw string, loc *time.Location) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	for _, layout := range erpTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

type locationRequest struct {
	OnDutyOnly int `json:"on_duty_only"`
}

type locationRow struct {
	Technician     string          `json:"technician"`
	TechnicianName string          `json:"technician_name"`
	Latitude       json.RawMessage `json:"latitude"`
	Longitude      json.RawMessage `json:"longitude"`
	CapturedAt     string          `json:"captured_at"`
}

type locationResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Data    []locationRow `json:"data"`
}

func (r locationResponse) toBatch(loc *time.Location) techdash.LocationBatch {
	batch := techdash.LocationBatch{Records: make([]techdash.LocationRecord, 0, len(r.Data))}
	for _, row := range r.Data {
		lat, okLat := numberValue(row.Latitude)
		lng, okLng := numberValue(row.Longitude)
		if !okLat || !okLng || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			batch.Skipped++
			continue
		}
		name := row.TechnicianName
		if name == "" {
			name = row.Technician
		}
		batch.Records = append(batch.Records, techdash.LocationRecord{
			WorkerID:   row.Technician,
			WorkerName: name,
			Latitude:   lat,
			Longitude:  lng,
			CapturedAt: parseTimestamp(row.CapturedAt, loc),
		})
	}
	return batch
}

type leaderboardRequest struct {
	Timespan string `json:"timespan"`
	FromDate string `json:"from_date,omitempty"`
}

type leaderboardRow struct {
	Technician string          `json:"technician"`
	Count      json.RawMessage `json:"count"`
}

func leaderboardFromRaw(raw json.RawMessage) techdash.LeaderboardResult {
	var rows []leaderboardRow
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return techdash.LeaderboardResult{Malformed: true}
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return techdash.LeaderboardResult{Malformed: true}
	}
	entries := make([]techdash.LeaderboardEntry, len(rows))
	for i, row := range rows {
		count, _ := numberValue(row.Count)
		entries[i] = techdash.LeaderboardEntry{
			WorkerName:     row.Technician,
			CompletedCount: int(math.Round(count)),
		}
	}
	return techdash.LeaderboardResult{Entries: entries}
}

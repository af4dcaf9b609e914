package techdash

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ettle/strcase"
)

// TimeSpan selects the ranking window used by the leaderboard.
type TimeSpan string

const (
	TimeSpanAllTime TimeSpan = "all_time"
	TimeSpanMonth   TimeSpan = "month"
	TimeSpanWeek    TimeSpan = "week"
	TimeSpanToday   TimeSpan = "today"
)

// DefaultTimeSpan is active when the dashboard mounts.
const DefaultTimeSpan = TimeSpanAllTime

// ErrUnknownTimeSpan is returned for spans outside the supported set.
var ErrUnknownTimeSpan = errors.New("techdash: unknown time span")

var timeSpans = []TimeSpan{TimeSpanAllTime, TimeSpanMonth, TimeSpanWeek, TimeSpanToday}

var timeSpanLabels = map[TimeSpan]string{
	TimeSpanAllTime: "All",
	TimeSpanMonth:   "Mon",
	TimeSpanWeek:    "Wk",
	TimeSpanToday:   "Day",
}

var timeSpanAliases = map[string]TimeSpan{
	"all":   TimeSpanAllTime,
	"mon":   TimeSpanMonth,
	"wk":    TimeSpanWeek,
	"day":   TimeSpanToday,
	"daily": TimeSpanToday,
}

// TimeSpans lists the supported spans in button order.
func TimeSpans() []TimeSpan {
	return append([]TimeSpan(nil), timeSpans...)
}

// ParseTimeSpan accepts the canonical names plus button labels and casing
// variants such as "AllTime" or "all-time". Blank input selects the default.
func ParseTimeSpan(raw string) (TimeSpan, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTimeSpan, nil
	}
	normalized := strcase.ToSnake(raw)
	if span := TimeSpan(normalized); span.Valid() {
		return span, nil
	}
	if span, ok := timeSpanAliases[normalized]; ok {
		return span, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeSpan, raw)
}

// Valid reports whether the span is one of the supported windows.
func (s TimeSpan) Valid() bool {
	_, ok := timeSpanLabels[s]
	return ok
}

// Label returns the short button caption.
func (s TimeSpan) Label() string {
	if label, ok := timeSpanLabels[s]; ok {
		return label
	}
	return string(s)
}

// Since returns the inclusive start of the window relative to now. The zero
// time means unbounded.
func (s TimeSpan) Since(now time.Time) time.Time {
	y, m, d := now.Date()
	switch s {
	case TimeSpanMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case TimeSpanWeek:
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -7)
	case TimeSpanToday:
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// FilterButton is the view-model of a single time span toggle.
type FilterButton struct {
	Span   TimeSpan `json:"span"`
	Label  string   `json:"label"`
	Active bool     `json:"active"`
}

func filterButtons(active TimeSpan) []FilterButton {
	buttons := make([]FilterButton, len(timeSpans))
	for i, span := range timeSpans {
		buttons[i] = FilterButton{Span: span, Label: span.Label(), Active: span == active}
	}
	return buttons
}

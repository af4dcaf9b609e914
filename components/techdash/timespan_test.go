package techdash

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSpan(t *testing.T) {
	cases := map[string]TimeSpan{
		"":         TimeSpanAllTime,
		"all_time": TimeSpanAllTime,
		"AllTime":  TimeSpanAllTime,
		"all-time": TimeSpanAllTime,
		"All":      TimeSpanAllTime,
		"month":    TimeSpanMonth,
		"Mon":      TimeSpanMonth,
		"week":     TimeSpanWeek,
		"Wk":       TimeSpanWeek,
		"today":    TimeSpanToday,
		"Day":      TimeSpanToday,
		" daily ":  TimeSpanToday,
	}
	for raw, want := range cases {
		got, err := ParseTimeSpan(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseTimeSpanRejectsUnknown(t *testing.T) {
	_, err := ParseTimeSpan("fortnight")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTimeSpan))
	assert.Contains(t, err.Error(), "fortnight")
}

func TestTimeSpanSince(t *testing.T) {
	now := time.Date(2024, time.March, 20, 15, 30, 0, 0, time.UTC)

	assert.True(t, TimeSpanAllTime.Since(now).IsZero())
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), TimeSpanMonth.Since(now))
	assert.Equal(t, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), TimeSpanWeek.Since(now))
	assert.Equal(t, time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), TimeSpanToday.Since(now))
}

func TestFilterButtonsExactlyOneActive(t *testing.T) {
	for _, span := range TimeSpans() {
		buttons := filterButtons(span)
		require.Len(t, buttons, 4)
		active := 0
		for _, b := range buttons {
			if b.Active {
				active++
				assert.Equal(t, span, b.Span)
			}
		}
		assert.Equal(t, 1, active, span)
	}
	labels := []string{}
	for _, b := range filterButtons(DefaultTimeSpan) {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"All", "Mon", "Wk", "Day"}, labels)
}

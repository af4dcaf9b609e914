package techdash

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "300px"
	defaultChartTop    = 10
)

// LeaderboardChart renders the top entries as a server-side bar chart.
type LeaderboardChart struct {
	cache      RenderCache
	theme      string
	assetsHost string
	top        int
}

// ChartOption customizes chart rendering.
type ChartOption func(*LeaderboardChart)

// WithChartCache injects a render cache. A nil cache disables caching.
func WithChartCache(cache RenderCache) ChartOption {
	return func(c *LeaderboardChart) {
		c.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(c *LeaderboardChart) {
		c.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so the echarts runtime loads from a CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(c *LeaderboardChart) {
		c.assetsHost = host
	}
}

// WithChartTop limits the number of bars.
func WithChartTop(n int) ChartOption {
	return func(c *LeaderboardChart) {
		if n > 0 {
			c.top = n
		}
	}
}

// NewLeaderboardChart builds a chart renderer with a five minute cache.
func NewLeaderboardChart(opts ...ChartOption) *LeaderboardChart {
	c := &LeaderboardChart{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
		top:   defaultChartTop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render returns chart markup for the leading entries.
func (c *LeaderboardChart) Render(span TimeSpan, entries []LeaderboardEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("techdash: leaderboard chart requires entries")
	}
	if len(entries) > c.top {
		entries = entries[:c.top]
	}
	render := func() (string, error) {
		return c.render(span, entries)
	}
	if c.cache == nil {
		return render()
	}
	return c.cache.GetOrRender(fmt.Sprintf("leaderboard:%s:%s", span, entriesHash(entries)), render)
}

func (c *LeaderboardChart) render(span TimeSpan, entries []LeaderboardEntry) (string, error) {
	labels := make([]string, len(entries))
	data := make([]opts.BarData, len(entries))
	for i, entry := range entries {
		labels[i] = entry.WorkerName
		data[i] = opts.BarData{Name: entry.WorkerName, Value: entry.CompletedCount}
	}
	initOpts := opts.Initialization{
		Theme:  c.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Top Performers", Subtitle: span.Label()}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Completed", data)
	return renderChart(bar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func entriesHash(entries []LeaderboardEntry) string {
	b, err := json.Marshal(entries)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

package techdash

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	errMissingStatsClient       = errors.New("techdash: stats client not configured")
	errMissingLocationClient    = errors.New("techdash: location client not configured")
	errMissingLeaderboardClient = errors.New("techdash: leaderboard client not configured")

	// ErrAlreadyStarted is returned by Start while a refresh loop is running.
	ErrAlreadyStarted = errors.New("techdash: dashboard already started")
	// ErrNotMounted is returned by operations that need a mounted view.
	ErrNotMounted = errors.New("techdash: dashboard not mounted")
)

// Host is the lifecycle surface a host adapter drives. The controller holds no
// ambient state beyond its own fields.
type Host interface {
	OnMount(ctx context.Context) error
	OnRefresh(ctx context.Context)
	OnFilterChange(ctx context.Context, span string) error
	OnUnmount()
}

// Options configures the Controller. Every collaborator is provided via
// interface so hosts can swap transports.
type Options struct {
	Stats         StatsClient
	Locations     LocationClient
	Leaderboard   LeaderboardClient
	RefreshHook   RefreshHook
	Telemetry     Telemetry
	Logger        *zap.Logger
	Interval      time.Duration
	TickerFactory TickerFactory
	Now           func() time.Time
	Chart         *LeaderboardChart
	MapOptions    []MapOption
}

// DashboardView is a full snapshot of every region.
type DashboardView struct {
	Mounted     bool            `json:"mounted"`
	ActiveSpan  TimeSpan        `json:"active_span"`
	Filters     []FilterButton  `json:"filters"`
	Stats       StatsView       `json:"stats"`
	Map         MapView         `json:"map"`
	Leaderboard LeaderboardView `json:"leaderboard"`
}

// Controller orchestrates the three fetch clients and their renderers and
// owns the refresh lifecycle.
type Controller struct {
	opts   Options
	logger *zap.Logger
	board  LeaderboardRenderer

	mu          sync.Mutex
	mounted     bool
	span        TimeSpan
	handle      *RefreshHandle
	stats       *StatsPanel
	mapRenderer *MapRenderer
	leaderboard LeaderboardView
}

var _ Host = (*Controller)(nil)

// NewController validates the clients and applies defaults.
func NewController(opts Options) (*Controller, error) {
	if opts.Stats == nil {
		return nil, errMissingStatsClient
	}
	if opts.Locations == nil {
		return nil, errMissingLocationClient
	}
	if opts.Leaderboard == nil {
		return nil, errMissingLeaderboardClient
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = NormalizeTelemetry(opts.Telemetry)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultRefreshInterval
	}
	if opts.TickerFactory == nil {
		opts.TickerFactory = NewRealTicker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		opts:   opts,
		logger: opts.Logger.Named("techdash"),
		board:  LeaderboardRenderer{Chart: opts.Chart},
	}
	c.resetLocked()
	return c, nil
}

// Start mounts the view, runs one refresh, then refreshes on a fixed interval
// until the returned handle (or Stop) cancels the loop.
func (c *Controller) Start(ctx context.Context) (*RefreshHandle, error) {
	c.mu.Lock()
	if c.handle != nil {
		c.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	c.resetLocked()
	c.mounted = true
	loopCtx, cancel := context.WithCancel(ctx)
	handle := newRefreshHandle(cancel)
	c.handle = handle
	c.mu.Unlock()

	c.logger.Info("dashboard mounted", zap.Duration("interval", c.opts.Interval))
	c.recordTelemetry(ctx, "techdash.mount", map[string]any{"interval": c.opts.Interval.String()})

	c.Refresh(loopCtx)
	ticker := c.opts.TickerFactory(c.opts.Interval)
	go c.loop(loopCtx, ticker, handle)
	return handle, nil
}

func (c *Controller) loop(ctx context.Context, ticker Ticker, handle *RefreshHandle) {
	defer close(handle.done)
	defer c.detach(handle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !c.isMounted() {
				return
			}
			c.Refresh(ctx)
		}
	}
}

// Stop unmounts the view and cancels the refresh loop. Responses still in
// flight are discarded.
func (c *Controller) Stop() {
	c.mu.Lock()
	wasMounted := c.mounted
	c.mounted = false
	handle := c.handle
	c.handle = nil
	c.mu.Unlock()

	handle.Stop()
	if wasMounted {
		c.logger.Info("dashboard unmounted")
		c.recordTelemetry(context.Background(), "techdash.unmount", nil)
	}
}

// Refresh fans out the stats, location and leaderboard fetches. Each renders
// its own region; a failure in one never blocks the others.
func (c *Controller) Refresh(ctx context.Context) {
	if !c.isMounted() {
		return
	}
	cycle := uuid.NewString()
	span := c.ActiveSpan()
	started := c.opts.Now()

	var g errgroup.Group
	g.Go(func() error {
		c.refreshStats(ctx, cycle)
		return nil
	})
	g.Go(func() error {
		c.refreshLocations(ctx, cycle)
		return nil
	})
	g.Go(func() error {
		c.refreshLeaderboard(ctx, cycle, span)
		return nil
	})
	_ = g.Wait()

	c.recordTelemetry(ctx, "techdash.refresh", map[string]any{
		"cycle":    cycle,
		"span":     string(span),
		"duration": c.opts.Now().Sub(started).String(),
	})
}

// SelectTimeSpan marks span as the sole active filter and refetches only the
// leaderboard.
func (c *Controller) SelectTimeSpan(ctx context.Context, span TimeSpan) error {
	if !span.Valid() {
		return ErrUnknownTimeSpan
	}
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	c.span = span
	filters := filterButtons(span)
	c.mu.Unlock()

	cycle := uuid.NewString()
	c.publish(ctx, RegionEvent{Region: RegionFilters, Cycle: cycle, Payload: filters})
	c.recordTelemetry(ctx, "techdash.filter", map[string]any{"span": string(span)})
	c.refreshLeaderboard(ctx, cycle, span)
	return nil
}

// ActiveSpan returns the currently selected leaderboard window.
func (c *Controller) ActiveSpan() TimeSpan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.span
}

// View returns a snapshot of every region.
func (c *Controller) View() DashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DashboardView{
		Mounted:     c.mounted,
		ActiveSpan:  c.span,
		Filters:     filterButtons(c.span),
		Stats:       c.stats.View(),
		Map:         c.mapRenderer.View(),
		Leaderboard: c.leaderboard,
	}
}

// OnMount starts the refresh loop; the handle is kept internally.
func (c *Controller) OnMount(ctx context.Context) error {
	_, err := c.Start(ctx)
	return err
}

// OnRefresh runs a manual refresh cycle.
func (c *Controller) OnRefresh(ctx context.Context) {
	c.Refresh(ctx)
}

// OnFilterChange parses the raw span from the host and selects it.
func (c *Controller) OnFilterChange(ctx context.Context, raw string) error {
	span, err := ParseTimeSpan(raw)
	if err != nil {
		return err
	}
	return c.SelectTimeSpan(ctx, span)
}

// OnUnmount tears the dashboard down.
func (c *Controller) OnUnmount() {
	c.Stop()
}

func (c *Controller) refreshStats(ctx context.Context, cycle string) {
	stats, err := c.opts.Stats.FetchStats(ctx)
	if err != nil {
		c.fetchFailed(ctx, RegionStats, cycle, err)
		return
	}
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	view, applied := c.stats.Apply(stats)
	c.mu.Unlock()

	if applied < statFields {
		c.logger.Debug("partial stats response", zap.String("cycle", cycle), zap.Int("fields", applied))
	}
	c.publish(ctx, RegionEvent{Region: RegionStats, Cycle: cycle, Payload: view})
}

func (c *Controller) refreshLocations(ctx context.Context, cycle string) {
	batch, fallback, err := c.fetchLocations(ctx, cycle)
	if err != nil {
		c.fetchFailed(ctx, RegionMap, cycle, err)
	}
	if batch.Skipped > 0 {
		c.logger.Debug("skipped malformed locations", zap.String("cycle", cycle), zap.Int("skipped", batch.Skipped))
	}
	now := c.opts.Now()

	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mapRenderer.SetFallback(fallback)
	view := c.mapRenderer.Update(batch.Records, now)
	c.mu.Unlock()

	c.publish(ctx, RegionEvent{Region: RegionMap, Cycle: cycle, Payload: view})
}

// fetchLocations queries on-duty technicians first and falls back to every
// technician only when that returns nothing. The bool reports whether the
// fallback produced the markers.
func (c *Controller) fetchLocations(ctx context.Context, cycle string) (LocationBatch, bool, error) {
	primary, err := c.opts.Locations.FetchLatestLocations(ctx, true)
	if err == nil && len(primary.Records) > 0 {
		return primary, false, nil
	}
	if err != nil {
		c.logger.Warn("on-duty location query failed", zap.String("cycle", cycle), zap.Error(err))
	}
	all, err := c.opts.Locations.FetchLatestLocations(ctx, false)
	if err != nil {
		return LocationBatch{}, false, err
	}
	all.Skipped += primary.Skipped
	return all, len(all.Records) > 0, nil
}

func (c *Controller) refreshLeaderboard(ctx context.Context, cycle string, span TimeSpan) {
	var view LeaderboardView
	result, err := c.opts.Leaderboard.FetchLeaderboard(ctx, span)
	if err != nil {
		c.fetchFailed(ctx, RegionLeaderboard, cycle, err)
		view = c.board.Placeholder(span)
	} else {
		view = c.board.Render(span, result)
	}

	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.leaderboard = view
	c.mu.Unlock()

	c.publish(ctx, RegionEvent{Region: RegionLeaderboard, Cycle: cycle, Payload: view})
}

func (c *Controller) fetchFailed(ctx context.Context, region Region, cycle string, err error) {
	if !c.isMounted() {
		return
	}
	c.logger.Warn("fetch failed",
		zap.String("region", string(region)),
		zap.String("cycle", cycle),
		zap.Error(err),
	)
	c.recordTelemetry(ctx, "techdash.fetch_error", map[string]any{
		"region": string(region),
		"cycle":  cycle,
		"error":  err.Error(),
	})
}

func (c *Controller) publish(ctx context.Context, event RegionEvent) {
	if err := c.opts.RefreshHook.RegionUpdated(ctx, event); err != nil {
		c.logger.Debug("refresh hook failed", zap.String("region", string(event.Region)), zap.Error(err))
	}
}

func (c *Controller) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	c.opts.Telemetry.Record(ctx, event, payload)
}

// detach unmounts the view when the loop exits through its own handle or a
// cancelled parent context.
func (c *Controller) detach(handle *RefreshHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != handle {
		return
	}
	c.handle = nil
	c.mounted = false
}

func (c *Controller) isMounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

func (c *Controller) resetLocked() {
	c.span = DefaultTimeSpan
	c.stats = NewStatsPanel()
	c.mapRenderer = NewMapRenderer(c.opts.MapOptions...)
	c.leaderboard = c.board.Loading(DefaultTimeSpan)
}

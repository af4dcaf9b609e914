package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-techboard/components/techdash"
	"github.com/goliatone/go-techboard/components/techdash/commands"
	"github.com/goliatone/go-techboard/components/techdash/gorouter"
	"github.com/goliatone/go-techboard/components/techdash/httpapi"
	"github.com/goliatone/go-techboard/components/techdash/queries"
	"github.com/goliatone/go-techboard/pkg/config"
	"github.com/goliatone/go-techboard/pkg/erpclient"
)

type cli struct {
	Globals

	Serve    serveCmd    `cmd:"" default:"1" help:"Serve the live technician dashboard."`
	Snapshot snapshotCmd `cmd:"" help:"Run one refresh cycle and print the dashboard view as JSON."`
	Check    checkCmd    `cmd:"" help:"Validate the configuration file and exit."`
}

type Globals struct {
	Config    string        `type:"path" env:"TECHBOARD_CONFIG" help:"Path to a YAML configuration file."`
	EnvFile   []string      `name:"env-file" default:".env" help:"Dotenv files loaded before flags are resolved."`
	Verbose   bool          `short:"v" env:"TECHBOARD_VERBOSE" help:"Enable debug logging."`
	Listen    string        `env:"TECHBOARD_LISTEN" help:"Address the HTTP server binds to."`
	BasePath  string        `name:"base-path" env:"TECHBOARD_BASE_PATH" help:"Route prefix for dashboard endpoints."`
	Interval  time.Duration `env:"TECHBOARD_REFRESH_INTERVAL" help:"Refresh interval (default 60s)."`
	ERPURL    string        `name:"erp-url" env:"TECHBOARD_ERP_URL" help:"Base URL of the ERP site."`
	APIKey    string        `name:"api-key" env:"TECHBOARD_API_KEY" help:"ERP API key."`
	APISecret string        `name:"api-secret" env:"TECHBOARD_API_SECRET" help:"ERP API secret."`
	Demo      bool          `env:"TECHBOARD_DEMO" help:"Serve in-memory fixtures instead of calling the ERP."`
}

type serveCmd struct {
	Transport string `enum:"fiber,http" default:"fiber" env:"TECHBOARD_TRANSPORT" help:"HTTP stack: fiber (go-router) or http (net/http with SSE at /events)."`
}

// listener is the serve/shutdown surface shared by both transports.
type listener interface {
	Serve(address string) error
	Shutdown(ctx context.Context) error
}

type netHTTPServer struct {
	srv *http.Server
}

func (s *netHTTPServer) Serve(address string) error {
	s.srv.Addr = address
	return s.srv.ListenAndServe()
}

func (s *netHTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type snapshotCmd struct {
	Span string `default:"all_time" help:"Leaderboard span (all_time, month, week, today)."`
}

type checkCmd struct{}

func main() {
	// Dotenv files must be loaded before kong resolves env-backed flags.
	if err := config.LoadDotEnv(envFilesFromArgs(os.Args[1:])...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("techboard"),
		kong.Description("Live technician dashboard: KPIs, map and leaderboard fed by the ERP."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&c.Globals)
	ctx.FatalIfErrorf(err)
}

func envFilesFromArgs(args []string) []string {
	var files []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--env-file" && i+1 < len(args) {
			files = append(files, args[i+1])
			i++
			continue
		}
		if path, ok := strings.CutPrefix(args[i], "--env-file="); ok && path != "" {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	return files
}

func (g *Globals) resolve() (config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, err
	}
	if g.Listen != "" {
		cfg.Listen = g.Listen
	}
	if g.BasePath != "" {
		cfg.BasePath = g.BasePath
	}
	if g.Interval > 0 {
		cfg.RefreshInterval = g.Interval.String()
	}
	if g.ERPURL != "" {
		cfg.ERP.BaseURL = g.ERPURL
	}
	if g.APIKey != "" {
		cfg.ERP.APIKey = g.APIKey
	}
	if g.APISecret != "" {
		cfg.ERP.APISecret = g.APISecret
	}
	if g.Demo {
		cfg.Demo = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (g *Globals) logger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if g.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

func (cmd *checkCmd) Run(g *Globals) error {
	cfg, err := g.resolve()
	if err != nil {
		return err
	}
	fmt.Printf("configuration ok: listen=%s base_path=%s interval=%s demo=%t\n", cfg.Listen, cfg.BasePath, cfg.Interval(), cfg.Demo)
	return nil
}

func (cmd *snapshotCmd) Run(g *Globals) error {
	cfg, err := g.resolve()
	if err != nil {
		return err
	}
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	controller, err := buildController(cfg, logger, nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := controller.Start(ctx); err != nil {
		return err
	}
	defer controller.Stop()
	if err := controller.OnFilterChange(ctx, cmd.Span); err != nil {
		return err
	}
	view, err := queries.NewDashboardViewQuery(controller).Query(ctx, queries.DashboardViewInput{})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func (cmd *serveCmd) Run(g *Globals) error {
	cfg, err := g.resolve()
	if err != nil {
		return err
	}
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	hook := techdash.NewBroadcastHook()
	controller, err := buildController(cfg, logger, hook)
	if err != nil {
		return err
	}
	renderer, err := techdash.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("techboard: template renderer: %w", err)
	}

	telemetry := techdash.ZapTelemetry{Logger: logger.Named("commands")}
	var server listener
	switch cmd.Transport {
	case "http":
		server = &netHTTPServer{srv: &http.Server{
			Handler:           buildMux(cfg, controller, hook, renderer, telemetry),
			ReadHeaderTimeout: 10 * time.Second,
		}}
	default:
		adapter := router.NewFiberAdapter()
		if err := gorouter.Register(gorouter.Config[*fiber.App]{
			Router:     adapter.Router(),
			Controller: controller,
			Renderer:   renderer,
			Telemetry:  telemetry,
			Broadcast:  hook,
			BasePath:   cfg.BasePath,
		}); err != nil {
			return fmt.Errorf("techboard: register routes: %w", err)
		}
		server = adapter
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := controller.Start(ctx); err != nil {
		return err
	}
	defer controller.Stop()

	logger.Info("technician dashboard ready",
		zap.String("listen", cfg.Listen),
		zap.String("page", cfg.BasePath+"/technicians"),
		zap.Bool("demo", cfg.Demo),
		zap.String("transport", cmd.Transport),
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.Serve(cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("techboard: serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		controller.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// buildMux serves the dashboard on net/http, adding SSE at /events and the
// gorilla WebSocket stream at /ws.
func buildMux(cfg config.Config, controller *techdash.Controller, hook *techdash.BroadcastHook, renderer techdash.Renderer, telemetry techdash.Telemetry) *http.ServeMux {
	api := &httpapi.Handlers{
		View:       queries.NewDashboardViewQuery(controller),
		Region:     queries.NewRegionViewQuery(controller),
		SelectSpan: commands.NewSelectTimeSpanCommand(controller, telemetry),
		Refresh:    commands.NewRefreshDashboardCommand(controller, telemetry),
		Mount:      commands.NewMountDashboardCommand(controller, telemetry),
		Unmount:    commands.NewUnmountDashboardCommand(controller, telemetry),
		Events:     hook,
		WebSocket:  hook.ServeWebSocket,
		Renderer:   renderer,
	}
	mux := http.NewServeMux()
	api.Register(mux, strings.TrimRight(cfg.BasePath, "/")+"/technicians")
	return mux
}

func buildController(cfg config.Config, logger *zap.Logger, hook techdash.RefreshHook) (*techdash.Controller, error) {
	var client techdash.Client
	if cfg.Demo {
		client = erpclient.NewMockClient(demoData(time.Now()))
	} else {
		httpClient, err := erpclient.NewHTTPClient(erpclient.HTTPConfig{
			BaseURL:    cfg.ERP.BaseURL,
			APIKey:     cfg.ERP.APIKey,
			APISecret:  cfg.ERP.APISecret,
			HTTPClient: &http.Client{Timeout: cfg.Timeout()},
			Methods: erpclient.Methods{
				Stats:       cfg.ERP.Methods.Stats,
				Locations:   cfg.ERP.Methods.Locations,
				Leaderboard: cfg.ERP.Methods.Leaderboard,
			},
			Location: cfg.Location(),
		})
		if err != nil {
			return nil, err
		}
		client = httpClient
	}

	var chart *techdash.LeaderboardChart
	if cfg.Leaderboard.Chart {
		opts := []techdash.ChartOption{
			techdash.WithChartCache(techdash.NewChartCache(cfg.ChartCacheTTL())),
			techdash.WithChartTop(cfg.Leaderboard.ChartTop),
		}
		if cfg.Leaderboard.ChartAssetsHost != "" {
			opts = append(opts, techdash.WithChartAssetsHost(cfg.Leaderboard.ChartAssetsHost))
		}
		chart = techdash.NewLeaderboardChart(opts...)
	}

	return techdash.NewController(techdash.Options{
		Stats:       client,
		Locations:   client,
		Leaderboard: client,
		RefreshHook: hook,
		Telemetry:   techdash.ZapTelemetry{Logger: logger.Named("telemetry")},
		Logger:      logger,
		Interval:    cfg.Interval(),
		Chart:       chart,
		MapOptions: []techdash.MapOption{
			techdash.WithMapCenter(techdash.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng}, cfg.Map.Zoom),
			techdash.WithMapPadding(cfg.Map.Padding),
		},
	})
}

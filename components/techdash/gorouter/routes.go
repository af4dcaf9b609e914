package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-techboard/components/techdash"
	"github.com/goliatone/go-techboard/components/techdash/commands"
	"github.com/goliatone/go-techboard/components/techdash/httpapi"
	"github.com/goliatone/go-techboard/components/techdash/queries"
)

// Config wires go-router with the technician dashboard controller, commands and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *techdash.Controller
	Renderer   techdash.Renderer
	SelectSpan gocommand.Commander[commands.SelectTimeSpanInput]
	Refresh    gocommand.Commander[commands.RefreshDashboardInput]
	Mount      gocommand.Commander[commands.MountDashboardInput]
	Unmount    gocommand.Commander[commands.UnmountDashboardInput]
	Telemetry  commands.Telemetry
	Broadcast  *techdash.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	View        string
	Region      string
	Leaderboard string
	Refresh     string
	Mount       string
	Unmount     string
	WebSocket   string
}

// Register mounts dashboard routes (HTML, JSON, commands, WebSocket) on a go-router router.
// SSE needs a flushing net/http writer and is served by httpapi instead.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath == "" {
		base = "/admin"
	}
	selectSpan := cfg.SelectSpan
	if selectSpan == nil {
		selectSpan = commands.NewSelectTimeSpanCommand(cfg.Controller, cfg.Telemetry)
	}
	refresh := cfg.Refresh
	if refresh == nil {
		refresh = commands.NewRefreshDashboardCommand(cfg.Controller, cfg.Telemetry)
	}
	mount := cfg.Mount
	if mount == nil {
		mount = commands.NewMountDashboardCommand(cfg.Controller, cfg.Telemetry)
	}
	unmount := cfg.Unmount
	if unmount == nil {
		unmount = commands.NewUnmountDashboardCommand(cfg.Controller, cfg.Telemetry)
	}
	viewQuery := queries.NewDashboardViewQuery(cfg.Controller)
	regionQuery := queries.NewRegionViewQuery(cfg.Controller)

	group := cfg.Router.Group(base)

	if cfg.Renderer != nil {
		pageBase := base + routes.HTML
		group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			view, err := viewQuery.Query(ctx.Context(), queries.DashboardViewInput{})
			if err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			var buf bytes.Buffer
			if _, err := cfg.Renderer.Render(techdash.PageTemplate, techdash.PagePayload(view, pageBase), &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}

	group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		view, err := viewQuery.Query(ctx.Context(), queries.DashboardViewInput{})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	group.Get(routes.Region, router.WrapHandler(func(ctx router.Context) error {
		payload, err := regionQuery.Query(ctx.Context(), queries.RegionViewInput{Region: techdash.Region(ctx.Param("region"))})
		if err != nil {
			return respondError(ctx, http.StatusNotFound, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	group.Post(routes.Leaderboard, router.WrapHandler(func(ctx router.Context) error {
		input := commands.SelectTimeSpanInput{Span: ctx.Query("span")}
		if input.Span == "" && len(ctx.Body()) > 0 {
			var payload struct {
				Span string `json:"span"`
			}
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input.Span = payload.Span
		}
		if err := selectSpan.Execute(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "selected"})
	}))

	group.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := refresh.Execute(ctx.Context(), commands.RefreshDashboardInput{Reason: "http"}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "refreshed"})
	}))

	// The refresh loop outlives the request, and fasthttp recycles request contexts.
	group.Post(routes.Mount, router.WrapHandler(func(ctx router.Context) error {
		if err := mount.Execute(context.Background(), commands.MountDashboardInput{}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "mounted"})
	}))

	group.Post(routes.Unmount, router.WrapHandler(func(ctx router.Context) error {
		if err := unmount.Execute(ctx.Context(), commands.UnmountDashboardInput{}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "unmounted"})
	}))

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerWebSocket[T any](r router.Router[T], hook *techdash.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/technicians"
	}
	if routes.View == "" {
		routes.View = routes.HTML + "/view"
	}
	if routes.Region == "" {
		routes.Region = routes.HTML + "/regions/:region"
	}
	if routes.Leaderboard == "" {
		routes.Leaderboard = routes.HTML + "/leaderboard"
	}
	if routes.Refresh == "" {
		routes.Refresh = routes.HTML + "/refresh"
	}
	if routes.Mount == "" {
		routes.Mount = routes.HTML + "/mount"
	}
	if routes.Unmount == "" {
		routes.Unmount = routes.HTML + "/unmount"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = routes.HTML + "/ws"
	}
	return routes
}

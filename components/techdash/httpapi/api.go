package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-techboard/components/techdash"
	"github.com/goliatone/go-techboard/components/techdash/commands"
	"github.com/goliatone/go-techboard/components/techdash/queries"
)

type eventStream interface {
	ServeSSE(w http.ResponseWriter, r *http.Request)
}

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	View       gocommand.Querier[queries.DashboardViewInput, techdash.DashboardView]
	Region     gocommand.Querier[queries.RegionViewInput, any]
	SelectSpan gocommand.Commander[commands.SelectTimeSpanInput]
	Refresh    gocommand.Commander[commands.RefreshDashboardInput]
	Mount      gocommand.Commander[commands.MountDashboardInput]
	Unmount    gocommand.Commander[commands.UnmountDashboardInput]
	Events     eventStream
	WebSocket  http.HandlerFunc
	Renderer   techdash.Renderer
}

// Register mounts the dashboard endpoints on mux under base, e.g.
// "/admin/technicians". Optional handlers are skipped when unset.
func (h *Handlers) Register(mux *http.ServeMux, base string) {
	base = strings.TrimRight(base, "/")
	if h.Renderer != nil {
		page := base
		if page == "" {
			page = "/{$}"
		}
		mux.HandleFunc("GET "+page, func(w http.ResponseWriter, r *http.Request) {
			h.HandlePage(w, r, base)
		})
	}
	mux.HandleFunc("GET "+base+"/view", h.HandleView)
	mux.HandleFunc("GET "+base+"/regions/{region}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRegion(w, r, r.PathValue("region"))
	})
	mux.HandleFunc("POST "+base+"/leaderboard", h.HandleSelectSpan)
	mux.HandleFunc("POST "+base+"/refresh", h.HandleRefresh)
	mux.HandleFunc("GET "+base+"/events", h.HandleEvents)
	if h.Mount != nil {
		mux.HandleFunc("POST "+base+"/mount", h.HandleMount)
	}
	if h.Unmount != nil {
		mux.HandleFunc("POST "+base+"/unmount", h.HandleUnmount)
	}
	if h.WebSocket != nil {
		mux.HandleFunc("GET "+base+"/ws", h.WebSocket)
	}
}

// HandlePage renders the dashboard page with basePath as the endpoint root.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request, basePath string) {
	view, err := h.View.Query(r.Context(), queries.DashboardViewInput{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if _, err := h.Renderer.Render(techdash.PageTemplate, techdash.PagePayload(view, basePath), &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	view, err := h.View.Query(r.Context(), queries.DashboardViewInput{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleRegion(w http.ResponseWriter, r *http.Request, region string) {
	payload, err := h.Region.Query(r.Context(), queries.RegionViewInput{Region: techdash.Region(region)})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleSelectSpan accepts the span as a query parameter or a JSON body.
func (h *Handlers) HandleSelectSpan(w http.ResponseWriter, r *http.Request) {
	input := commands.SelectTimeSpanInput{Span: r.URL.Query().Get("span")}
	if input.Span == "" && r.Body != nil && r.ContentLength != 0 {
		var payload struct {
			Span string `json:"span"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		input.Span = payload.Span
	}
	if err := h.SelectSpan.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	input := commands.RefreshDashboardInput{Reason: r.URL.Query().Get("reason")}
	if input.Reason == "" {
		input.Reason = "http"
	}
	if err := h.Refresh.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleMount starts the refresh loop. The loop outlives the request.
func (h *Handlers) HandleMount(w http.ResponseWriter, r *http.Request) {
	if err := h.Mount.Execute(context.WithoutCancel(r.Context()), commands.MountDashboardInput{}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := h.Unmount.Execute(r.Context(), commands.UnmountDashboardInput{}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		http.Error(w, "event stream not configured", http.StatusNotImplemented)
		return
	}
	h.Events.ServeSSE(w, r)
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, techdash.ErrUnknownTimeSpan):
		return http.StatusBadRequest
	case errors.Is(err, techdash.ErrNotMounted), errors.Is(err, techdash.ErrAlreadyStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

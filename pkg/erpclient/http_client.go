package erpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-techboard/components/techdash"
)

// ErrRemoteStatus is returned when the ERP reports a non-success status inside
// an otherwise valid response.
var ErrRemoteStatus = errors.New("erpclient: remote reported failure")

// Methods names the whitelisted RPC methods the dashboard calls.
type Methods struct {
	Stats       string
	Locations   string
	Leaderboard string
}

// DefaultMethods returns the method paths exposed by the technician app.
func DefaultMethods() Methods {
	return Methods{
		Stats:       "hanif_traders.hanif_traders.page.technician_dashboard.technician_dashboard.get_dashboard_stats",
		Locations:   "hanif_traders.api.location.get_latest_locations",
		Leaderboard: "hanif_traders.hanif_traders.page.technician_dashboard.technician_dashboard.get_leaderboard",
	}
}

// HTTPConfig configures the ERP client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	HTTPClient *http.Client
	Methods    Methods
	// Location interprets timestamps that carry no zone. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

// HTTPClient calls the ERP RPC surface. It implements techdash.Client.
type HTTPClient struct {
	baseURL  string
	token    string
	client   *http.Client
	methods  Methods
	location *time.Location
	now      func() time.Time
}

var _ techdash.Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for a live ERP site.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("erpclient: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("erpclient: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	methods := cfg.Methods
	defaults := DefaultMethods()
	if methods.Stats == "" {
		methods.Stats = defaults.Stats
	}
	if methods.Locations == "" {
		methods.Locations = defaults.Locations
	}
	if methods.Leaderboard == "" {
		methods.Leaderboard = defaults.Leaderboard
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	token := ""
	if cfg.APIKey != "" {
		token = "token " + cfg.APIKey + ":" + cfg.APISecret
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    token,
		client:   httpClient,
		methods:  methods,
		location: loc,
		now:      now,
	}, nil
}

// FetchStats implements techdash.StatsClient.
func (c *HTTPClient) FetchStats(ctx context.Context) (techdash.DashboardStats, error) {
	var fields map[string]json.RawMessage
	if err := c.call(ctx, c.methods.Stats, struct{}{}, &fields); err != nil {
		return techdash.DashboardStats{}, err
	}
	return statsFromFields(fields), nil
}

// FetchLatestLocations implements techdash.LocationClient.
func (c *HTTPClient) FetchLatestLocations(ctx context.Context, onDutyOnly bool) (techdash.LocationBatch, error) {
	req := locationRequest{OnDutyOnly: 0}
	if onDutyOnly {
		req.OnDutyOnly = 1
	}
	var resp locationResponse
	if err := c.call(ctx, c.methods.Locations, req, &resp); err != nil {
		return techdash.LocationBatch{}, err
	}
	if resp.Status != "" && resp.Status != "success" {
		return techdash.LocationBatch{}, fmt.Errorf("%w: %s %s", ErrRemoteStatus, resp.Status, resp.Message)
	}
	return resp.toBatch(c.location), nil
}

// FetchLeaderboard implements techdash.LeaderboardClient. A payload that is not
// a list is reported as malformed rather than as an error.
func (c *HTTPClient) FetchLeaderboard(ctx context.Context, span techdash.TimeSpan) (techdash.LeaderboardResult, error) {
	req := leaderboardRequest{Timespan: string(span)}
	if since := span.Since(c.now().In(c.location)); !since.IsZero() {
		req.FromDate = since.Format(time.DateOnly)
	}
	var raw json.RawMessage
	if err := c.call(ctx, c.methods.Leaderboard, req, &raw); err != nil {
		return techdash.LeaderboardResult{}, err
	}
	return leaderboardFromRaw(raw), nil
}

// call posts args to /api/method/{method} and decodes the "message" envelope.
func (c *HTTPClient) call(ctx context.Context, method string, args any, target any) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("erpclient: encode args: %w", err)
	}
	endpoint := c.baseURL + "/api/method/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("erpclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("erpclient: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("erpclient: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("erpclient: decode response: %w", err)
	}
	if len(envelope.Message) == 0 {
		envelope.Message = json.RawMessage("null")
	}
	if raw, ok := target.(*json.RawMessage); ok {
		*raw = envelope.Message
		return nil
	}
	if err := json.Unmarshal(envelope.Message, target); err != nil {
		return fmt.Errorf("erpclient: decode message: %w", err)
	}
	return nil
}

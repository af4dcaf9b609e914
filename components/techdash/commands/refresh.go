package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshDashboardInput requests an out-of-band refresh cycle.
type RefreshDashboardInput struct {
	Reason string
}

type refresher interface {
	OnRefresh(ctx context.Context)
}

// RefreshDashboardCommand runs a manual refresh without waiting for the next tick.
type RefreshDashboardCommand struct {
	host      refresher
	telemetry Telemetry
}

// NewRefreshDashboardCommand creates the command.
func NewRefreshDashboardCommand(host refresher, telemetry Telemetry) *RefreshDashboardCommand {
	return &RefreshDashboardCommand{host: host, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDashboardInput] = (*RefreshDashboardCommand)(nil)

// Execute triggers the refresh.
func (c *RefreshDashboardCommand) Execute(ctx context.Context, msg RefreshDashboardInput) error {
	if c.host == nil {
		return errors.New("refresh command requires dashboard host")
	}
	c.host.OnRefresh(ctx)
	c.telemetry.Record(ctx, "techdash.command.refresh", map[string]any{
		"reason": msg.Reason,
	})
	return nil
}

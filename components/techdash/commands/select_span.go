package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SelectTimeSpanInput carries the raw span chosen by the operator.
type SelectTimeSpanInput struct {
	Span string
}

type filterChanger interface {
	OnFilterChange(ctx context.Context, span string) error
}

// SelectTimeSpanCommand switches the leaderboard window.
type SelectTimeSpanCommand struct {
	host      filterChanger
	telemetry Telemetry
}

// NewSelectTimeSpanCommand creates the command.
func NewSelectTimeSpanCommand(host filterChanger, telemetry Telemetry) *SelectTimeSpanCommand {
	return &SelectTimeSpanCommand{host: host, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectTimeSpanInput] = (*SelectTimeSpanCommand)(nil)

// Execute forwards the span to the dashboard host.
func (c *SelectTimeSpanCommand) Execute(ctx context.Context, msg SelectTimeSpanInput) error {
	if c.host == nil {
		return errors.New("select span command requires dashboard host")
	}
	if err := c.host.OnFilterChange(ctx, msg.Span); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "techdash.command.select_span", map[string]any{
		"span": msg.Span,
	})
	return nil
}

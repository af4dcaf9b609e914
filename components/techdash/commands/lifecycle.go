package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// MountDashboardInput starts the refresh loop.
type MountDashboardInput struct{}

// UnmountDashboardInput stops the refresh loop.
type UnmountDashboardInput struct{}

type mounter interface {
	OnMount(ctx context.Context) error
	OnUnmount()
}

// MountDashboardCommand mounts the dashboard.
type MountDashboardCommand struct {
	host      mounter
	telemetry Telemetry
}

// NewMountDashboardCommand creates the command.
func NewMountDashboardCommand(host mounter, telemetry Telemetry) *MountDashboardCommand {
	return &MountDashboardCommand{host: host, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MountDashboardInput] = (*MountDashboardCommand)(nil)

// Execute mounts the dashboard and starts refreshing.
func (c *MountDashboardCommand) Execute(ctx context.Context, _ MountDashboardInput) error {
	if c.host == nil {
		return errors.New("mount command requires dashboard host")
	}
	if err := c.host.OnMount(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "techdash.command.mount", nil)
	return nil
}

// UnmountDashboardCommand tears the dashboard down. Repeated calls are harmless.
type UnmountDashboardCommand struct {
	host      mounter
	telemetry Telemetry
}

// NewUnmountDashboardCommand creates the command.
func NewUnmountDashboardCommand(host mounter, telemetry Telemetry) *UnmountDashboardCommand {
	return &UnmountDashboardCommand{host: host, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UnmountDashboardInput] = (*UnmountDashboardCommand)(nil)

// Execute unmounts the dashboard.
func (c *UnmountDashboardCommand) Execute(ctx context.Context, _ UnmountDashboardInput) error {
	if c.host == nil {
		return errors.New("unmount command requires dashboard host")
	}
	c.host.OnUnmount()
	c.telemetry.Record(ctx, "techdash.command.unmount", nil)
	return nil
}

package cliplugins

import (
	"context"
	"fmt"

	"dirwatch/internal/app"

	"github.com/spf13/cobra"
)

type CheckCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewCheckCommand(appCtx *AppContext) *CheckCommand {
	return &CheckCommand{appCtx: appCtx}
}

func (c *CheckCommand) Meta() *cobra.Command {
	if c.cmd != nil {
		return c.cmd
	}
	c.cmd = &cobra.Command{
		Use:   "check",
		Short: "Run a single scan",
		Long:  "Takes a fresh baseline of the watched directory and runs one comparison pass against it.",
		Args:  cobra.NoArgs,
	}
	return c.cmd
}

func (c *CheckCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := c.appCtx.config()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, c.appCtx.Logger, c.appCtx.Out)
	if err != nil {
		return fmt.Errorf("failed to init monitor: %w", err)
	}
	defer a.Close()

	events, err := a.NewMonitor(false).Check(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintf(c.appCtx.Out, "Check complete: %d change(s)\n", len(events))
	return nil
}

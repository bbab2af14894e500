package cliplugins

import (
	"context"
	"fmt"
	"log/slog"

	"dirwatch/internal/app"

	"github.com/spf13/cobra"
)

type StartCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewStartCommand(appCtx *AppContext) *StartCommand {
	return &StartCommand{appCtx: appCtx}
}

func (s *StartCommand) Meta() *cobra.Command {
	if s.cmd != nil {
		return s.cmd
	}
	s.cmd = &cobra.Command{
		Use:   "start",
		Short: "Start watching the directory",
		Long:  "Takes a baseline of the watched directory and reports changes every check interval until interrupted.",
		Args:  cobra.NoArgs,
	}
	return s.cmd
}

// Execute blocks until ctx is cancelled (SIGINT/SIGTERM in main).
func (s *StartCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := s.appCtx.config()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, s.appCtx.Logger, s.appCtx.Out)
	if err != nil {
		return fmt.Errorf("failed to init monitor: %w", err)
	}
	defer a.Close()

	s.appCtx.Logger.Info("starting monitor",
		slog.String("dir", cfg.WatchDir),
		slog.Duration("interval", cfg.Interval()),
		slog.String("log_file", cfg.LogFile),
	)

	return a.NewMonitor(true).Run(ctx)
}

package cliplugins

import (
	"context"
	"fmt"
	"time"

	"dirwatch/internal/app"

	"github.com/spf13/cobra"
)

type StatusCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewStatusCommand(appCtx *AppContext) *StatusCommand {
	return &StatusCommand{appCtx: appCtx}
}

func (s *StatusCommand) Meta() *cobra.Command {
	if s.cmd != nil {
		return s.cmd
	}
	s.cmd = &cobra.Command{
		Use:   "status",
		Short: "Show the monitor state",
		Long:  "Prints whether a monitor is running for the watched directory. Does not scan.",
		Args:  cobra.NoArgs,
	}
	return s.cmd
}

func (s *StatusCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := s.appCtx.config()
	if err != nil {
		return err
	}

	st, err := app.ReadStatus(cfg)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	out := s.appCtx.Out
	fmt.Fprintf(out, "Active: %t\n", st.Active)
	fmt.Fprintf(out, "Tracked files: %d\n", st.TrackedFiles)
	fmt.Fprintf(out, "Watched directory: %s\n", st.Root)
	fmt.Fprintf(out, "Log file: %s\n", st.LogFile)

	if st.StartedAt.IsZero() {
		return nil
	}
	if st.Active {
		fmt.Fprintf(out, "PID: %d\n", st.PID)
	}
	fmt.Fprintf(out, "Started at: %s\n", st.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Scans: %d\n", st.Scans)
	fmt.Fprintf(out, "Events: %d\n", st.Events)
	if st.Errors > 0 {
		fmt.Fprintf(out, "Sink errors: %d\n", st.Errors)
	}
	if !st.LastScanAt.IsZero() {
		fmt.Fprintf(out, "Last scan: %s (%s)\n", st.LastScanAt.Format(time.RFC3339), st.LastScanDuration)
	}
	return nil
}

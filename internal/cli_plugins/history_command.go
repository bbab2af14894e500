package cliplugins

import (
	"context"
	"fmt"
	"strings"

	"dirwatch/internal/app"
	"dirwatch/internal/sink"
	"dirwatch/internal/snapshot"
	"dirwatch/internal/storage/history"

	"github.com/spf13/cobra"
)

type HistoryCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewHistoryCommand(appCtx *AppContext) *HistoryCommand {
	return &HistoryCommand{appCtx: appCtx}
}

func (h *HistoryCommand) Meta() *cobra.Command {
	if h.cmd != nil {
		return h.cmd
	}
	h.cmd = &cobra.Command{
		Use:   "history",
		Short: "List recorded events",
		Long:  "Lists the most recent events recorded for the watched directory, newest first.",
		Args:  cobra.NoArgs,
	}
	h.cmd.Flags().IntP("limit", "n", history.DefaultLimit, "maximum number of events")
	h.cmd.Flags().StringP("kind", "k", "", "only events of this kind")
	h.cmd.RegisterFlagCompletionFunc("kind", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		kinds := []string{
			string(snapshot.KindAdded),
			string(snapshot.KindModified),
			string(snapshot.KindDeleted),
			string(snapshot.KindInitialized),
			string(snapshot.KindStopped),
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})
	return h.cmd
}

func (h *HistoryCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := h.appCtx.config()
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("flag --limit failed: %w", err)
	}
	kindFlag, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("flag --kind failed: %w", err)
	}

	filter := history.Filter{Root: cfg.WatchDir, Limit: limit}
	if kindFlag != "" {
		kind, err := snapshot.ParseKind(strings.ToUpper(kindFlag))
		if err != nil {
			return err
		}
		filter.Kind = kind
	}

	storage, err := app.OpenHistory(cfg, h.appCtx.Logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	records, err := storage.Recent(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(h.appCtx.Out, "No events recorded")
		return nil
	}
	for _, r := range records {
		fmt.Fprint(h.appCtx.Out, sink.FormatLine(r.Event))
	}
	return nil
}

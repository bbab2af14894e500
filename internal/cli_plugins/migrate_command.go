package cliplugins

import (
	"context"
	"fmt"
	"path/filepath"

	"dirwatch/internal/app"
	"dirwatch/internal/storage/history"
	"dirwatch/pkg/migrator"

	"github.com/spf13/cobra"
)

type MigrateCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewMigrateCommand(appCtx *AppContext) *MigrateCommand {
	return &MigrateCommand{appCtx: appCtx}
}

func (m *MigrateCommand) Meta() *cobra.Command {
	if m.cmd != nil {
		return m.cmd
	}
	m.cmd = &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Manage the history database schema",
		Long:      "Applies or rolls back the event history schema, or prints its version. The schema is also brought up to date whenever the history is opened.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
	}
	return m.cmd
}

func (m *MigrateCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := m.appCtx.config()
	if err != nil {
		return err
	}

	db, err := history.OpenDB(filepath.Join(cfg.StateDir, app.HistoryFileName))
	if err != nil {
		return err
	}
	defer db.Close()

	mg := history.NewMigrator(db, m.appCtx.Logger)

	switch args[0] {
	case "up":
		if err := mg.RunMigrations(migrator.MigrationUp); err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
	case "down":
		if err := mg.RunMigrations(migrator.MigrationDown); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
	case "version":
	default:
		return fmt.Errorf("unknown migration direction: %s", args[0])
	}

	version, dirty, err := mg.GetMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	fmt.Fprintf(m.appCtx.Out, "Current migration version: %d (dirty: %v)\n", version, dirty)
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cliplugins "dirwatch/internal/cli_plugins"
	"dirwatch/internal/config"
	"dirwatch/internal/lib/logger/handlers/slogpretty"
	"dirwatch/pkg/cli"

	"github.com/spf13/cobra"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	// Создаем контекст с отменой для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Создаем канал для перехвата сигналов ОС
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)

	appCtx := cliplugins.NewAppContext(setupLogger(envLocal, os.Stdout))

	go func() {
		sig := <-signalChannel
		appCtx.Logger.Info("Shutdown signal received", slog.Any("signal", sig))
		cancel()
	}()

	CLI := cli.NewCLI("dirwatch", "Polling directory change watcher")

	var configPath string
	root := CLI.Root()
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (or CONFIG_PATH)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appCtx.Config = cfg
		appCtx.Logger = setupLogger(cfg.Env, os.Stdout)
		return nil
	}

	CLI.RegisterPlugin(cliplugins.NewStartCommand(appCtx))
	CLI.RegisterPlugin(cliplugins.NewStatusCommand(appCtx))
	CLI.RegisterPlugin(cliplugins.NewCheckCommand(appCtx))
	CLI.RegisterPlugin(cliplugins.NewHistoryCommand(appCtx))
	CLI.RegisterPlugin(cliplugins.NewMigrateCommand(appCtx))

	if err := CLI.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func setupLogger(env string, writer io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envDev:
		log = slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = setupPrettySlog(writer)
	}
	return log
}

func setupPrettySlog(writer io.Writer) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(writer)

	return slog.New(handler)
}

package cliplugins

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"dirwatch/internal/config"
)

var ErrNoConfig = errors.New("configuration is not loaded")

// AppContext хранит зависимости, которые будут использоваться в командах CLI.
// Config is filled in by the root command before any plugin runs.
type AppContext struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer
}

func NewAppContext(log *slog.Logger) *AppContext {
	return &AppContext{
		Logger: log,
		Out:    os.Stdout,
	}
}

func (a *AppContext) config() (*config.Config, error) {
	if a.Config == nil {
		return nil, ErrNoConfig
	}
	return a.Config, nil
}

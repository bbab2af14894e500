package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"dirwatch/internal/snapshot"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Console prints events for humans. Labels are colored only when the
// output is a terminal.
type Console struct {
	out    io.Writer
	labels map[snapshot.Kind]*color.Color
	plain  *color.Color
	mu     sync.Mutex
}

func NewConsole(out io.Writer) *Console {
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = term.IsTerminal(int(f.Fd()))
	}

	newColor := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}

	return &Console{
		out: out,
		labels: map[snapshot.Kind]*color.Color{
			snapshot.KindAdded:       newColor(color.FgGreen, color.Bold),
			snapshot.KindModified:    newColor(color.FgYellow, color.Bold),
			snapshot.KindDeleted:     newColor(color.FgRed, color.Bold),
			snapshot.KindInitialized: newColor(color.FgCyan),
			snapshot.KindStopped:     newColor(color.FgCyan),
		},
		plain: newColor(),
	}
}

func (c *Console) Emit(_ context.Context, ev snapshot.Event) error {
	label, ok := c.labels[ev.Kind]
	if !ok {
		label = c.plain
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.out, "[%s] %s %s\n",
		ev.Timestamp.Local().Format("15:04:05"),
		label.Sprintf("%-11s", ev.Kind),
		subject(ev),
	)
	return err
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

type stubCommand struct {
	cmd    *cobra.Command
	name   string
	err    error
	called bool
	args   []string
	ctxVal any
}

func (s *stubCommand) Meta() *cobra.Command {
	if s.cmd == nil {
		s.cmd = &cobra.Command{Use: s.name, Short: "stub " + s.name}
	}
	return s.cmd
}

func (s *stubCommand) Execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	s.called = true
	s.args = args
	s.ctxVal = ctx.Value(ctxKey{})
	return s.err
}

func newTestCLI(plugins ...CommandPlugin) (*CLI, *bytes.Buffer) {
	c := NewCLI("dirwatch", "test")
	out := &bytes.Buffer{}
	c.Root().SetOut(out)
	c.Root().SetErr(out)
	for _, p := range plugins {
		c.RegisterPlugin(p)
	}
	return c, out
}

func TestCLI_DispatchesToPlugin(t *testing.T) {
	start := &stubCommand{name: "start"}
	status := &stubCommand{name: "status"}
	c, _ := newTestCLI(start, status)

	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	require.NoError(t, c.Run(ctx, []string{"status", "extra"}))

	assert.True(t, status.called)
	assert.False(t, start.called)
	assert.Equal(t, []string{"extra"}, status.args)
	assert.Equal(t, "v", status.ctxVal)
}

func TestCLI_PluginErrorWithoutUsage(t *testing.T) {
	boom := errors.New("boom")
	check := &stubCommand{name: "check", err: boom}
	c, out := newTestCLI(check)

	err := c.Run(context.Background(), []string{"check"})
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, out.String(), "Usage:")
}

func TestCLI_UnknownOrMissingCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(&stubCommand{name: "start"})

			err := c.Run(context.Background(), tt.args)
			assert.ErrorIs(t, err, ErrUnknownCommand)
			assert.Contains(t, out.String(), "Usage:")
			assert.Contains(t, out.String(), "start")
		})
	}
}

func TestCLI_Completion(t *testing.T) {
	c, out := newTestCLI(&stubCommand{name: "start"})

	require.NoError(t, c.Run(context.Background(), []string{"completion", "bash"}))
	assert.Contains(t, out.String(), "dirwatch")
}

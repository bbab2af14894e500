package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandPlugin interface {
	Meta() *cobra.Command
	Execute(ctx context.Context, cmd *cobra.Command, args []string) error
}

type CLI struct {
	rootCmd *cobra.Command
	plugins []CommandPlugin
}

// NewCLI creates the root command. Running it without a registered
// subcommand prints the usage and fails.
func NewCLI(name, short string) *CLI {
	c := &CLI{
		rootCmd: &cobra.Command{
			Use:           name,
			Short:         short,
			SilenceErrors: true,
		},
		plugins: make([]CommandPlugin, 0, 5),
	}
	c.rootCmd.Args = cobra.ArbitraryArgs
	c.rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: none given", ErrUnknownCommand)
		}
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	c.rootCmd.CompletionOptions.DisableDefaultCmd = true
	return c
}

// Root exposes the root command for persistent flags and hooks.
func (c *CLI) Root() *cobra.Command {
	return c.rootCmd
}

func (c *CLI) RegisterPlugin(p CommandPlugin) {
	c.plugins = append(c.plugins, p)
	cmd := p.Meta()
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		// usage is only useful for mistakes in the command line itself
		cmd.SilenceUsage = true
		for _, plugin := range c.plugins {
			if plugin.Meta() == cmd {
				return plugin.Execute(cmd.Context(), cmd, args)
			}
		}
		return ErrUnknownCommand
	}
	c.rootCmd.AddCommand(cmd)
}

func (c *CLI) initCompletion() {
	c.rootCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string,
	) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(c.plugins))
		for _, plugin := range c.plugins {
			names = append(names, plugin.Meta().Name())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
	completionCmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate completion script",
		Long:      "Generate completion script for bash, zsh, fish, powershell",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return c.rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return c.rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return c.rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return c.rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	// source <(dirwatch completion zsh)
	c.rootCmd.AddCommand(completionCmd)
}

// Run executes the command line args (without the program name).
func (c *CLI) Run(ctx context.Context, args []string) error {
	c.initCompletion()
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}

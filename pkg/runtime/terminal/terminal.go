package terminal

import (
	"github.com/de-tools/growth-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/growth-atlas/pkg/store/warehouse"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry warehouse.Registry
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry warehouse.Registry
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	cli := &CLI{
		registry: opts.Registry,
	}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "growth-atlas",
		Short: "Regional e-commerce KPI reporting tool",
	}

	cmd.AddCommand(commands.NewReportCmd(cli.registry))
	cmd.AddCommand(commands.NewBackendsCmd(cli.registry))

	return cmd
}

// Package commands implements the CLI commands for cask.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/cask/internal/app"
	"go.trai.ch/cask/internal/build"
)

// Initializer builds the application components once the command line is parsed.
// The context carries the command line overrides of the runtime settings.
type Initializer func(ctx context.Context) (*app.Components, error)

// CLI represents the command line interface for cask.
type CLI struct {
	init    Initializer
	rootCmd *cobra.Command
}

// New creates a new CLI instance initializing the app with init.
func New(init Initializer) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cask",
		Short:         "Build package versions from source and their dependencies",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("dir", "C", "", "Run as if cask was started in this directory")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Project file name (default \"cask.yml\")")
	rootCmd.PersistentFlags().Bool("local", false, "Use the local build service emulator")

	c := &CLI{
		init:    init,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}

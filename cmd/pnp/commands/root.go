// Package commands implements the CLI commands for the pnp resolution tool.
package commands

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pnp/internal/app"
	"go.trai.ch/pnp/internal/build"
	"go.trai.ch/pnp/internal/core/ports"
)

// jsonSwitcher is implemented by loggers able to emit JSON records.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

// CLI represents the command line interface for pnp.
type CLI struct {
	app     *app.App
	logger  ports.Logger
	rootCmd *cobra.Command

	dir   string
	state string
	json  bool
}

// New creates a new CLI instance with the given app.
func New(a *app.App, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pnp",
		Short:         "Resolve requests against a Plug'n'Play dependency tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&c.dir, "cwd", "C", ".", "Directory to discover the configuration from")
	rootCmd.PersistentFlags().StringVarP(&c.state, "state", "s", "", "Serialized state file, bypassing discovery")
	rootCmd.PersistentFlags().BoolVar(&c.json, "json", false, "Print results and errors as JSON")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if s, ok := c.logger.(jsonSwitcher); ok {
			s.SetJSON(c.json)
		}
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newLocateCmd())
	rootCmd.AddCommand(c.newInfoCmd())
	rootCmd.AddCommand(c.newLocatorsCmd())
	rootCmd.AddCommand(c.newVirtualCmd())
	rootCmd.AddCommand(c.newStatusCmd())
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

// SetOutput redirects what commands print. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
}

func (c *CLI) open(cmd *cobra.Command) (*app.Session, error) {
	return c.app.Open(cmd.Context(), app.OpenOptions{Dir: c.dir, State: c.state})
}

// print writes v as indented JSON in JSON mode, and calls text otherwise.
func (c *CLI) print(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if !c.json {
		text(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
